package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
)

// NamePlacement is the computed text layout for one recipient name.
// VerticalPosition is the text baseline measured from the canvas top.
type NamePlacement struct {
	FontSize         float64
	VerticalPosition float64
}

// PlaceName computes font size and baseline for a name under the configured
// layout variant. Name length is counted in runes, after trimming.
func PlaceName(cfg entities.LayoutConfig, name string) NamePlacement {
	length := utf8.RuneCountInString(strings.TrimSpace(name))
	switch cfg.Variant {
	case entities.LayoutVariantCursive:
		return cursivePlacement(cfg.Cursive, length)
	default:
		return standardPlacement(cfg.Standard, length)
	}
}

func standardPlacement(layout entities.StandardLayout, nameLength int) NamePlacement {
	fontSize := layout.BaseFontSize - float64(nameLength-layout.BaseNameLength)*layout.ScaleRatio
	if fontSize < layout.MinFontSize {
		fontSize = layout.MinFontSize
	}
	return NamePlacement{
		FontSize:         fontSize,
		VerticalPosition: layout.VerticalBase - (layout.BaseFontSize-fontSize)*layout.VerticalAdjustmentFactor,
	}
}

func cursivePlacement(breakpoints []entities.CursiveBreakpoint, nameLength int) NamePlacement {
	normalized := NormalizeBreakpoints(breakpoints)
	for _, bp := range normalized {
		if bp.MaxNameLength <= 0 || bp.MaxNameLength >= nameLength {
			return NamePlacement{FontSize: bp.FontSize, VerticalPosition: bp.VerticalPosition}
		}
	}
	return NamePlacement{}
}

// NormalizeBreakpoints returns a copy sorted ascending by MaxNameLength with
// the unbounded catch-all last. A list without a catch-all gets its largest
// entry promoted to unbounded, so selection always terminates.
func NormalizeBreakpoints(breakpoints []entities.CursiveBreakpoint) []entities.CursiveBreakpoint {
	if len(breakpoints) == 0 {
		return nil
	}
	normalized := append([]entities.CursiveBreakpoint(nil), breakpoints...)
	sort.SliceStable(normalized, func(i, j int) bool {
		left, right := normalized[i].MaxNameLength, normalized[j].MaxNameLength
		if left <= 0 {
			return false
		}
		if right <= 0 {
			return true
		}
		return left < right
	})
	last := &normalized[len(normalized)-1]
	if last.MaxNameLength > 0 {
		last.MaxNameLength = 0
	}
	return normalized
}
