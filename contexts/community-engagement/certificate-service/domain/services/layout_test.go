package services

import (
	"strings"
	"testing"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
)

func standardConfig() entities.LayoutConfig {
	return entities.LayoutConfig{
		Variant:  entities.LayoutVariantStandard,
		Standard: entities.DefaultStandardLayout(),
	}
}

func cursiveConfig() entities.LayoutConfig {
	return entities.LayoutConfig{
		Variant: entities.LayoutVariantCursive,
		Cursive: entities.DefaultCursiveBreakpoints(),
	}
}

func TestStandardPlacementShrinksWithNameLength(t *testing.T) {
	cfg := standardConfig()
	previous := PlaceName(cfg, strings.Repeat("a", 12)).FontSize
	for length := 13; length <= 60; length++ {
		current := PlaceName(cfg, strings.Repeat("a", length)).FontSize
		if current > previous {
			t.Fatalf("font size grew from %.1f to %.1f at length %d", previous, current, length)
		}
		previous = current
	}
}

func TestStandardPlacementClampsAtMinimum(t *testing.T) {
	cfg := standardConfig()
	placement := PlaceName(cfg, strings.Repeat("a", 200))
	if placement.FontSize != cfg.Standard.MinFontSize {
		t.Fatalf("expected clamp at %.1f, got %.1f", cfg.Standard.MinFontSize, placement.FontSize)
	}
}

func TestStandardPlacementAdjustsVerticalWithShrink(t *testing.T) {
	cfg := standardConfig()
	short := PlaceName(cfg, strings.Repeat("a", 12))
	long := PlaceName(cfg, strings.Repeat("a", 30))
	if short.VerticalPosition != cfg.Standard.VerticalBase {
		t.Fatalf("expected base vertical for base-length name, got %.1f", short.VerticalPosition)
	}
	if long.VerticalPosition >= short.VerticalPosition {
		t.Fatalf("expected shrunk name to sit higher baseline offset, got %.1f vs %.1f",
			long.VerticalPosition, short.VerticalPosition)
	}
}

func TestStandardPlacementCountsRunes(t *testing.T) {
	cfg := standardConfig()
	ascii := PlaceName(cfg, strings.Repeat("n", 10))
	accented := PlaceName(cfg, strings.Repeat("ñ", 10))
	if ascii.FontSize != accented.FontSize {
		t.Fatalf("expected rune counting, got %.1f vs %.1f", ascii.FontSize, accented.FontSize)
	}
}

func TestCursivePlacementSelectsByBreakpoint(t *testing.T) {
	cfg := cursiveConfig()
	cases := []struct {
		length   int
		fontSize float64
	}{
		{length: 10, fontSize: 110},
		{length: 14, fontSize: 110},
		{length: 15, fontSize: 92},
		{length: 20, fontSize: 92},
		{length: 28, fontSize: 76},
		{length: 29, fontSize: 60},
		{length: 120, fontSize: 60},
	}
	for _, tc := range cases {
		placement := PlaceName(cfg, strings.Repeat("a", tc.length))
		if placement.FontSize != tc.fontSize {
			t.Fatalf("length %d: expected font %.1f, got %.1f", tc.length, tc.fontSize, placement.FontSize)
		}
	}
}

func TestNormalizeBreakpointsSortsAndPromotesCatchAll(t *testing.T) {
	normalized := NormalizeBreakpoints([]entities.CursiveBreakpoint{
		{MaxNameLength: 28, FontSize: 76},
		{MaxNameLength: 14, FontSize: 110},
		{MaxNameLength: 20, FontSize: 92},
	})
	if len(normalized) != 3 {
		t.Fatalf("expected 3 breakpoints, got %d", len(normalized))
	}
	if normalized[0].MaxNameLength != 14 || normalized[1].MaxNameLength != 20 {
		t.Fatalf("expected ascending order, got %+v", normalized)
	}
	if normalized[2].MaxNameLength != 0 {
		t.Fatalf("expected largest entry promoted to catch-all, got %d", normalized[2].MaxNameLength)
	}
}

func TestCursivePlacementNeverFallsThrough(t *testing.T) {
	cfg := entities.LayoutConfig{
		Variant: entities.LayoutVariantCursive,
		Cursive: []entities.CursiveBreakpoint{
			{MaxNameLength: 10, FontSize: 100, VerticalPosition: 690},
		},
	}
	placement := PlaceName(cfg, strings.Repeat("a", 50))
	if placement.FontSize != 100 {
		t.Fatalf("expected sole breakpoint to catch long names, got %.1f", placement.FontSize)
	}
}
