package entities

type LayoutVariant string

const (
	LayoutVariantStandard LayoutVariant = "standard"
	LayoutVariantCursive  LayoutVariant = "cursive"
)

// StandardLayout shrinks the name font linearly with name length, clamped at
// MinFontSize. Vertical position is measured in canvas units from the top.
type StandardLayout struct {
	BaseFontSize             float64
	MinFontSize              float64
	BaseNameLength           int
	ScaleRatio               float64
	VerticalBase             float64
	VerticalAdjustmentFactor float64
}

// CursiveBreakpoint maps a name-length ceiling to a fixed font size and
// vertical position. MaxNameLength <= 0 marks the unbounded catch-all entry.
type CursiveBreakpoint struct {
	MaxNameLength    int
	FontSize         float64
	VerticalPosition float64
}

// LayoutConfig selects the name-fitting strategy explicitly. Callers pass the
// config in; nothing in the pipeline reads layout state from globals.
type LayoutConfig struct {
	Variant  LayoutVariant
	Standard StandardLayout
	Cursive  []CursiveBreakpoint
}

func DefaultStandardLayout() StandardLayout {
	return StandardLayout{
		BaseFontSize:             96,
		MinFontSize:              48,
		BaseNameLength:           12,
		ScaleRatio:               2.5,
		VerticalBase:             700,
		VerticalAdjustmentFactor: 0.5,
	}
}

func DefaultCursiveBreakpoints() []CursiveBreakpoint {
	return []CursiveBreakpoint{
		{MaxNameLength: 14, FontSize: 110, VerticalPosition: 690},
		{MaxNameLength: 20, FontSize: 92, VerticalPosition: 700},
		{MaxNameLength: 28, FontSize: 76, VerticalPosition: 708},
		{MaxNameLength: 0, FontSize: 60, VerticalPosition: 716},
	}
}
