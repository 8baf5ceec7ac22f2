package render

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
)

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	italicFont  *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		italicFont, fontsErr = truetype.Parse(goitalic.TTF)
	})
	return fontsErr
}

// faceFor builds a font face at the computed point size. The cursive variant
// maps to the italic face; everything else renders with the regular face.
func faceFor(variant entities.LayoutVariant, points float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("parse certificate fonts: %w", err)
	}
	selected := regularFont
	if variant == entities.LayoutVariantCursive {
		selected = italicFont
	}
	return truetype.NewFace(selected, &truetype.Options{Size: points}), nil
}
