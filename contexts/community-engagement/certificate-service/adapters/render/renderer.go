package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	"ugnayan/contexts/community-engagement/certificate-service/domain/services"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

// Canvas dimensions in logical units, shared by every certificate in a run.
// The template image is stretched full-bleed to this canvas.
const (
	CanvasWidth  = 2000
	CanvasHeight = 1414
)

const (
	codeDrawSize      = 220.0
	codeMargin        = 60.0
	signatureWidth    = 360.0
	signatureBaseline = 190.0
)

// Renderer composites one certificate: template full-bleed, verification code
// at the requested anchor, centered name text, then signatures near the
// bottom. The canvas is wrapped into a single-page PDF so storage keys keep
// the .pdf extension.
type Renderer struct {
	Logger *slog.Logger
}

func (r Renderer) Render(ctx context.Context, req ports.RenderRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	template, err := decodeImage(req.Template)
	if err != nil {
		return nil, fmt.Errorf("decode template image: %w", err)
	}
	code, err := decodeImage(req.CodeImage)
	if err != nil {
		return nil, fmt.Errorf("decode verification code image: %w", err)
	}

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	drawStretched(dc, template, 0, 0, CanvasWidth, CanvasHeight)
	drawCode(dc, code, req.CodeAnchor)

	if err := r.drawName(dc, req); err != nil {
		return nil, err
	}
	if err := drawSignatures(dc, req.Signatures); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return wrapPDF(dc.Image())
}

func (r Renderer) drawName(dc *gg.Context, req ports.RenderRequest) error {
	placement := services.PlaceName(req.Layout, req.RecipientName)
	face, err := faceFor(req.Layout.Variant, placement.FontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGB(0.13, 0.12, 0.11)

	name := strings.TrimSpace(req.RecipientName)
	width, _ := dc.MeasureString(name)
	// VerticalPosition is the baseline from the canvas top, which is
	// already gg's coordinate space.
	dc.DrawString(name, (CanvasWidth-width)/2, placement.VerticalPosition)
	return nil
}

func drawCode(dc *gg.Context, code image.Image, anchor entities.CodeAnchor) {
	x := codeMargin
	if anchor == entities.CodeAnchorRight {
		x = CanvasWidth - codeMargin - codeDrawSize
	}
	drawStretched(dc, code, x, codeMargin, codeDrawSize, codeDrawSize)
}

func drawSignatures(dc *gg.Context, signatures [][]byte) error {
	if len(signatures) == 0 {
		return nil
	}
	// Anchors at the lower quarter points of the canvas, sized uniformly.
	for i, raw := range signatures {
		sig, err := decodeImage(raw)
		if err != nil {
			return fmt.Errorf("decode signature image %d: %w", i+1, err)
		}
		bounds := sig.Bounds()
		height := signatureWidth * float64(bounds.Dy()) / float64(bounds.Dx())
		centerX := CanvasWidth * float64(1+2*i) / 4
		drawStretched(dc, sig,
			centerX-signatureWidth/2,
			CanvasHeight-signatureBaseline-height,
			signatureWidth, height,
		)
	}
	return nil
}

func drawStretched(dc *gg.Context, img image.Image, x, y, width, height float64) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(width/float64(bounds.Dx()), height/float64(bounds.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// wrapPDF embeds the composited canvas as the sole page of a PDF whose page
// size matches the canvas. The creation date is pinned so identical inputs
// produce identical document bytes.
func wrapPDF(canvas image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, canvas); err != nil {
		return nil, fmt.Errorf("encode certificate canvas: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: CanvasWidth, Ht: CanvasHeight},
	})
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.RegisterImageOptionsReader("certificate", gofpdf.ImageOptions{ImageType: "PNG"}, &pngBuf)
	pdf.ImageOptions("certificate", 0, 0, CanvasWidth, CanvasHeight, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write certificate document: %w", err)
	}
	return out.Bytes(), nil
}

var _ ports.Renderer = Renderer{}
