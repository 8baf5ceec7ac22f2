package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

func testTemplate(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 141))
	for y := 0; y < 141; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 245, G: 240, B: 225, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode template: %v", err)
	}
	return buf.Bytes()
}

func testRequest(t *testing.T) ports.RenderRequest {
	t.Helper()
	code, err := QREncoder{Host: "certs.example.org"}.Encode("abc123")
	if err != nil {
		t.Fatalf("encode code: %v", err)
	}
	return ports.RenderRequest{
		RecipientName: "Ana Reyes",
		Template:      testTemplate(t),
		CodeImage:     code,
		CodeAnchor:    entities.CodeAnchorRight,
		Layout: entities.LayoutConfig{
			Variant:  entities.LayoutVariantStandard,
			Standard: entities.DefaultStandardLayout(),
		},
	}
}

func TestQREncoderProducesDecodablePNG(t *testing.T) {
	data, err := QREncoder{Host: "certs.example.org"}.Encode("abc123")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("code image is not png: %v", err)
	}
	if img.Bounds().Dx() != codeImageSize || img.Bounds().Dy() != codeImageSize {
		t.Fatalf("expected %dpx square code, got %v", codeImageSize, img.Bounds())
	}
}

func TestRenderProducesPDF(t *testing.T) {
	document, err := Renderer{}.Render(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(document, []byte("%PDF")) {
		t.Fatalf("expected pdf magic, got %q", document[:min(8, len(document))])
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	req := testRequest(t)
	first, err := Renderer{}.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := Renderer{}.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical documents for identical inputs")
	}
}

func TestRenderRejectsCorruptTemplate(t *testing.T) {
	req := testRequest(t)
	req.Template = []byte("definitely not an image")
	if _, err := (Renderer{}).Render(context.Background(), req); err == nil {
		t.Fatalf("expected decode error for corrupt template")
	}
}

func TestRenderRejectsCorruptSignature(t *testing.T) {
	req := testRequest(t)
	req.Signatures = [][]byte{testTemplate(t), []byte("broken")}
	if _, err := (Renderer{}).Render(context.Background(), req); err == nil {
		t.Fatalf("expected decode error for corrupt signature")
	}
}

func TestRenderHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Renderer{}).Render(ctx, testRequest(t)); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
