package ocr

import "context"

// Engine names selectable from the command line.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
)

// Request is a single image submitted for recognition.
type Request struct {
	// Image is a PNG-encoded, three-channel RGB raster.
	Image []byte
	// Language is a tesseract language code or a "+"-joined list of codes
	// (e.g. "eng+fra"). It is forwarded as is.
	Language string
	// Config holds backend tuning flags (e.g. "--psm 6"). It is forwarded
	// as is.
	Config string
}

// Engine is an OCR backend: one image in, recognized text out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) (string, error)
}
