package ocr

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "eng"

// Outcome is the result of extracting text from one image. Err is nil on
// success; Text may then be empty.
type Outcome struct {
	Path string
	Text string
	Err  error
}

// OK reports whether the extraction succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Extractor turns image files into text using an injected Engine.
type Extractor struct {
	engine Engine
	logger *slog.Logger
}

// NewExtractor returns an Extractor that recognizes with engine. A nil
// logger means slog.Default().
func NewExtractor(engine Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger}
}

// Engine returns the backend this extractor submits images to.
func (x *Extractor) Engine() Engine { return x.engine }

// Extract decodes the image at path, converts it to RGB when needed and
// recognizes it with lang and config. Failures are returned in the Outcome
// as an *ExtractionError.
func (x *Extractor) Extract(ctx context.Context, path, lang, config string) Outcome {
	img, err := LoadImage(path)
	if err != nil {
		return Outcome{Path: path, Err: &ExtractionError{Path: path, Stage: StageDecode, Err: err}}
	}
	mode := ColorMode(img)
	rgb := Normalize(img)
	data, err := encodePNG(rgb)
	if err != nil {
		return Outcome{Path: path, Err: &ExtractionError{Path: path, Stage: StageDecode, Err: err}}
	}
	x.logger.Debug("image normalized",
		"path", path,
		"mode", mode,
		"width", rgb.Bounds().Dx(),
		"height", rgb.Bounds().Dy(),
	)

	raw, err := x.engine.Recognize(ctx, Request{Image: data, Language: lang, Config: config})
	if err != nil {
		return Outcome{Path: path, Err: &ExtractionError{Path: path, Stage: StageRecognize, Err: err}}
	}
	text := strings.TrimSpace(raw)
	x.logger.Debug("text recognized",
		"path", path,
		"engine", x.engine.Name(),
		"lang", lang,
		"config", config,
		"chars", len(text),
		"snippet", snippet(text, 80),
	)
	return Outcome{Path: path, Text: text}
}
