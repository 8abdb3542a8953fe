package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEngine is returned when the configured backend name is not
	// one of EngineTesseract or EngineGosseract.
	ErrUnknownEngine = errors.New("unknown ocr engine")
	// ErrUnsupportedConfig is returned by the library engine when the
	// configuration string carries an option it cannot map onto the API.
	ErrUnsupportedConfig = errors.New("unsupported engine config")
)

// Extraction stages reported in ExtractionError.
const (
	StageDecode    = "decode"
	StageRecognize = "recognize"
)

// ExtractionError describes a failed extraction of a single image.
type ExtractionError struct {
	Path  string
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
