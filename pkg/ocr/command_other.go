//go:build !windows

package ocr

// DefaultCommand returns the tesseract executable used when none is
// configured.
func DefaultCommand() string { return "tesseract" }
