//go:build windows

package ocr

import "os"

const windowsInstallPath = `C:\Program Files\Tesseract-OCR\tesseract.exe`

// DefaultCommand returns the tesseract executable used when none is
// configured: the standard installer location if present, otherwise
// tesseract.exe on PATH.
func DefaultCommand() string {
	if _, err := os.Stat(windowsInstallPath); err == nil {
		return windowsInstallPath
	}
	return "tesseract.exe"
}
