//go:build !ocr

package recognize

import (
	"errors"
	"image"
)

// ErrNotEnabled is returned when the binary was built without the "ocr"
// build tag and therefore has no Tesseract linkage.
var ErrNotEnabled = errors.New("recognition engine not available: rebuild with -tags ocr")

// Tesseract is a stub that reports the engine as unavailable. The real
// implementation is compiled in with the "ocr" build tag.
type Tesseract struct {
	DataPath string
	Language string
}

// NewTesseract creates the stub engine.
func NewTesseract(dataPath, language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{DataPath: dataPath, Language: language}
}

// Recognize always fails with ErrNotEnabled.
func (t *Tesseract) Recognize(image.Image, Options) (Result, error) {
	return Result{}, &EngineError{Err: ErrNotEnabled}
}

// Version reports that no engine is linked in.
func (t *Tesseract) Version() string { return "unknown" }
