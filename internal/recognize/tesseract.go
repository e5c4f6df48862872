//go:build ocr

package recognize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text through the system Tesseract installation via
// gosseract. Each call creates and closes its own client, so the type is
// safe for concurrent use.
type Tesseract struct {
	// DataPath optionally points at the tessdata directory.
	DataPath string
	// Language is the default language hint when a call supplies none.
	Language string
}

// NewTesseract creates a Tesseract engine. Empty language falls back to
// DefaultLanguage.
func NewTesseract(dataPath, language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{DataPath: dataPath, Language: language}
}

// Recognize runs OCR over img and collects word-level confidences.
func (t *Tesseract) Recognize(img image.Image, opts Options) (Result, error) {
	lang := opts.Language
	if lang == "" {
		lang = t.Language
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if t.DataPath != "" {
		if err := client.SetTessdataPrefix(t.DataPath); err != nil {
			return Result{}, &EngineError{Err: fmt.Errorf("set tessdata prefix: %w", err)}
		}
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return Result{}, &EngineError{Err: fmt.Errorf("set language: %w", err)}
	}
	switch opts.SegMode {
	case SegAuto:
		if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
			return Result{}, &EngineError{Err: fmt.Errorf("set segmentation mode: %w", err)}
		}
	case SegSingleBlock:
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			return Result{}, &EngineError{Err: fmt.Errorf("set segmentation mode: %w", err)}
		}
	case SegDefault:
		// keep engine defaults
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, &EngineError{Err: fmt.Errorf("encode image: %w", err)}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, &EngineError{Err: fmt.Errorf("set image: %w", err)}
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, &EngineError{Err: err}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, &EngineError{Err: fmt.Errorf("word boxes: %w", err)}
	}
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, Token{Text: word, Confidence: b.Confidence})
	}

	return Result{
		Text:     strings.TrimSpace(text),
		Tokens:   tokens,
		Language: lang,
	}, nil
}

// Version reports the Tesseract version for health checks.
func (t *Tesseract) Version() string {
	v := gosseract.Version()
	if v == "" {
		return "unknown"
	}
	return v
}
