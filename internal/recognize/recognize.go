// Package recognize defines the narrow contract to the external
// text-recognition engine. The engine turns a preprocessed single-channel
// image into raw text with per-token confidences; everything upstream
// (preprocessing) and downstream (field extraction) lives elsewhere.
package recognize

import "image"

// DefaultLanguage is the combined multilingual recognition mode.
const DefaultLanguage = "spa+eng"

// SegMode selects how the engine segments the page before recognition.
type SegMode int

const (
	// SegDefault leaves the engine's own segmentation settings untouched.
	SegDefault SegMode = iota
	// SegAuto requests fully automatic page segmentation (documents).
	SegAuto
	// SegSingleBlock treats the image as one uniform text block (tickets).
	SegSingleBlock
)

// Options configures a single recognition call.
type Options struct {
	Language string  // engine language hint, DefaultLanguage when empty
	SegMode  SegMode // page segmentation behavior
}

// Token is one recognized word with its confidence.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // percent, 0-100
}

// Result is the raw output of one recognition call. It is read-only after
// construction. An empty Text with no tokens is a valid outcome, not an
// error: the engine ran and found nothing.
type Result struct {
	Text     string  `json:"text"`
	Tokens   []Token `json:"tokens,omitempty"`
	Language string  `json:"language"`
}

// AverageConfidence returns the mean confidence over tokens with positive
// confidence, or 0 when none qualify.
func (r Result) AverageConfidence() float64 {
	var sum float64
	count := 0
	for _, tok := range r.Tokens {
		if tok.Confidence > 0 {
			sum += tok.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// WordCount returns the number of non-empty tokens.
func (r Result) WordCount() int {
	count := 0
	for _, tok := range r.Tokens {
		if tok.Text != "" {
			count++
		}
	}
	return count
}

// Engine is the recognition engine contract. Implementations must be safe
// for concurrent calls. A returned error means the engine itself failed;
// "ran but found no text" is a successful empty Result.
type Engine interface {
	Recognize(img image.Image, opts Options) (Result, error)
	Version() string
}

// EngineError wraps failures of the recognition engine itself.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return "recognition engine failed: " + e.Err.Error() }
func (e *EngineError) Unwrap() error { return e.Err }
