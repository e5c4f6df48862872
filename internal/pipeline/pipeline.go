// Package pipeline wires preprocessing, recognition, and field extraction
// into the end-to-end extraction flows for tickets, identity documents,
// and free-form text.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MeKo-Tech/slipscan/internal/preprocess"
	"github.com/MeKo-Tech/slipscan/internal/recognize"
)

// Config holds configuration for the extraction pipeline and its components.
type Config struct {
	Ticket   preprocess.Config // preprocessing profile for betting tickets
	Document preprocess.Config // preprocessing profile for identity documents
	Language string            // tesseract language string, e.g. "spa+eng"
	DataPath string            // tessdata directory, empty for the system default
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Ticket:   preprocess.TicketConfig(),
		Document: preprocess.DocumentConfig(),
		Language: recognize.DefaultLanguage,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	engine recognize.Engine
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithLanguage sets the recognition language string.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Language = lang
	}
	return b
}

// WithDataPath sets the tessdata directory.
func (b *Builder) WithDataPath(path string) *Builder {
	b.cfg.DataPath = path
	return b
}

// WithTicketPreprocess overrides the ticket preprocessing profile.
func (b *Builder) WithTicketPreprocess(cfg preprocess.Config) *Builder {
	b.cfg.Ticket = cfg
	return b
}

// WithDocumentPreprocess overrides the document preprocessing profile.
func (b *Builder) WithDocumentPreprocess(cfg preprocess.Config) *Builder {
	b.cfg.Document = cfg
	return b
}

// WithDenoise toggles denoising in both preprocessing profiles.
func (b *Builder) WithDenoise(enabled bool) *Builder {
	b.cfg.Ticket.Denoise = enabled
	b.cfg.Document.Denoise = enabled
	return b
}

// WithDeskew toggles skew correction in both preprocessing profiles.
func (b *Builder) WithDeskew(enabled bool) *Builder {
	b.cfg.Ticket.Deskew = enabled
	b.cfg.Document.Deskew = enabled
	return b
}

// WithEngine injects a recognition engine, replacing the lazily constructed
// Tesseract default. Mainly used by tests.
func (b *Builder) WithEngine(e recognize.Engine) *Builder {
	b.engine = e
	return b
}

// Validate checks the builder configuration.
func (b *Builder) Validate() error {
	if b.cfg.Language == "" {
		return errors.New("recognition language must not be empty")
	}
	if err := b.cfg.Ticket.Validate(); err != nil {
		return fmt.Errorf("ticket preprocessing: %w", err)
	}
	if err := b.cfg.Document.Validate(); err != nil {
		return fmt.Errorf("document preprocessing: %w", err)
	}
	return nil
}

// Build initializes the extraction pipeline. The recognition engine itself
// is created lazily on first use so that building a pipeline stays cheap
// and never touches Tesseract.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: b.cfg, engine: b.engine}, nil
}

// Pipeline runs the full image-to-record extraction flow. It is safe for
// concurrent use once built.
type Pipeline struct {
	cfg        Config
	engine     recognize.Engine
	engineOnce sync.Once
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Engine returns the recognition engine, constructing the default Tesseract
// engine on first call.
func (p *Pipeline) Engine() recognize.Engine {
	p.engineOnce.Do(func() {
		if p.engine == nil {
			p.engine = recognize.NewTesseract(p.cfg.DataPath, p.cfg.Language)
		}
	})
	return p.engine
}

// EngineVersion reports the recognition engine version for health output.
func (p *Pipeline) EngineVersion() string {
	return p.Engine().Version()
}
