package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/MeKo-Tech/slipscan/internal/extract"
	"github.com/MeKo-Tech/slipscan/internal/preprocess"
	"github.com/MeKo-Tech/slipscan/internal/recognize"
)

// Timing carries per-stage wall-clock durations in nanoseconds.
type Timing struct {
	PreprocessNs int64 `json:"preprocess_ns"`
	RecognizeNs  int64 `json:"recognize_ns"`
	TotalNs      int64 `json:"total_ns"`
}

// TicketResult is the output of the ticket extraction flow.
type TicketResult struct {
	Record     extract.TicketRecord `json:"record"`
	RawText    string               `json:"raw_text"`
	Confidence float64              `json:"confidence"`
	Scale      float64              `json:"scale"`
	Processing Timing               `json:"processing"`
}

// DocumentResult is the output of the identity document extraction flow.
type DocumentResult struct {
	Record     extract.DocumentRecord `json:"record"`
	RawText    string                 `json:"raw_text"`
	Confidence float64                `json:"confidence"`
	Scale      float64                `json:"scale"`
	Processing Timing                 `json:"processing"`
}

// TextResult is the output of the plain-text recognition flow.
type TextResult struct {
	Text       string  `json:"text"`
	WordCount  int     `json:"word_count"`
	Confidence float64 `json:"confidence"`
	Scale      float64 `json:"scale"`
}

// ExtractTicket runs the ticket flow on img.
func (p *Pipeline) ExtractTicket(img image.Image) (*TicketResult, error) {
	return p.ExtractTicketContext(context.Background(), img, nil)
}

// ExtractTicketContext is like ExtractTicket but supports cancellation and
// optional stage progress reporting.
func (p *Pipeline) ExtractTicketContext(ctx context.Context, img image.Image, progress StageCallback) (*TicketResult, error) {
	flow, err := p.recognizeFlow(ctx, img, p.cfg.Ticket, recognize.SegSingleBlock, progress)
	if err != nil {
		return nil, err
	}

	res := &TicketResult{
		Record:     extract.ParseTicket(flow.text),
		RawText:    flow.text,
		Confidence: flow.confidence,
		Scale:      flow.scale,
		Processing: flow.timing,
	}
	reportStage(progress, StageExtract, 1.0)
	return res, nil
}

// ExtractDocument runs the identity document flow on img.
func (p *Pipeline) ExtractDocument(img image.Image) (*DocumentResult, error) {
	return p.ExtractDocumentContext(context.Background(), img, nil)
}

// ExtractDocumentContext is like ExtractDocument but supports cancellation
// and optional stage progress reporting.
func (p *Pipeline) ExtractDocumentContext(ctx context.Context, img image.Image, progress StageCallback) (*DocumentResult, error) {
	flow, err := p.recognizeFlow(ctx, img, p.cfg.Document, recognize.SegAuto, progress)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{
		Record:     extract.ParseDocument(flow.text),
		RawText:    flow.text,
		Confidence: flow.confidence,
		Scale:      flow.scale,
		Processing: flow.timing,
	}
	reportStage(progress, StageExtract, 1.0)
	return res, nil
}

// ExtractText runs preprocessing and recognition without field extraction.
func (p *Pipeline) ExtractText(img image.Image) (*TextResult, error) {
	return p.ExtractTextContext(context.Background(), img, nil)
}

// ExtractTextContext is like ExtractText but supports cancellation and
// optional stage progress reporting.
func (p *Pipeline) ExtractTextContext(ctx context.Context, img image.Image, progress StageCallback) (*TextResult, error) {
	flow, err := p.recognizeFlow(ctx, img, p.cfg.Ticket, recognize.SegDefault, progress)
	if err != nil {
		return nil, err
	}
	return &TextResult{
		Text:       flow.text,
		WordCount:  len(strings.Fields(flow.text)),
		Confidence: flow.confidence,
		Scale:      flow.scale,
	}, nil
}

// flowOutput is the shared preprocess-then-recognize intermediate.
type flowOutput struct {
	text       string
	confidence float64
	scale      float64
	timing     Timing
}

// recognizeFlow runs the part every flow shares. A recognition failure
// yields an error and no partial result.
func (p *Pipeline) recognizeFlow(
	ctx context.Context,
	img image.Image,
	prep preprocess.Config,
	seg recognize.SegMode,
	progress StageCallback,
) (flowOutput, error) {
	var out flowOutput

	if img == nil {
		return out, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	bounds := img.Bounds()
	slog.Debug("starting extraction", "width", bounds.Dx(), "height", bounds.Dy())

	totalStart := time.Now()
	reportStage(progress, StagePreprocess, 0.0)

	gray, scale := preprocess.Run(img, prep)
	out.scale = scale
	out.timing.PreprocessNs = time.Since(totalStart).Nanoseconds()
	reportStage(progress, StagePreprocess, 1.0)

	if err := ctx.Err(); err != nil {
		return out, err
	}
	reportStage(progress, StageRecognize, 0.0)

	recStart := time.Now()
	result, err := p.Engine().Recognize(gray, recognize.Options{
		Language: p.cfg.Language,
		SegMode:  seg,
	})
	out.timing.RecognizeNs = time.Since(recStart).Nanoseconds()
	out.timing.TotalNs = time.Since(totalStart).Nanoseconds()
	if err != nil {
		slog.Warn("recognition failed", "error", err)
		return out, err
	}
	reportStage(progress, StageRecognize, 1.0)

	out.text = recognize.CleanText(result.Text)
	out.confidence = result.AverageConfidence()
	slog.Debug("recognition complete",
		"words", result.WordCount(), "confidence", out.confidence, "scale", scale)
	return out, nil
}
