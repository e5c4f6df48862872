package pipeline

// Stage identifies a phase of the extraction flow for progress reporting.
type Stage string

const (
	StagePreprocess Stage = "preprocess"
	StageRecognize  Stage = "recognize"
	StageExtract    Stage = "extract"
)

// StageCallback receives progress updates while a flow runs. Fraction is in
// [0,1] within the named stage. Callbacks run synchronously on the calling
// goroutine and should return quickly. A nil callback disables reporting.
type StageCallback func(stage Stage, fraction float64)

func reportStage(cb StageCallback, stage Stage, fraction float64) {
	if cb != nil {
		cb(stage, fraction)
	}
}
