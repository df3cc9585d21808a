package anomaly

import (
	"fmt"
	"time"
)

// DefaultThreshold separates normal clips from suspicious ones
const DefaultThreshold = 0.08

// Label is the final classification of a clip
type Label string

const (
	// LabelNormal means no frame scored above the threshold
	LabelNormal Label = "normal"

	// LabelSuspicious means at least one frame scored above the threshold
	LabelSuspicious Label = "suspicious"
)

// Classify returns LabelSuspicious iff score is strictly greater than threshold
func Classify(score, threshold float64) Label {
	if score > threshold {
		return LabelSuspicious
	}
	return LabelNormal
}

// Outcome is the result of analysing one video
type Outcome struct {
	SessionID      string        `json:"session_id,omitempty"`
	Label          Label         `json:"label"`
	MaxScore       float64       `json:"max_score"`
	Threshold      float64       `json:"threshold"`
	FramesAnalyzed int           `json:"frames_analyzed"`
	WorstFrameAt   time.Duration `json:"worst_frame_at_ns"`
}

// Suspicious reports whether the clip was flagged
func (o Outcome) Suspicious() bool {
	return o.Label == LabelSuspicious
}

// String renders the outcome the way it is shown to users
func (o Outcome) String() string {
	if o.Suspicious() {
		return fmt.Sprintf("SUSPICIOUS: possible deepfake (max anomaly score: %.4f)", o.MaxScore)
	}
	return fmt.Sprintf("NORMAL: clip looks authentic (max anomaly score: %.4f)", o.MaxScore)
}
