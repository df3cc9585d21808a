package analysis

// State is the lifecycle position of a Session
type State string

const (
	// StateLoading means the model is being opened
	StateLoading State = "loading"

	// StateReady means the model is loaded and no video is being analysed
	StateReady State = "ready"

	// StateSampling means a frame is being pulled from the video
	StateSampling State = "sampling"

	// StateScoring means a frame is being run through the model
	StateScoring State = "scoring"

	// StateDone means the last analysis produced an outcome
	StateDone State = "done"

	// StateFailed means model loading or the last analysis failed
	StateFailed State = "failed"
)

// Busy reports whether an analysis is in flight
func (s State) Busy() bool {
	return s == StateSampling || s == StateScoring
}
