package types

// TrackingPhase tags the pipeline stage a tracking event belongs to.
type TrackingPhase string

const (
	PhaseInitiated            TrackingPhase = "INITIATED"
	PhaseBuiltFromIntent      TrackingPhase = "BUILT_FROM_INTENT"
	PhaseAskedForConfirmation TrackingPhase = "ASKED_FOR_CONFIRMATION"
	PhaseConfirmed            TrackingPhase = "CONFIRMED"
	PhaseSigned               TrackingPhase = "SIGNED"
	PhaseFinalized            TrackingPhase = "FINALIZED"
	PhaseSubmitted            TrackingPhase = "SUBMITTED"
	PhaseStatusUpdate         TrackingPhase = "UPDATE_OF_STATUS_OF_PENDING_TX"
	PhaseCompleted            TrackingPhase = "COMPLETED"
)

// TrackingEvent is one emission of the transaction pipeline. Exactly one of
// State and Err is meaningful: a progress event carries the new state value
// under the phase tag, a terminal failure carries Err with Phase naming the
// stage that was running when the error was observed.
type TrackingEvent struct {
	Phase TrackingPhase `json:"phase"`
	State any           `json:"state,omitempty"`
	Err   error         `json:"-"`
}

// IsError reports whether the event is the terminal failure emission.
func (e TrackingEvent) IsError() bool {
	return e.Err != nil
}
