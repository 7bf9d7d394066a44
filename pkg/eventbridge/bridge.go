package eventbridge

import (
	"encoding/json"
	"fmt"

	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/tracker"
	"github.com/fystack/radixium/pkg/types"
	"github.com/nats-io/nats.go"
)

// Subjects mirror the tracking event stream onto NATS so external monitors
// can follow transactions without holding the in-process handle.
const (
	TrackingSubjectPrefix = "radix.tx_tracking"
	TrackingWildcard      = "radix.tx_tracking.*"
)

// FormatTrackingSubject names the subject for one tracking run.
func FormatTrackingSubject(trackingID string) string {
	return TrackingSubjectPrefix + "." + trackingID
}

// payload is the wire form of one mirrored tracking event.
type payload struct {
	TrackingID string              `json:"tracking_id"`
	Phase      types.TrackingPhase `json:"phase"`
	State      any                 `json:"state,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Bridge republishes tracking events to NATS.
type Bridge struct {
	nc *nats.Conn
}

func New(nc *nats.Conn) *Bridge {
	return &Bridge{nc: nc}
}

// Mirror forwards every event of the tracking run to its subject until the
// stream terminates. It returns immediately; forwarding runs in the
// background and stops when the tracking tears its subscriptions down.
func (b *Bridge) Mirror(t *tracker.Tracking) {
	subject := FormatTrackingSubject(t.ID())
	events, cancel := t.Events()

	go func() {
		defer cancel()
		for ev := range events {
			msg := payload{
				TrackingID: t.ID(),
				Phase:      ev.Phase,
				State:      ev.State,
			}
			if ev.Err != nil {
				msg.Error = ev.Err.Error()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Error("Failed to marshal tracking event", err, "subject", subject)
				continue
			}
			if err := b.nc.Publish(subject, data); err != nil {
				logger.Error("Failed to publish tracking event", err, "subject", subject)
			}
		}
		logger.Debug(fmt.Sprintf("Tracking mirror for %s drained", t.ID()))
	}()
}
