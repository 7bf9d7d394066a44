package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/event"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/types"
	"github.com/google/uuid"
)

// ErrPollTriggerExhausted terminates a pipeline whose caller-supplied poll
// trigger closed before the transaction reached a terminal status.
var ErrPollTriggerExhausted = errors.New("tracker: poll trigger exhausted before terminal status")

const defaultPollInterval = time.Second

// Node is the slice of the node API the pipeline drives.
type Node interface {
	BuildTransaction(ctx context.Context, intent types.TransactionIntent, sender types.AccountAddress) (*types.BuiltTransaction, error)
	FinalizeTransaction(ctx context.Context, signed types.SignedTransaction) (*types.FinalizedTransaction, error)
	SubmitTransaction(ctx context.Context, finalized types.FinalizedTransaction) (*types.PendingTransaction, error)
	TransactionStatus(ctx context.Context, txID string) (*types.TransactionStatus, error)
}

// Signer is the wallet capability the pipeline consumes. The pipeline does
// not own the wallet.
type Signer interface {
	Sign(ctx context.Context, built types.BuiltTransaction, nonNativeHRP string) (types.SignedTransaction, error)
}

// ConfirmationRequest is the rendezvous handed to the caller when a built
// transaction awaits approval. Confirm is idempotent; calls after the first
// are ignored.
type ConfirmationRequest struct {
	Tx *types.BuiltTransaction

	once      sync.Once
	confirmed chan struct{}
}

func newConfirmationRequest(tx *types.BuiltTransaction) *ConfirmationRequest {
	return &ConfirmationRequest{Tx: tx, confirmed: make(chan struct{})}
}

// Confirm releases the pipeline to proceed with signing.
func (r *ConfirmationRequest) Confirm() {
	r.once.Do(func() { close(r.confirmed) })
}

// Options tunes one pipeline run.
type Options struct {
	// SkipConfirmation auto-approves the built transaction instead of
	// waiting for the caller on the confirmation rendezvous.
	SkipConfirmation bool

	// PollTrigger drives status polling; each received tick triggers one
	// status query. Nil installs a periodic ticker at PollInterval.
	PollTrigger <-chan time.Time

	// PollInterval is the default ticker period, one second when zero.
	// Ignored when PollTrigger is set.
	PollInterval time.Duration
}

// Result is the terminal outcome of a tracked transaction.
type Result struct {
	TxID string
	Err  error
}

// Tracking is the handle to one running pipeline: a replayable tracking
// event stream, the confirmation rendezvous and a single-value completion.
type Tracking struct {
	id string

	events        *event.Hub[types.TrackingEvent]
	confirmations *event.Hub[*ConfirmationRequest]

	done   chan struct{}
	result Result
	cancel context.CancelFunc
}

// ID is the correlation identifier of this run, distinct from the
// node-assigned transaction identifier.
func (t *Tracking) ID() string {
	return t.id
}

// Events subscribes to the tracking event stream. Every prior event is
// replayed, so late subscribers see the full history in emission order.
func (t *Tracking) Events() (<-chan types.TrackingEvent, func()) {
	return t.events.Subscribe()
}

// ConfirmationRequests subscribes to the confirmation rendezvous. The
// pending request, if any, is replayed to late subscribers.
func (t *Tracking) ConfirmationRequests() (<-chan *ConfirmationRequest, func()) {
	return t.confirmations.Subscribe()
}

// Done closes when the pipeline reaches a terminal state.
func (t *Tracking) Done() <-chan struct{} {
	return t.done
}

// Result returns the terminal outcome; valid once Done is closed.
func (t *Tracking) Result() (string, error) {
	return t.result.TxID, t.result.Err
}

// Completion returns a channel that yields the terminal result once.
func (t *Tracking) Completion() <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		<-t.done
		ch <- t.result
	}()
	return ch
}

// Cancel aborts the pipeline. Pending subscriptions are torn down; an
// in-flight node request is abandoned. An in-flight device exchange is the
// signer's business: the ledger driver lets it complete and marks its
// session dirty.
func (t *Tracking) Cancel() {
	t.cancel()
}

// Track starts the build → confirm → sign → finalize → submit → poll
// pipeline for one intent. Each run allocates its own channels; nothing is
// shared between transactions.
func Track(ctx context.Context, node Node, signer Signer, intent types.TransactionIntent, opts Options) *Tracking {
	ctx, cancel := context.WithCancel(ctx)
	t := &Tracking{
		id:            uuid.New().String(),
		events:        event.NewHub[types.TrackingEvent](event.ReplayAll),
		confirmations: event.NewHub[*ConfirmationRequest](1),
		done:          make(chan struct{}),
		cancel:        cancel,
	}
	go t.run(ctx, node, signer, intent, opts)
	return t
}

func (t *Tracking) emit(phase types.TrackingPhase, state any) {
	logger.Debug("Tracking event", "trackingID", t.id, "phase", phase)
	t.events.Publish(types.TrackingEvent{Phase: phase, State: state})
}

// fail publishes the terminal error event tagged with the phase that was
// running, fails the completion and tears every subscription down.
func (t *Tracking) fail(phase types.TrackingPhase, err error) {
	logger.Error("Transaction tracking failed", err, "trackingID", t.id, "phase", phase)
	t.events.Publish(types.TrackingEvent{Phase: phase, Err: err})
	t.result = Result{Err: err}
	t.teardown()
}

func (t *Tracking) complete(txID string) {
	logger.Info("Transaction completed", "trackingID", t.id, "txID", txID)
	t.result = Result{TxID: txID}
	t.teardown()
}

func (t *Tracking) teardown() {
	t.events.Close()
	t.confirmations.Close()
	t.cancel()
	close(t.done)
}

func (t *Tracking) run(ctx context.Context, node Node, signer Signer, intent types.TransactionIntent, opts Options) {
	// The device can display at most one foreign token, so the intent is
	// vetted before any node or device round-trip.
	nonNativeHRP, err := intent.NonNativeHRP()
	if err != nil {
		t.fail(types.PhaseInitiated, err)
		return
	}

	// Created → Built
	built, err := node.BuildTransaction(ctx, intent, intent.Sender)
	if err != nil {
		t.fail(types.PhaseBuiltFromIntent, err)
		return
	}
	t.emit(types.PhaseBuiltFromIntent, *built)

	// Built → AwaitingConfirmation → Confirmed
	request := newConfirmationRequest(built)
	t.confirmations.Publish(request)
	t.emit(types.PhaseAskedForConfirmation, *built)
	if opts.SkipConfirmation {
		request.Confirm()
	}
	select {
	case <-request.confirmed:
	case <-ctx.Done():
		t.fail(types.PhaseAskedForConfirmation, ctx.Err())
		return
	}
	t.emit(types.PhaseConfirmed, *built)

	// Confirmed → Signing → Signed
	signed, err := signer.Sign(ctx, *built, nonNativeHRP)
	if err != nil {
		t.fail(types.PhaseSigned, err)
		return
	}
	t.emit(types.PhaseSigned, signed)

	// Signed → Finalizing → Finalized
	finalized, err := node.FinalizeTransaction(ctx, signed)
	if err != nil {
		t.fail(types.PhaseFinalized, err)
		return
	}
	t.emit(types.PhaseFinalized, *finalized)

	// Finalized → Submitting → Pending
	pending, err := node.SubmitTransaction(ctx, *finalized)
	if err != nil {
		t.fail(types.PhaseSubmitted, err)
		return
	}
	t.emit(types.PhaseSubmitted, *pending)

	t.poll(ctx, node, pending.TxID, opts)
}

// poll drives the status loop: one query per trigger tick, consecutive
// duplicate statuses suppressed, first CONFIRMED or FAILED terminal.
func (t *Tracking) poll(ctx context.Context, node Node, txID string, opts Options) {
	trigger := opts.PollTrigger
	if trigger == nil {
		interval := opts.PollInterval
		if interval <= 0 {
			interval = defaultPollInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		trigger = ticker.C
	}

	var last types.TxStatus
	for {
		select {
		case <-ctx.Done():
			t.fail(types.PhaseStatusUpdate, ctx.Err())
			return
		case _, ok := <-trigger:
			if !ok {
				t.fail(types.PhaseStatusUpdate, ErrPollTriggerExhausted)
				return
			}
		}

		status, err := node.TransactionStatus(ctx, txID)
		if err != nil {
			if ctx.Err() != nil {
				t.fail(types.PhaseStatusUpdate, ctx.Err())
				return
			}
			// transient poll failures do not kill the pipeline
			logger.Warn("Status poll failed", "trackingID", t.id, "txID", txID, "error", err)
			continue
		}
		if status.Status == last {
			continue
		}
		last = status.Status
		t.emit(types.PhaseStatusUpdate, *status)

		switch status.Status {
		case types.TxStatusConfirmed:
			t.emit(types.PhaseCompleted, txID)
			t.complete(txID)
			return
		case types.TxStatusFailed:
			t.fail(types.PhaseStatusUpdate, apperr.Errorf(apperr.KindTransactionStatus, "transaction %s failed on ledger", txID))
			return
		}
	}
}
