package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/fystack/radixium/pkg/apdu"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/logger"
)

var (
	// ErrSessionDirty is returned when a sign-tx stream was abandoned mid-way
	// and the session has not been reset since. The device state machine is
	// desynchronized until a Reset round-trip.
	ErrSessionDirty = errors.New("device: session dirty, reset required")

	ErrReplyTooShort = errors.New("device: reply shorter than a status word")
)

// Transport moves one APDU to the device and returns the raw reply,
// response payload followed by the two byte status word.
type Transport interface {
	Exchange(apdu []byte) ([]byte, error)
	Close() error
}

// Session serializes APDU exchanges against one device handle. Callers share
// a single session per device; concurrent Sends queue on the internal lock.
type Session struct {
	mu    sync.Mutex
	tr    Transport
	dirty bool
}

func NewSession(tr Transport) *Session {
	return &Session{tr: tr}
}

// Send marshals the frame, performs the exchange and returns the response
// payload with the status word stripped. A status word outside the frame's
// expected set surfaces as an apperr.DeviceError.
func (s *Session) Send(frame apdu.Frame) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty {
		return nil, ErrSessionDirty
	}
	return s.exchange(frame)
}

// exchange assumes the session lock is held.
func (s *Session) exchange(frame apdu.Frame) ([]byte, error) {
	wire, err := frame.MarshalBinary()
	if err != nil {
		return nil, err
	}

	reply, err := s.tr.Exchange(wire)
	if err != nil {
		return nil, fmt.Errorf("device: exchange %s: %w", frame.Ins, err)
	}
	if len(reply) < 2 {
		return nil, ErrReplyTooShort
	}

	status := binary.BigEndian.Uint16(reply[len(reply)-2:])
	payload := reply[:len(reply)-2]
	if !frame.StatusExpected(status) {
		return nil, apperr.Device(status, byte(frame.Ins))
	}
	return payload, nil
}

// MarkDirty flags the session after an interrupted sign-tx stream. Every
// Send fails until Reset succeeds.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		logger.Warn("Device session marked dirty, reset required before next use")
	}
	s.dirty = true
}

// Reset re-synchronizes the device state machine with a GET_VERSION
// round-trip and clears the dirty flag.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.exchange(apdu.GetVersion()); err != nil {
		return fmt.Errorf("device: reset: %w", err)
	}
	s.dirty = false
	return nil
}

// Dirty reports whether the session needs a Reset.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Close()
}
