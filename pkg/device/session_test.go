package device

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/fystack/radixium/pkg/apdu"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport answers each exchange with the next queued reply and
// records every APDU it saw.
type scriptedTransport struct {
	replies [][]byte
	sent    [][]byte
	err     error
	closed  bool
}

func (t *scriptedTransport) Exchange(apdu []byte) ([]byte, error) {
	t.sent = append(t.sent, apdu)
	if t.err != nil {
		return nil, t.err
	}
	if len(t.replies) == 0 {
		return nil, errors.New("no reply scripted")
	}
	reply := t.replies[0]
	t.replies = t.replies[1:]
	return reply, nil
}

func (t *scriptedTransport) Close() error {
	t.closed = true
	return nil
}

func okReply(payload []byte) []byte {
	out := append([]byte{}, payload...)
	return binary.BigEndian.AppendUint16(out, apdu.SWOK)
}

func statusReply(code uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, code)
}

func TestSession_SendStripsStatusWord(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{okReply([]byte{1, 2, 3})}}
	session := NewSession(tr)

	payload, err := session.Send(apdu.GetVersion())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)

	require.Len(t, tr.sent, 1)
	assert.Equal(t, []byte{0xAA, 0x00, 0x00, 0x00, 0x00}, tr.sent[0])
}

func TestSession_UnexpectedStatusSurfacesDeviceError(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{statusReply(0x6E22)}}
	session := NewSession(tr)

	_, err := session.Send(apdu.GetAppName())
	require.Error(t, err)

	var devErr *apperr.DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, uint16(0x6E22), devErr.Code)
	assert.Equal(t, byte(apdu.InsGetAppName), devErr.Ins)
}

func TestSession_ExpectedNonOKStatusAccepted(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{statusReply(0x6985)}}
	session := NewSession(tr)

	frame := apdu.GetVersion()
	frame.ExpectedStatuses = []uint16{apdu.SWOK, 0x6985}

	_, err := session.Send(frame)
	assert.NoError(t, err)
}

func TestSession_ShortReplyRejected(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{{0x90}}}
	session := NewSession(tr)

	_, err := session.Send(apdu.GetVersion())
	assert.ErrorIs(t, err, ErrReplyTooShort)
}

func TestSession_DirtyBlocksUntilReset(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{
		okReply([]byte{0, 1, 0}), // reset GET_VERSION
		okReply(nil),             // frame after reset
	}}
	session := NewSession(tr)
	session.MarkDirty()

	_, err := session.Send(apdu.GetAppName())
	assert.ErrorIs(t, err, ErrSessionDirty)

	require.NoError(t, session.Reset())
	assert.False(t, session.Dirty())

	_, err = session.Send(apdu.GetAppName())
	assert.NoError(t, err)
}

func TestSession_ResetFailureKeepsDirty(t *testing.T) {
	tr := &scriptedTransport{err: errors.New("unplugged")}
	session := NewSession(tr)
	session.MarkDirty()

	assert.Error(t, session.Reset())
	assert.True(t, session.Dirty())
}

func TestSession_Close(t *testing.T) {
	tr := &scriptedTransport{}
	session := NewSession(tr)
	require.NoError(t, session.Close())
	assert.True(t, tr.closed)
}
