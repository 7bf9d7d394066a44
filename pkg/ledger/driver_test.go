package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fystack/radixium/pkg/apdu"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/device"
	"github.com/fystack/radixium/pkg/hdpath"
	"github.com/fystack/radixium/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records APDUs and replies from a script. Replies already
// include the trailing status word.
type fakeTransport struct {
	replies [][]byte
	sent    [][]byte
}

func (t *fakeTransport) Exchange(apduBytes []byte) ([]byte, error) {
	t.sent = append(t.sent, append([]byte{}, apduBytes...))
	if len(t.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	reply := t.replies[0]
	t.replies = t.replies[1:]
	return reply, nil
}

func (t *fakeTransport) Close() error { return nil }

func ok(payload []byte) []byte {
	return binary.BigEndian.AppendUint16(append([]byte{}, payload...), apdu.SWOK)
}

func status(code uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, code)
}

func newDriver(replies ...[]byte) (*Driver, *fakeTransport) {
	tr := &fakeTransport{replies: replies}
	return NewDriver(device.NewSession(tr)), tr
}

func blobOf(instructions ...[]byte) types.BuiltTransaction {
	var blob []byte
	for _, ins := range instructions {
		blob = binary.BigEndian.AppendUint16(blob, uint16(len(ins)))
		blob = append(blob, ins...)
	}
	return types.BuiltTransaction{
		Blob:             blob,
		InstructionCount: len(instructions),
		ByteCount:        uint32(len(blob)),
	}
}

func TestAppVersion(t *testing.T) {
	driver, _ := newDriver(ok([]byte{1, 2, 3}))

	version, err := driver.AppVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
}

func TestAppName(t *testing.T) {
	driver, _ := newDriver(ok([]byte("Radix")))

	name, err := driver.AppName()
	require.NoError(t, err)
	assert.Equal(t, "Radix", name)
}

func TestPublicKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pubBytes := priv.PubKey().SerializeUncompressed()

	payload := append([]byte{byte(len(pubBytes))}, pubBytes...)
	driver, tr := newDriver(ok(payload))

	key, err := driver.PublicKey(hdpath.Default(0, 0), false)
	require.NoError(t, err)
	assert.Equal(t, priv.PubKey().SerializeCompressed(), key.SerializeCompressed())

	// GET_PUBLIC_KEY without display
	require.Len(t, tr.sent, 1)
	assert.Equal(t, byte(0xAA), tr.sent[0][0])
	assert.Equal(t, byte(apdu.InsGetPublicKey), tr.sent[0][1])
	assert.Equal(t, byte(0x00), tr.sent[0][2])
}

func TestSignTx_FrameOrderAndSignature(t *testing.T) {
	instrA := []byte{0x01, 0x02}
	instrB := []byte{0x03}
	built := blobOf(instrA, instrB)
	derSig := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}

	driver, tr := newDriver(ok(nil), ok(nil), ok(derSig))

	signature, err := driver.SignTx(context.Background(), hdpath.Default(0, 0), built, "foo")
	require.NoError(t, err)
	assert.Equal(t, derSig, signature)

	require.Len(t, tr.sent, 3)
	// metadata first, then instructions in order, last marked by P2
	assert.Equal(t, byte(0x4D), tr.sent[0][2])
	assert.Equal(t, byte(0x49), tr.sent[1][2])
	assert.Equal(t, byte(0x00), tr.sent[1][3])
	assert.Equal(t, byte(0x49), tr.sent[2][2])
	assert.Equal(t, byte(0x01), tr.sent[2][3])
	// instruction payload rides after the 5 byte header
	assert.Equal(t, instrA, tr.sent[1][5:])
	assert.Equal(t, instrB, tr.sent[2][5:])
}

func TestSignTx_DeviceRejectionMidStreamMarksDirty(t *testing.T) {
	built := blobOf([]byte{1}, []byte{2}, []byte{3})
	driver, _ := newDriver(ok(nil), ok(nil), status(0x6985))

	_, err := driver.SignTx(context.Background(), hdpath.Default(0, 0), built, "")
	require.Error(t, err)

	var devErr *apperr.DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, uint16(0x6985), devErr.Code)
	assert.True(t, driver.Session().Dirty())
}

func TestSignTx_CancelledBetweenFramesMarksDirty(t *testing.T) {
	built := blobOf([]byte{1}, []byte{2})
	driver, _ := newDriver(ok(nil), ok(nil), ok([]byte{0x30}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.SignTx(ctx, hdpath.Default(0, 0), built, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, driver.Session().Dirty())

	// nothing works until reset
	_, err = driver.AppVersion()
	assert.ErrorIs(t, err, device.ErrSessionDirty)
}

func TestSignTx_EmptySignatureRejected(t *testing.T) {
	// the driver itself signs whatever it is handed (the RRI guard lives in
	// the intent); an empty reply to the final frame is rejected.
	built := blobOf([]byte{1})
	driver, _ := newDriver(ok(nil), ok(nil))

	_, err := driver.SignTx(context.Background(), hdpath.Default(0, 0), built, "")
	assert.ErrorIs(t, err, ErrEmptySignature)
}

func TestSignHash(t *testing.T) {
	derSig := []byte{0x30, 0x01, 0x00}
	driver, tr := newDriver(ok(derSig))

	signature, err := driver.SignHash(hdpath.Default(0, 0), make([]byte, 32), false)
	require.NoError(t, err)
	assert.Equal(t, derSig, signature)
	assert.Equal(t, byte(apdu.InsSignHash), tr.sent[0][1])
}

func TestKeyExchange(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	shared := []byte{0xAA, 0xBB}
	driver, tr := newDriver(ok(shared))

	point, err := driver.KeyExchange(hdpath.Default(0, 0), priv.PubKey(), true)
	require.NoError(t, err)
	assert.Equal(t, shared, point)

	sent := tr.sent[0]
	assert.Equal(t, byte(apdu.InsKeyExchange), sent[1])
	assert.Equal(t, byte(0x01), sent[2])
	// data: path(21) ‖ len ‖ uncompressed key(65)
	assert.Equal(t, byte(21+1+65), sent[4])
	assert.Equal(t, byte(65), sent[5+21])
}
