package wallet

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fystack/radixium/pkg/apdu"
	"github.com/fystack/radixium/pkg/device"
	"github.com/fystack/radixium/pkg/ledger"
	"github.com/fystack/radixium/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func pubKeyReply(t *testing.T) ([]byte, *secp256k1.PublicKey) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	raw := priv.PubKey().SerializeUncompressed()
	return ok(append([]byte{byte(len(raw))}, raw...)), priv.PubKey()
}

func TestAccountAddress(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	address, err := AccountAddress("rdx", priv.PubKey())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(address), "rdx1"))

	other, err := AccountAddress("tdx", priv.PubKey())
	require.NoError(t, err)
	assert.NotEqual(t, address, other)
}

func TestLedgerWallet_DerivesAccountOnCreation(t *testing.T) {
	reply, pub := pubKeyReply(t)
	tr := &fakeTransport{replies: [][]byte{reply}}
	driver := ledger.NewDriver(device.NewSession(tr))

	w, err := NewLedgerWallet(driver, "rdx", 0, 0)
	require.NoError(t, err)

	account := w.ActiveAccount()
	assert.Equal(t, pub.SerializeCompressed(), account.PublicKey.SerializeCompressed())
	assert.Equal(t, "m/44'/536'/0'/0/0", account.Path.String())
	assert.True(t, strings.HasPrefix(string(account.Address), "rdx1"))

	// the derivation frame went out without display
	require.Len(t, tr.sent, 1)
	assert.Equal(t, byte(apdu.InsGetPublicKey), tr.sent[0][1])
	assert.Equal(t, byte(0x00), tr.sent[0][2])
}

func TestLedgerWallet_SignStreamsTransaction(t *testing.T) {
	reply, pub := pubKeyReply(t)
	derSig := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}
	tr := &fakeTransport{replies: [][]byte{
		reply,       // public key during setup
		ok(nil),     // sign-tx metadata
		ok(derSig),  // single instruction, returns signature
	}}
	driver := ledger.NewDriver(device.NewSession(tr))

	w, err := NewLedgerWallet(driver, "rdx", 0, 0)
	require.NoError(t, err)

	instr := []byte{0x01, 0x02}
	blob := binary.BigEndian.AppendUint16(nil, uint16(len(instr)))
	blob = append(blob, instr...)
	built := types.BuiltTransaction{Blob: blob, InstructionCount: 1, ByteCount: uint32(len(blob))}

	signed, err := w.Sign(context.Background(), built, "foo")
	require.NoError(t, err)
	assert.Equal(t, derSig, signed.Signature)
	assert.Equal(t, pub.SerializeCompressed(), signed.PublicKey)
	assert.Equal(t, built, signed.Built)

	// metadata then the single instruction frame with the last marker
	require.Len(t, tr.sent, 3)
	assert.Equal(t, byte(0x4D), tr.sent[1][2])
	assert.Equal(t, byte(0x49), tr.sent[2][2])
	assert.Equal(t, byte(0x01), tr.sent[2][3])
}

func TestLedgerWallet_SwitchAccount(t *testing.T) {
	replyA, _ := pubKeyReply(t)
	replyB, pubB := pubKeyReply(t)
	tr := &fakeTransport{replies: [][]byte{replyA, replyB}}
	driver := ledger.NewDriver(device.NewSession(tr))

	w, err := NewLedgerWallet(driver, "rdx", 0, 0)
	require.NoError(t, err)

	ch, cancel := w.ObserveActiveAccount()
	defer cancel()
	<-ch // replay of the initial account

	require.NoError(t, w.SwitchAccount(1, 2))
	next := <-ch
	assert.Equal(t, "m/44'/536'/1'/0/2", next.Path.String())
	assert.Equal(t, pubB.SerializeCompressed(), next.PublicKey.SerializeCompressed())
}
