package apdu

import (
	"errors"
	"fmt"

	"github.com/fystack/radixium/pkg/hdpath"
)

// CLA is the instruction class shared by every command of the Radix
// Ledger app.
const CLA byte = 0xAA

// SWOK is the status word a successful exchange ends with.
const SWOK uint16 = 0x9000

// MaxDataLength is the largest payload a single frame may carry; anything
// bigger has to go through the sign-tx streaming protocol.
const MaxDataLength = 255

// Instruction is a Radix Ledger app opcode.
type Instruction byte

const (
	InsGetVersion   Instruction = 0x00
	InsGetAppName   Instruction = 0x01
	InsSignHash     Instruction = 0x02
	InsKeyExchange  Instruction = 0x04
	InsSignTx       Instruction = 0x05
	InsGetPublicKey Instruction = 0x08
)

func (i Instruction) String() string {
	switch i {
	case InsGetVersion:
		return "GET_VERSION"
	case InsGetAppName:
		return "GET_APP_NAME"
	case InsSignHash:
		return "DO_SIGN_HASH"
	case InsKeyExchange:
		return "DO_KEY_EXCHANGE"
	case InsSignTx:
		return "DO_SIGN_TX"
	case InsGetPublicKey:
		return "GET_PUBLIC_KEY"
	}
	return fmt.Sprintf("INS_0x%02X", byte(i))
}

var errDataTooLong = errors.New("apdu: frame data exceeds 255 bytes")

// Frame is a single host-to-device command. Frames are pure values; sending
// them is the device session's business.
type Frame struct {
	Cla  byte
	Ins  Instruction
	P1   byte
	P2   byte
	Data []byte

	// ExpectedStatuses lists the status words the caller treats as success.
	// Empty means SWOK only.
	ExpectedStatuses []uint16
}

// MarshalBinary encodes the frame as CLA INS P1 P2 LC DATA.
func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.Data) > MaxDataLength {
		return nil, errDataTooLong
	}
	out := make([]byte, 5, 5+len(f.Data))
	out[0] = f.Cla
	out[1] = byte(f.Ins)
	out[2] = f.P1
	out[3] = f.P2
	out[4] = byte(len(f.Data))
	return append(out, f.Data...), nil
}

// StatusExpected reports whether the device's status word counts as success
// for this frame.
func (f Frame) StatusExpected(code uint16) bool {
	if len(f.ExpectedStatuses) == 0 {
		return code == SWOK
	}
	for _, want := range f.ExpectedStatuses {
		if code == want {
			return true
		}
	}
	return false
}

func newFrame(ins Instruction, p1, p2 byte, data []byte) Frame {
	return Frame{Cla: CLA, Ins: ins, P1: p1, P2: p2, Data: data}
}

func displayP1(display bool) byte {
	if display {
		return 0x01
	}
	return 0x00
}

// GetVersion builds the app version query.
func GetVersion() Frame {
	return newFrame(InsGetVersion, 0, 0, nil)
}

// GetAppName builds the app name query.
func GetAppName() Frame {
	return newFrame(InsGetAppName, 0, 0, nil)
}

// GetPublicKey builds a public key retrieval for the given path. With
// display set the device shows the derived address for visual verification
// before answering.
func GetPublicKey(path hdpath.Path, display bool) (Frame, error) {
	encoded, err := path.Encode()
	if err != nil {
		return Frame{}, err
	}
	return newFrame(InsGetPublicKey, displayP1(display), 0, encoded), nil
}

// KeyExchange builds an ECDH key exchange command. otherPublicKey must be the
// SEC1-uncompressed point (65 bytes for secp256k1). With display set the
// device shows the BIP path and the counterparty key before deriving.
func KeyExchange(path hdpath.Path, otherPublicKey []byte, display bool) (Frame, error) {
	encoded, err := path.Encode()
	if err != nil {
		return Frame{}, err
	}
	data, err := appendLenPrefixed(encoded, otherPublicKey)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(InsKeyExchange, displayP1(display), 0, data), nil
}

// SignHash builds a hash signing command for the given path.
func SignHash(path hdpath.Path, hash []byte, display bool) (Frame, error) {
	encoded, err := path.Encode()
	if err != nil {
		return Frame{}, err
	}
	data, err := appendLenPrefixed(encoded, hash)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(InsSignHash, displayP1(display), 0, data), nil
}

func appendLenPrefixed(dst, payload []byte) ([]byte, error) {
	if len(payload) > 0xFF {
		return nil, fmt.Errorf("apdu: payload of %d bytes does not fit a one byte length prefix", len(payload))
	}
	out := append(dst, byte(len(payload)))
	out = append(out, payload...)
	if len(out) > MaxDataLength {
		return nil, errDataTooLong
	}
	return out, nil
}
