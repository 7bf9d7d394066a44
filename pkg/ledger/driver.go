package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fystack/radixium/pkg/apdu"
	"github.com/fystack/radixium/pkg/device"
	"github.com/fystack/radixium/pkg/hdpath"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/types"
)

var (
	ErrEmptySignature = errors.New("ledger: device returned empty signature")
	ErrShortReply     = errors.New("ledger: reply shorter than announced")
)

// Driver speaks the Radix app protocol over one device session. Every frame
// goes through the session's Send, so single-frame calls are answered one at
// a time. The frames of a SignTx stream are sent one Send each and are not
// held together: a call made on the same session while a stream runs can
// slip its frame in between them.
type Driver struct {
	session *device.Session
}

func NewDriver(session *device.Session) *Driver {
	return &Driver{session: session}
}

// Session exposes the underlying device session, mainly so callers can
// Reset after an aborted sign-tx stream.
func (d *Driver) Session() *device.Session {
	return d.session
}

// AppVersion queries the running app's semantic version.
func (d *Driver) AppVersion() (string, error) {
	payload, err := d.session.Send(apdu.GetVersion())
	if err != nil {
		return "", err
	}
	if len(payload) < 3 {
		return "", fmt.Errorf("ledger: version reply of %d bytes", len(payload))
	}
	return fmt.Sprintf("%d.%d.%d", payload[0], payload[1], payload[2]), nil
}

// AppName queries the running app's name, used to verify the Radix app is
// open before any signing flow.
func (d *Driver) AppName() (string, error) {
	payload, err := d.session.Send(apdu.GetAppName())
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// PublicKey retrieves the public key at path. With display the device shows
// the derived address and waits for user approval first.
func (d *Driver) PublicKey(path hdpath.Path, display bool) (*secp256k1.PublicKey, error) {
	frame, err := apdu.GetPublicKey(path, display)
	if err != nil {
		return nil, err
	}
	payload, err := d.session.Send(frame)
	if err != nil {
		return nil, err
	}
	raw, err := lenPrefixed(payload)
	if err != nil {
		return nil, err
	}
	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("ledger: parse public key: %w", err)
	}
	return key, nil
}

// SignHash asks the device to sign an externally computed hash.
func (d *Driver) SignHash(path hdpath.Path, hash []byte, display bool) ([]byte, error) {
	frame, err := apdu.SignHash(path, hash, display)
	if err != nil {
		return nil, err
	}
	signature, err := d.session.Send(frame)
	if err != nil {
		return nil, err
	}
	if len(signature) == 0 {
		return nil, ErrEmptySignature
	}
	return signature, nil
}

// KeyExchange performs an on-device ECDH against the counterparty's key and
// returns the shared secret point.
func (d *Driver) KeyExchange(path hdpath.Path, otherPublicKey *secp256k1.PublicKey, display bool) ([]byte, error) {
	frame, err := apdu.KeyExchange(path, otherPublicKey.SerializeUncompressed(), display)
	if err != nil {
		return nil, err
	}
	return d.session.Send(frame)
}

// SignTx streams a built transaction to the device for user review and
// signing. The frames go out strictly in order, metadata first; the last
// instruction frame's reply carries the signature.
//
// Cancellation is honored between frames only. An in-flight frame always
// completes, after which the session is marked dirty and must be Reset
// before the next use; interrupting the device mid-stream would otherwise
// desynchronize its instruction counter.
func (d *Driver) SignTx(ctx context.Context, path hdpath.Path, built types.BuiltTransaction, nonNativeHRP string) ([]byte, error) {
	instructions, err := built.Instructions()
	if err != nil {
		return nil, err
	}
	frames, err := apdu.SignTxStream(path, built.ByteCount, instructions, nonNativeHRP)
	if err != nil {
		return nil, err
	}

	logger.Debug("Streaming sign-tx",
		"instructions", len(instructions),
		"byteCount", built.ByteCount,
		"hrp", nonNativeHRP)

	var signature []byte
	for i, frame := range frames {
		select {
		case <-ctx.Done():
			d.session.MarkDirty()
			return nil, fmt.Errorf("ledger: sign-tx aborted before frame %d: %w", i, ctx.Err())
		default:
		}

		payload, err := d.session.Send(frame)
		if err != nil {
			if i > 0 && i < len(frames)-1 {
				// the device aborts its stream on error; force a reset so a
				// retry starts clean from the metadata frame
				d.session.MarkDirty()
			}
			return nil, err
		}
		signature = payload
	}
	if len(signature) == 0 {
		return nil, ErrEmptySignature
	}
	return signature, nil
}

func lenPrefixed(payload []byte) ([]byte, error) {
	if len(payload) < 1 || len(payload) < 1+int(payload[0]) {
		return nil, ErrShortReply
	}
	return payload[1 : 1+int(payload[0])], nil
}
