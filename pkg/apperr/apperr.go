package apperr

import (
	"errors"
	"fmt"
)

// Kind tags an error with the operation or subsystem it came from. The
// underlying cause is preserved verbatim and reachable with errors.Unwrap.
type Kind string

const (
	// Node API read operations
	KindNetworkID           Kind = "NetworkId"
	KindTokenBalances       Kind = "TokenBalances"
	KindTransactionHistory  Kind = "TransactionHistory"
	KindNativeToken         Kind = "NativeToken"
	KindTokenInfo           Kind = "TokenInfo"
	KindStakesForAddress    Kind = "StakesForAddress"
	KindUnstakesForAddress  Kind = "UnstakesForAddress"
	KindValidators          Kind = "Validators"
	KindLookupValidator     Kind = "LookupValidator"
	KindLookupTransaction   Kind = "LookupTransaction"
	KindTransactionStatus   Kind = "TransactionStatus"
	KindNetworkTxThroughput Kind = "NetworkTxThroughput"
	KindNetworkTxDemand     Kind = "NetworkTxDemand"

	// Pipeline-critical node operations
	KindBuildTxFromIntent Kind = "BuildTxFromIntent"
	KindFinalizeTx        Kind = "FinalizeTx"
	KindSubmitSignedTx    Kind = "SubmitSignedTx"

	// Bootstrap
	KindGetNode      Kind = "GetNode"
	KindLoadKeystore Kind = "LoadKeystore"

	// Device and local validation
	KindDeviceStatus         Kind = "DeviceStatus"
	KindInvalidHDPath        Kind = "InvalidHDPath"
	KindMultipleNonNativeRRI Kind = "MultipleNonNativeRRIs"
	KindHrpTooLong           Kind = "HrpTooLong"
)

// Error is a domain-tagged error. Kind identifies the failed operation,
// Err carries the underlying cause unchanged.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind. A nil err returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Errorf tags a freshly formatted error with kind.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the domain tag from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var d *DeviceError
	if errors.As(err, &d) {
		return KindDeviceStatus
	}
	return ""
}

// DeviceError reports an APDU exchange that returned a status word outside
// the frame's expected set.
type DeviceError struct {
	Code uint16
	Ins  byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: device returned status 0x%04X for instruction 0x%02X", KindDeviceStatus, e.Code, e.Ins)
}

// Device constructs a DeviceError for the given status word and instruction.
func Device(code uint16, ins byte) error {
	return &DeviceError{Code: code, Ins: ins}
}
