package apdu

import (
	"encoding/binary"
	"fmt"

	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/hdpath"
)

// The sign-tx flow is a two phase streaming protocol keyed by P1. One
// metadata frame announces the transaction's shape, then every instruction
// of the serialized stream is delivered in order, the last one marked
// through P2. The device tracks the remaining count itself and answers the
// final frame with the signature.
const (
	p1SignTxMetadata    byte = 0x4D // 'M'
	p1SignTxInstruction byte = 0x49 // 'I'

	p2MoreInstructions byte = 0x00
	p2LastInstruction  byte = 0x01
)

// SignTxMetadata builds the phase A frame: path, total byte count,
// instruction count and the HRP of the single non-native token involved
// ("" when the transaction only moves the native token).
func SignTxMetadata(path hdpath.Path, txByteCount uint32, instructionCount uint16, nonNativeHRP string) (Frame, error) {
	if len(nonNativeHRP) > 0xFF {
		return Frame{}, apperr.Errorf(apperr.KindHrpTooLong, "hrp of %d bytes does not fit a one byte length prefix", len(nonNativeHRP))
	}
	encoded, err := path.Encode()
	if err != nil {
		return Frame{}, err
	}

	data := make([]byte, 0, len(encoded)+4+2+1+len(nonNativeHRP))
	data = append(data, encoded...)
	data = binary.BigEndian.AppendUint32(data, txByteCount)
	data = binary.BigEndian.AppendUint16(data, instructionCount)
	data = append(data, byte(len(nonNativeHRP)))
	data = append(data, nonNativeHRP...)
	if len(data) > MaxDataLength {
		return Frame{}, errDataTooLong
	}
	return newFrame(InsSignTx, p1SignTxMetadata, 0, data), nil
}

// SignTxStream assembles the complete ordered frame sequence for one
// transaction: the metadata frame followed by one frame per instruction,
// P2 raised on the last. The stream must be sent exactly in this order and
// never re-entered mid-way; a device error requires restarting from the
// metadata frame.
func SignTxStream(path hdpath.Path, txByteCount uint32, instructions [][]byte, nonNativeHRP string) ([]Frame, error) {
	if len(instructions) > 0xFFFF {
		return nil, fmt.Errorf("apdu: %d instructions exceed the u16 count field", len(instructions))
	}
	meta, err := SignTxMetadata(path, txByteCount, uint16(len(instructions)), nonNativeHRP)
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0, 1+len(instructions))
	frames = append(frames, meta)
	for i, ins := range instructions {
		if len(ins) > MaxDataLength {
			return nil, fmt.Errorf("apdu: instruction %d is %d bytes, limit is %d", i, len(ins), MaxDataLength)
		}
		p2 := p2MoreInstructions
		if i == len(instructions)-1 {
			p2 = p2LastInstruction
		}
		frames = append(frames, newFrame(InsSignTx, p1SignTxInstruction, p2, ins))
	}
	return frames, nil
}
