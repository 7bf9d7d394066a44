package types

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobOf(instructions ...[]byte) []byte {
	var blob []byte
	for _, ins := range instructions {
		blob = binary.BigEndian.AppendUint16(blob, uint16(len(ins)))
		blob = append(blob, ins...)
	}
	return blob
}

func TestBuiltTransaction_Instructions(t *testing.T) {
	instrA := []byte{0x01, 0x02}
	instrB := []byte{0x03}

	built := BuiltTransaction{
		Blob:             blobOf(instrA, instrB),
		InstructionCount: 2,
	}

	parsed, err := built.Instructions()
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, instrA, parsed[0])
	assert.Equal(t, instrB, parsed[1])
}

func TestBuiltTransaction_Instructions_CountMismatch(t *testing.T) {
	built := BuiltTransaction{
		Blob:             blobOf([]byte{1}),
		InstructionCount: 3,
	}
	_, err := built.Instructions()
	assert.Error(t, err)
}

func TestBuiltTransaction_Instructions_Truncated(t *testing.T) {
	built := BuiltTransaction{Blob: []byte{0x00}}
	_, err := built.Instructions()
	assert.Error(t, err)

	built = BuiltTransaction{Blob: []byte{0x00, 0x05, 0x01}}
	_, err = built.Instructions()
	assert.Error(t, err)
}

func TestBuiltTransaction_Instructions_Empty(t *testing.T) {
	built := BuiltTransaction{}
	parsed, err := built.Instructions()
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestTrackingEvent_IsError(t *testing.T) {
	progress := TrackingEvent{Phase: PhaseSigned, State: SignedTransaction{}}
	assert.False(t, progress.IsError())

	failure := TrackingEvent{Phase: PhaseBuiltFromIntent, Err: assert.AnError}
	assert.True(t, failure.IsError())
}
