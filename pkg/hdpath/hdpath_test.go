package hdpath

import (
	"encoding/hex"
	"testing"

	"github.com/fystack/radixium/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_DefaultRadixPath(t *testing.T) {
	path := Default(0, 0)

	encoded, err := path.Encode()
	require.NoError(t, err)

	// 05 ‖ 44' ‖ 536' ‖ 0' ‖ 0 ‖ 0
	expected := "058000002c80000218800000000000000000000000"
	assert.Equal(t, expected, hex.EncodeToString(encoded))
	assert.Len(t, encoded, EncodedLength)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	paths := []Path{
		Default(0, 0),
		Default(3, 7),
		{
			Purpose:  Component{Index: 44, Hardened: true},
			CoinType: Component{Index: 536, Hardened: true},
			Account:  Component{Index: 12, Hardened: true},
			Change:   Component{Index: 1},
			Index:    Component{Index: 99},
		},
	}

	for _, p := range paths {
		encoded, err := p.Encode()
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, p, decoded)
	}
}

func TestEncode_RejectsWrongCoinType(t *testing.T) {
	path := Default(0, 0)
	path.CoinType = Component{Index: 60, Hardened: true}

	_, err := path.Encode()
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidHDPath, apperr.KindOf(err))
}

func TestEncode_RejectsUnhardenedCoinType(t *testing.T) {
	path := Default(0, 0)
	path.CoinType.Hardened = false

	_, err := path.Encode()
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidHDPath, apperr.KindOf(err))
}

func TestParse(t *testing.T) {
	path, err := Parse("m/44'/536'/2'/0/5")
	require.NoError(t, err)

	assert.Equal(t, uint32(44), path.Purpose.Index)
	assert.True(t, path.Purpose.Hardened)
	assert.Equal(t, uint32(536), path.CoinType.Index)
	assert.True(t, path.CoinType.Hardened)
	assert.Equal(t, uint32(2), path.Account.Index)
	assert.Equal(t, uint32(0), path.Change.Index)
	assert.False(t, path.Change.Hardened)
	assert.Equal(t, uint32(5), path.Index.Index)
}

func TestParse_Malformed(t *testing.T) {
	for _, input := range []string{
		"",
		"m",
		"44'/536'/0'/0/0",
		"m/44'/536'/0'/0",
		"m/44'/536'/0'/0/0/1",
		"m/44'/abc'/0'/0/0",
	} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParse_WrongCoinTypeRejected(t *testing.T) {
	_, err := Parse("m/44'/60'/0'/0/0")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidHDPath, apperr.KindOf(err))

	_, err = Parse("m/44'/536/0'/0/0")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidHDPath, apperr.KindOf(err))
}

func TestString_RoundTrip(t *testing.T) {
	path := Default(1, 4)
	assert.Equal(t, "m/44'/536'/1'/0/4", path.String())

	parsed, err := Parse(path.String())
	require.NoError(t, err)
	assert.Equal(t, path, parsed)
}

func TestHardenedComponents(t *testing.T) {
	words := Default(0, 0).HardenedComponents()
	assert.Equal(t, []uint32{
		0x8000002C,
		0x80000218,
		0x80000000,
		0x00000000,
		0x00000000,
	}, words)
}
