package hdpath

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/fystack/radixium/pkg/apperr"
)

const (
	// RadixCoinType is the SLIP-44 coin type registered for Radix. Paths with
	// any other coin type, or with the coin type left unhardened, are rejected.
	RadixCoinType uint32 = 536

	// PurposeBIP44 is the BIP-44 purpose component.
	PurposeBIP44 uint32 = 44

	hardenedBit = uint32(0x80000000)

	componentCount = 5
	// EncodedLength is the wire size of a serialized path: a one byte
	// component count followed by five big-endian 32-bit words.
	EncodedLength = 1 + componentCount*4
)

// Component is a single BIP-32 derivation step.
type Component struct {
	Index    uint32
	Hardened bool
}

func (c Component) word() uint32 {
	if c.Hardened {
		return c.Index | hardenedBit
	}
	return c.Index
}

func (c Component) String() string {
	if c.Hardened {
		return strconv.FormatUint(uint64(c.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(c.Index), 10)
}

// Path is a fixed-depth Radix derivation path:
// m / purpose' / coin_type' / account' / change / index.
type Path struct {
	Purpose  Component
	CoinType Component
	Account  Component
	Change   Component
	Index    Component
}

// Default returns the standard Radix path m/44'/536'/account'/0/index.
func Default(account, index uint32) Path {
	return Path{
		Purpose:  Component{Index: PurposeBIP44, Hardened: true},
		CoinType: Component{Index: RadixCoinType, Hardened: true},
		Account:  Component{Index: account, Hardened: true},
		Change:   Component{Index: 0},
		Index:    Component{Index: index},
	}
}

func (p Path) components() [componentCount]Component {
	return [componentCount]Component{p.Purpose, p.CoinType, p.Account, p.Change, p.Index}
}

// Validate checks the Radix coin type invariant.
func (p Path) Validate() error {
	if p.CoinType.Index != RadixCoinType {
		return apperr.Errorf(apperr.KindInvalidHDPath, "coin type must be %d, got %d", RadixCoinType, p.CoinType.Index)
	}
	if !p.CoinType.Hardened {
		return apperr.Errorf(apperr.KindInvalidHDPath, "coin type %d must be hardened", p.CoinType.Index)
	}
	return nil
}

// Encode serializes the path as a one byte component count followed by each
// component as a big-endian 32-bit word with its hardening bit applied.
func (p Path) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, EncodedLength)
	out[0] = componentCount
	for i, c := range p.components() {
		binary.BigEndian.PutUint32(out[1+4*i:], c.word())
	}
	return out, nil
}

// Decode parses the serialized form produced by Encode.
func Decode(data []byte) (Path, error) {
	if len(data) != EncodedLength {
		return Path{}, apperr.Errorf(apperr.KindInvalidHDPath, "expected %d bytes, got %d", EncodedLength, len(data))
	}
	if data[0] != componentCount {
		return Path{}, apperr.Errorf(apperr.KindInvalidHDPath, "expected %d components, got %d", componentCount, data[0])
	}
	var comps [componentCount]Component
	for i := range comps {
		word := binary.BigEndian.Uint32(data[1+4*i:])
		comps[i] = Component{Index: word &^ hardenedBit, Hardened: word&hardenedBit != 0}
	}
	p := Path{
		Purpose:  comps[0],
		CoinType: comps[1],
		Account:  comps[2],
		Change:   comps[3],
		Index:    comps[4],
	}
	if err := p.Validate(); err != nil {
		return Path{}, err
	}
	return p, nil
}

// Parse reads a path of the form "m/44'/536'/0'/0/0".
func Parse(s string) (Path, error) {
	parts := strings.Split(s, "/")
	if len(parts) != componentCount+1 || parts[0] != "m" {
		return Path{}, apperr.Errorf(apperr.KindInvalidHDPath, "malformed path %q", s)
	}
	var comps [componentCount]Component
	for i, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "H")
		if hardened {
			part = part[:len(part)-1]
		}
		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Path{}, apperr.Errorf(apperr.KindInvalidHDPath, "component %d of %q: %v", i, s, err)
		}
		if uint32(index)&hardenedBit != 0 {
			return Path{}, apperr.Errorf(apperr.KindInvalidHDPath, "component index %d out of range", index)
		}
		comps[i] = Component{Index: uint32(index), Hardened: hardened}
	}
	p := Path{
		Purpose:  comps[0],
		CoinType: comps[1],
		Account:  comps[2],
		Change:   comps[3],
		Index:    comps[4],
	}
	if err := p.Validate(); err != nil {
		return Path{}, err
	}
	return p, nil
}

func (p Path) String() string {
	comps := p.components()
	parts := make([]string, 0, componentCount+1)
	parts = append(parts, "m")
	for _, c := range comps {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "/")
}

// HardenedComponents flattens the path into raw BIP-32 words, hardening bits
// applied, for derivation libraries that walk components one by one.
func (p Path) HardenedComponents() []uint32 {
	comps := p.components()
	words := make([]uint32, componentCount)
	for i, c := range comps {
		words[i] = c.word()
	}
	return words
}

var _ fmt.Stringer = Path{}
