package sim

import (
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
)

// 8086 flags with their bit positions
const (
	FlagCarry     uint16 = 1 << 0
	FlagParity    uint16 = 1 << 2
	FlagAuxiliary uint16 = 1 << 4
	FlagZero      uint16 = 1 << 6
	FlagSign      uint16 = 1 << 7
	FlagTrap      uint16 = 1 << 8
	FlagInterrupt uint16 = 1 << 9
	FlagDirection uint16 = 1 << 10
	FlagOverflow  uint16 = 1 << 11
)

var flagLetters = []struct {
	flag   uint16
	letter string
}{
	{FlagCarry, "C"},
	{FlagParity, "P"},
	{FlagAuxiliary, "A"},
	{FlagZero, "Z"},
	{FlagSign, "S"},
	{FlagTrap, "T"},
	{FlagInterrupt, "I"},
	{FlagDirection, "D"},
	{FlagOverflow, "O"},
}

// FlagString lists the set flags, CF|ZF -> "CZ"
func FlagString(flags uint16) string {
	var sb strings.Builder
	for _, f := range flagLetters {
		if flags&f.flag != 0 {
			sb.WriteString(f.letter)
		}
	}

	return sb.String()
}

// Registers is the register file, indexed the same way the decoder names the registers.
type Registers struct {
	values [decoder.RegisterCount]uint16
}

func (r *Registers) Get(access decoder.RegisterAccess) uint16 {
	value := r.values[access.Index]
	if access.IsWide() {
		return value
	}

	return (value >> (8 * uint16(access.Offset))) & 0xff
}

func (r *Registers) Set(access decoder.RegisterAccess, value uint16) {
	if access.Index == decoder.RegisterNone {
		return
	}

	if access.IsWide() {
		r.values[access.Index] = value
		return
	}

	shift := 8 * uint16(access.Offset)
	current := r.values[access.Index] &^ (0xff << shift)
	r.values[access.Index] = current | (value&0xff)<<shift
}

func (r *Registers) Word(index decoder.RegisterIndex) uint16 {
	return r.values[index]
}

func (r *Registers) SetWord(index decoder.RegisterIndex, value uint16) {
	r.values[index] = value
}

func (r *Registers) Flags() uint16 {
	return r.values[decoder.RegisterFlags]
}

func (r *Registers) HasFlag(flag uint16) bool {
	return r.Flags()&flag != 0
}

// UpdateFlags sets ZF, SF, CF and PF from an unmasked result of the given width in bytes.
// The result is larger than the mask when the operation carried or borrowed.
func (r *Registers) UpdateFlags(result uint32, width uint8) {
	mask := widthMask(width)
	masked := result & mask

	flags := r.Flags() &^ (FlagCarry | FlagParity | FlagAuxiliary | FlagZero | FlagSign | FlagOverflow)

	if masked == 0 {
		flags |= FlagZero
	}
	if masked&signBit(width) != 0 {
		flags |= FlagSign
	}
	if result > mask {
		flags |= FlagCarry
	}
	// parity of the low byte only
	if parity(byte(masked)) {
		flags |= FlagParity
	}

	r.values[decoder.RegisterFlags] = flags
}

// updateArithmeticFlags adds AF and OF, they depend on the operands and not only on the result.
func (r *Registers) updateArithmeticFlags(a, b, result uint32, width uint8, subtract bool) {
	r.UpdateFlags(result, width)

	flags := r.Flags()
	// carry out of the low nibble
	if (a^b^result)&0x10 != 0 {
		flags |= FlagAuxiliary
	}

	sign := signBit(width)
	overflow := ^(a ^ b) & (a ^ result) & sign
	if subtract {
		overflow = (a ^ b) & (a ^ result) & sign
	}
	if overflow != 0 {
		flags |= FlagOverflow
	}

	r.values[decoder.RegisterFlags] = flags
}

var dumpOrder = []decoder.RegisterIndex{
	decoder.RegisterA, decoder.RegisterB, decoder.RegisterC, decoder.RegisterD,
	decoder.RegisterSP, decoder.RegisterBP, decoder.RegisterSI, decoder.RegisterDI,
	decoder.RegisterES, decoder.RegisterCS, decoder.RegisterSS, decoder.RegisterDS,
	decoder.RegisterIP,
}

// Dump prints the registers that are not zero.
func (r *Registers) Dump(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("Final registers:\n")

	for _, index := range dumpOrder {
		value := r.values[index]
		if value == 0 {
			continue
		}
		fmt.Fprintf(&sb, "      %s: 0x%04x (%d)\n", index, value, value)
	}
	if flags := r.Flags(); flags != 0 {
		fmt.Fprintf(&sb, "   flags: %s\n", FlagString(flags))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func widthMask(width uint8) uint32 {
	if width == 2 {
		return 0xffff
	}

	return 0xff
}

func signBit(width uint8) uint32 {
	if width == 2 {
		return 0x8000
	}

	return 0x80
}

func parity(b byte) bool {
	return bits.OnesCount8(b)%2 == 0
}
