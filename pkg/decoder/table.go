package decoder

import (
	"fmt"
	"strconv"
)

// Field shorthands for the format tables.
// Every family of instructions lives in its own file, the names of the files follow
// the chapters of the "Instruction reference".
var (
	dBit     = Field{Usage: UsageD, Bits: 1}
	sBit     = Field{Usage: UsageS, Bits: 1}
	wBit     = Field{Usage: UsageW, Bits: 1}
	vBit     = Field{Usage: UsageV, Bits: 1}
	zBit     = Field{Usage: UsageZ, Bits: 1}
	modField = Field{Usage: UsageMod, Bits: 2}
	regField = Field{Usage: UsageReg, Bits: 3}
	rmField  = Field{Usage: UsageRM, Bits: 3}
	srField  = Field{Usage: UsageSR, Bits: 2}

	// [disp-lo] [disp-hi?]
	disp = Field{Usage: UsageHasDisp, Value: 1}
	// forces [disp-hi]
	dispW = Field{Usage: UsageDispAlwaysW, Value: 1}
	// [data-lo] [data-hi?]
	data = Field{Usage: UsageHasData, Value: 1}
	// [data-hi] is present when w = 1 and s = 0
	dataIfW   = Field{Usage: UsageWMakesDataW, Value: 1}
	relJMP    = Field{Usage: UsageRelJMPDisp, Value: 1}
	rmAlwaysW = Field{Usage: UsageRMRegAlwaysW, Value: 1}
	far       = Field{Usage: UsageFar, Value: 1}
)

// b is a literal that has to be matched bit for bit: b("100010") is 6 bits wide.
func b(pattern string) Field {
	value, err := strconv.ParseUint(pattern, 2, 8)
	if err != nil || len(pattern) > 8 {
		panic(fmt.Sprintf("AssertionError: invalid literal pattern %q", pattern))
	}

	return Field{Usage: UsageLiteral, Bits: uint8(len(pattern)), Value: uint32(value)}
}

func implicit(usage Usage, value uint32) Field {
	return Field{Usage: usage, Value: value}
}

func impW(value uint32) Field   { return implicit(UsageW, value) }
func impD(value uint32) Field   { return implicit(UsageD, value) }
func impS(value uint32) Field   { return implicit(UsageS, value) }
func impReg(value uint32) Field { return implicit(UsageReg, value) }
func impMod(value uint32) Field { return implicit(UsageMod, value) }
func impRM(value uint32) Field  { return implicit(UsageRM, value) }

func inst(op Operation, fields ...Field) Format {
	return Format{Op: op, Fields: fields}
}

// table holds every known encoding. The formats are tried in order and the first one that
// matches wins, so a more specific format has to come before a more general one.
var table = concat(
	dataTransfer,
	arithmetic,
	logic,
	stringManipulation,
	controlTransfer,
	interrupts,
	processorControl,
	prefixes,
)

func concat(families ...[]Format) []Format {
	var formats []Format
	for _, family := range families {
		formats = append(formats, family...)
	}

	return formats
}

// Formats returns a copy of the encodings in the order the decoder tries them.
func Formats() []Format {
	formats := make([]Format, len(table))
	for idx, format := range table {
		formats[idx] = Format{Op: format.Op, Fields: append([]Field(nil), format.Fields...)}
	}

	return formats
}
