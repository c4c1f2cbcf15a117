package decoder

import (
	"errors"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
)

// MOD field
//
// The MOD field indicates how many displacement bytes are present.
// Following Intel convention, if the displacement is two bytes,
// the most-significant byte is stored second in the instruction. (Little Endian)
// Immediate values __always__ follow any displacement values that __may__ be present.
const (
	MemoryModeNoDisplacementFieldEncoding = 0b00
	MemoryMode8DisplacementFieldEncoding  = 0b01
	MemoryMode16DisplacementFieldEncoding = 0b10
	RegisterModeFieldEncoding             = 0b11
)

// r/m = 110 with mod = 00 is not [bp], it's a 16-bit direct address
const directAddressRM = 0b110

// REG (Register) field encoding
// | REG | W = 0 | W = 1|
// ---------------------
// | 000 | AL    | AX   |
// | 001 | CL    | CX   |
// | 010 | DL    | DX   |
// | 011 | BL    | BX   |
// | 100 | AH    | SP   |
// | 101 | CH    | BP   |
// | 110 | DH    | SI   |
// | 111 | BH    | DI   |
var registerFieldEncoding = [8][2]RegisterAccess{
	{{RegisterA, 0, 1}, {RegisterA, 0, 2}},
	{{RegisterC, 0, 1}, {RegisterC, 0, 2}},
	{{RegisterD, 0, 1}, {RegisterD, 0, 2}},
	{{RegisterB, 0, 1}, {RegisterB, 0, 2}},
	{{RegisterA, 1, 1}, {RegisterSP, 0, 2}},
	{{RegisterC, 1, 1}, {RegisterBP, 0, 2}},
	{{RegisterD, 1, 1}, {RegisterSI, 0, 2}},
	{{RegisterB, 1, 1}, {RegisterDI, 0, 2}},
}

// SR (Segment register) field encoding
var segmentRegisterFieldEncoding = [4]RegisterIndex{RegisterES, RegisterCS, RegisterSS, RegisterDS}

func registerOperand(field uint32, wide bool) RegisterAccess {
	w := 0
	if wide {
		w = 1
	}

	return registerFieldEncoding[field&0b111][w]
}

func segmentOperand(field uint32) RegisterAccess {
	return RegisterAccess{Index: segmentRegisterFieldEncoding[field&0b11], Count: 2}
}

// fields collects what a format extracted from the stream
type fields struct {
	values [usageCount]uint32
	has    uint32
}

func (f *fields) set(usage Usage, value uint32) {
	f.values[usage] |= value
	f.has |= 1 << usage
}

func (f *fields) present(usage Usage) bool {
	return f.has&(1<<usage) != 0
}

func (f *fields) flag(usage Usage) bool {
	return f.values[usage] != 0
}

// tryMatch checks a single format against the stream at the cursor.
// ok is false when the format doesn't describe the bytes. err is only set when the format
// matched but the instruction doesn't fit into the region that may be decoded.
func tryMatch(format Format, image *memory.Image, at memory.Cursor, limit uint32) (inst Instruction, ok bool, err error) {
	r := newBitReader(image, at, limit)

	var f fields
	for _, field := range format.Fields {
		value := field.Value
		if field.Bits != 0 {
			value, err = r.take(field.Bits)
			if errors.Is(err, errUnderrun) {
				return Instruction{}, false, nil
			}
			if err != nil {
				return Instruction{}, false, err
			}
		}

		if field.Usage == UsageLiteral {
			if value != field.Value {
				return Instruction{}, false, nil
			}
			continue
		}

		f.set(field.Usage, value<<field.Shift)
	}

	mod := f.values[UsageMod]
	rm := f.values[UsageRM]
	s := f.flag(UsageS)
	w := f.flag(UsageW)

	hasDirectAddress := mod == MemoryModeNoDisplacementFieldEncoding && rm == directAddressRM
	hasDisplacement := f.flag(UsageHasDisp) ||
		mod == MemoryMode8DisplacementFieldEncoding ||
		mod == MemoryMode16DisplacementFieldEncoding ||
		hasDirectAddress
	displacementIsWide := f.flag(UsageDispAlwaysW) || mod == MemoryMode16DisplacementFieldEncoding || hasDirectAddress
	dataIsWide := f.flag(UsageWMakesDataW) && !s && w

	// the displacement and the data are read independently, an instruction may carry both
	// add byte [bp + 4], 10 -> [10000000] [01000110] [00000100] [00001010]
	if hasDisplacement {
		f.values[UsageDisp], err = r.value(displacementIsWide, !displacementIsWide)
		if err != nil {
			return Instruction{}, false, err
		}
	}
	if f.flag(UsageHasData) {
		f.values[UsageData], err = r.value(dataIsWide, s)
		if err != nil {
			return Instruction{}, false, err
		}
	}

	inst = Instruction{
		Address: at.Address(0),
		Size:    r.consumed,
		Op:      format.Op,
	}
	resolveOperands(&inst, &f)

	return inst, true, nil
}

// resolveOperands turns the raw fields into the flags and operands of the instruction
func resolveOperands(inst *Instruction, f *fields) {
	mod := f.values[UsageMod]
	rm := f.values[UsageRM]
	w := f.flag(UsageW)
	// the displacement is always kept as 16 bits, the narrow one was sign extended already
	displacement := int16(uint16(f.values[UsageDisp]))

	if w {
		inst.Flags |= FlagWide
	}
	if f.flag(UsageFar) {
		inst.Flags |= FlagFar
	}
	if f.present(UsageZ) && !f.flag(UsageZ) {
		inst.Flags |= FlagRepNZ
	}

	// call 1234h:5678h
	if f.flag(UsageFar) && !f.present(UsageMod) {
		inst.Operands[0] = Immediate{Value: f.values[UsageData]}
		inst.Operands[1] = Immediate{Value: uint32(uint16(displacement))}
		return
	}

	// D bit - Direction of the operation
	// d = 1 - reg is the destination, d = 0 - reg is the source
	regIndex, modIndex := 1, 0
	if f.flag(UsageD) {
		regIndex, modIndex = 0, 1
	}

	if f.present(UsageReg) {
		inst.Operands[regIndex] = registerOperand(f.values[UsageReg], w)
	}
	if f.present(UsageSR) {
		inst.Operands[regIndex] = segmentOperand(f.values[UsageSR])
	}

	if f.present(UsageMod) {
		if mod == RegisterModeFieldEncoding {
			inst.Operands[modIndex] = registerOperand(rm, w || f.flag(UsageRMRegAlwaysW))
		} else {
			base := BaseDirect
			if !(mod == MemoryModeNoDisplacementFieldEncoding && rm == directAddressRM) {
				base = EffectiveAddressBase(1 + rm&0b111)
			}
			inst.Operands[modIndex] = EffectiveAddress{
				Segment:      RegisterDS,
				Base:         base,
				Displacement: displacement,
			}
		}
	}

	// The trailing operands go to the first free slot:
	// out 44, al -> [44, al], add ax, 5 -> [ax, 5]
	if f.present(UsageV) {
		if f.flag(UsageV) {
			inst.setTrailing(RegisterAccess{Index: RegisterC, Count: 1})
		} else {
			inst.setTrailing(Immediate{Value: 1})
		}
	}
	if f.present(UsageEscape) {
		inst.setTrailing(Immediate{Value: f.values[UsageEscape]})
	}
	if f.flag(UsageRelJMPDisp) {
		inst.setTrailing(RelativeImmediate{Value: int32(displacement) + int32(inst.Size)})
	}
	if f.flag(UsageHasData) {
		inst.setTrailing(Immediate{Value: f.values[UsageData]})
	}
}

func (i *Instruction) setTrailing(operand Operand) {
	for idx := range i.Operands {
		if i.Operands[idx] == nil {
			i.Operands[idx] = operand
			return
		}
	}

	panic("AssertionError: an instruction can't have more than 3 operands")
}
