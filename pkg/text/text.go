package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
)

// Header is the beginning of a listing that nasm is able to assemble
func Header(filename string) string {
	return fmt.Sprintf("; %s\nbits 16\n\n", filename)
}

// Format renders a single instruction in the nasm syntax, without a trailing new line.
func Format(inst decoder.Instruction) string {
	var sb strings.Builder

	operands := inst.Operands
	if inst.Flags.Has(decoder.FlagLock) {
		// nasm only accepts lock xchg with the memory operand first
		if inst.Op == decoder.OpXchg {
			operands[0], operands[1] = operands[1], operands[0]
		}
		sb.WriteString("lock ")
	}

	if inst.Flags.Has(decoder.FlagRep) {
		sb.WriteString(repeatPrefix(inst))
		sb.WriteString(" ")
	}

	sb.WriteString(inst.Op.String())
	if isStringOperation(inst.Op) {
		if inst.Flags.Has(decoder.FlagWide) {
			sb.WriteString("w")
		} else {
			sb.WriteString("b")
		}
	}

	// call 4660:22136
	if segment, offset, ok := farPointer(inst); ok {
		fmt.Fprintf(&sb, " %d:%d", segment.Value, offset.Value)
		return sb.String()
	}

	separator := " "
	for _, operand := range operands {
		if operand == nil {
			continue
		}

		sb.WriteString(separator)
		separator = ", "

		sb.WriteString(formatOperand(inst, operands, operand))
	}

	return sb.String()
}

// __REPE__ and __REPZ__ are, by convention, used with the __CMPS__ (Compare string) and __SCAS__ (Scan string) instructions
// and require __ZF__ to be set before initializing the next repetition.
//
// __REPNE__ and __REPNZ__ require __ZF__ flag to be cleared or the repetition is terminated.
func repeatPrefix(inst decoder.Instruction) string {
	if inst.Flags.Has(decoder.FlagRepNZ) {
		return "repnz"
	}

	if inst.Op == decoder.OpCmps || inst.Op == decoder.OpScas {
		return "repz"
	}

	return "rep"
}

func farPointer(inst decoder.Instruction) (segment decoder.Immediate, offset decoder.Immediate, ok bool) {
	if !inst.Flags.Has(decoder.FlagFar) {
		return segment, offset, false
	}

	segment, ok = inst.Operands[0].(decoder.Immediate)
	if !ok {
		return segment, offset, false
	}
	offset, ok = inst.Operands[1].(decoder.Immediate)

	return segment, offset, ok
}

func isStringOperation(op decoder.Operation) bool {
	switch op {
	case decoder.OpMovs, decoder.OpCmps, decoder.OpScas, decoder.OpLods, decoder.OpStos:
		return true
	default:
		return false
	}
}

func formatOperand(inst decoder.Instruction, operands [3]decoder.Operand, operand decoder.Operand) string {
	switch op := operand.(type) {
	case decoder.RegisterAccess:
		return op.Name()
	case decoder.EffectiveAddress:
		return formatMemory(inst, operands, op)
	case decoder.Immediate:
		return formatImmediate(op)
	case decoder.RelativeImmediate:
		return fmt.Sprintf("$%+d", op.Value)
	default:
		panic(fmt.Sprintf("AssertionError: unexpected operand %T", operand))
	}
}

// the value was sign extended when it doesn't fit into 16 bits
func formatImmediate(imm decoder.Immediate) string {
	if imm.Value > 0xffff {
		return strconv.Itoa(int(int32(imm.Value)))
	}

	return strconv.Itoa(int(imm.Value))
}

func formatMemory(inst decoder.Instruction, operands [3]decoder.Operand, ea decoder.EffectiveAddress) string {
	var sb strings.Builder

	// the size can't be inferred from a register, so it has to be explicit
	_, registerFirst := operands[0].(decoder.RegisterAccess)
	switch {
	case inst.Flags.Has(decoder.FlagFar):
		sb.WriteString("far ")
	case !registerFirst && inst.Op != decoder.OpEsc:
		if inst.Flags.Has(decoder.FlagWide) {
			sb.WriteString("word ")
		} else {
			sb.WriteString("byte ")
		}
	}

	sb.WriteString("[")
	if inst.Flags.Has(decoder.FlagSegment) {
		sb.WriteString(ea.Segment.String())
		sb.WriteString(":")
	}

	if ea.Base == decoder.BaseDirect {
		sb.WriteString(strconv.Itoa(int(uint16(ea.Displacement))))
	} else {
		sb.WriteString(ea.Base.String())
		displacement := int32(ea.Displacement)
		if displacement < 0 {
			fmt.Fprintf(&sb, " - %d", -displacement)
		} else if displacement > 0 {
			fmt.Fprintf(&sb, " + %d", displacement)
		}
	}
	sb.WriteString("]")

	return sb.String()
}
