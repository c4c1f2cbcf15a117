package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/text"
)

var (
	ErrStepLimit   = errors.New("step limit reached")
	ErrUnsupported = errors.New("unsupported instruction")
)

// DefaultMaxSteps keeps a program that never halts from running forever
const DefaultMaxSteps = 1 << 16

// Machine executes the program that lives at cs:0000 - cs:size.
// Only mov, add, sub, cmp, the relative jumps and the loops are executed.
// Memory operands use the segment of the decoder context, bp based addresses included.
type Machine struct {
	Registers

	image    *memory.Image
	ctx      *decoder.Context
	size     uint32
	MaxSteps int
}

func NewMachine(image *memory.Image, size uint32) *Machine {
	return &Machine{
		image:    image,
		ctx:      decoder.NewContext(),
		size:     size,
		MaxSteps: DefaultMaxSteps,
	}
}

// Done reports whether ip left the program.
func (m *Machine) Done() bool {
	return uint32(m.Word(decoder.RegisterIP)) >= m.size
}

// Step decodes and executes the instruction at cs:ip, prefixes included.
func (m *Machine) Step() (decoder.Instruction, error) {
	for {
		ip := m.Word(decoder.RegisterIP)
		at := memory.Cursor{Segment: m.Word(decoder.RegisterCS), Offset: ip}

		inst, next, err := decoder.DecodeOne(m.ctx, m.image, at)
		if err != nil {
			return inst, &decoder.DecodeError{Address: at.Address(0), Byte: m.image.Read8(at.Address(0)), Err: err}
		}
		if uint32(ip)+inst.Size > m.size {
			return inst, &decoder.DecodeError{Address: at.Address(0), Byte: m.image.Read8(at.Address(0)), Err: decoder.ErrTruncated}
		}

		m.SetWord(decoder.RegisterIP, next.Offset)
		if inst.IsPrefix() {
			continue
		}

		return inst, m.execute(inst, ip)
	}
}

// Run executes until the program halts, ip leaves the program or MaxSteps is reached.
// Every executed instruction is written to trace together with the registers it changed.
// trace may be nil.
func (m *Machine) Run(trace io.Writer) error {
	for steps := 0; !m.Done(); steps++ {
		if m.MaxSteps > 0 && steps >= m.MaxSteps {
			return fmt.Errorf("%w after %d instructions", ErrStepLimit, steps)
		}

		before := m.Registers
		inst, err := m.Step()
		if err != nil {
			return err
		}

		if trace != nil {
			line := text.Format(inst) + " ;" + changes(before, m.Registers)
			if _, err := fmt.Fprintln(trace, line); err != nil {
				return fmt.Errorf("failed to write the trace: %w", err)
			}
		}

		if inst.Op == decoder.OpHlt {
			return nil
		}
	}

	return nil
}

// ax:0x0->0x5 ip:0x0->0x3 flags:->PZ
func changes(before, after Registers) string {
	var sb strings.Builder
	for _, index := range dumpOrder {
		if index == decoder.RegisterIP {
			continue
		}
		if b, a := before.Word(index), after.Word(index); b != a {
			fmt.Fprintf(&sb, " %s:0x%x->0x%x", index, b, a)
		}
	}

	if b, a := before.Word(decoder.RegisterIP), after.Word(decoder.RegisterIP); b != a {
		fmt.Fprintf(&sb, " ip:0x%x->0x%x", b, a)
	}
	if b, a := before.Flags(), after.Flags(); b != a {
		fmt.Fprintf(&sb, " flags:%s->%s", FlagString(b), FlagString(a))
	}

	return sb.String()
}

func (m *Machine) execute(inst decoder.Instruction, ip uint16) error {
	switch inst.Op {
	case decoder.OpMov:
		width := m.width(inst, inst.Operands[0])
		return m.write(inst.Operands[0], width, m.read(inst, inst.Operands[1], width))

	case decoder.OpAdd, decoder.OpSub, decoder.OpCmp:
		width := m.width(inst, inst.Operands[0])
		mask := widthMask(width)
		a := m.read(inst, inst.Operands[0], width)
		b := m.read(inst, inst.Operands[1], width)

		subtract := inst.Op != decoder.OpAdd
		var result uint32
		if subtract {
			result = a - b
		} else {
			result = a + b
		}
		m.updateArithmeticFlags(a, b, result, width, subtract)

		if inst.Op == decoder.OpCmp {
			return nil
		}
		return m.write(inst.Operands[0], width, result&mask)

	case decoder.OpJmp:
		if _, ok := inst.Operands[0].(decoder.RelativeImmediate); !ok {
			return fmt.Errorf("%w: only relative jumps are executed (%s)", ErrUnsupported, text.Format(inst))
		}
		m.jump(inst, ip, true)
	case decoder.OpJe:
		m.jump(inst, ip, m.HasFlag(FlagZero))
	case decoder.OpJne:
		m.jump(inst, ip, !m.HasFlag(FlagZero))
	case decoder.OpJb:
		m.jump(inst, ip, m.HasFlag(FlagCarry))
	case decoder.OpJnb:
		m.jump(inst, ip, !m.HasFlag(FlagCarry))
	case decoder.OpJs:
		m.jump(inst, ip, m.HasFlag(FlagSign))
	case decoder.OpJns:
		m.jump(inst, ip, !m.HasFlag(FlagSign))
	case decoder.OpJp:
		m.jump(inst, ip, m.HasFlag(FlagParity))
	case decoder.OpJnp:
		m.jump(inst, ip, !m.HasFlag(FlagParity))
	case decoder.OpJl:
		m.jump(inst, ip, m.HasFlag(FlagSign) != m.HasFlag(FlagOverflow))
	case decoder.OpJnl:
		m.jump(inst, ip, m.HasFlag(FlagSign) == m.HasFlag(FlagOverflow))
	case decoder.OpJle:
		m.jump(inst, ip, m.HasFlag(FlagZero) || m.HasFlag(FlagSign) != m.HasFlag(FlagOverflow))
	case decoder.OpJg:
		m.jump(inst, ip, !m.HasFlag(FlagZero) && m.HasFlag(FlagSign) == m.HasFlag(FlagOverflow))
	case decoder.OpJbe:
		m.jump(inst, ip, m.HasFlag(FlagCarry) || m.HasFlag(FlagZero))
	case decoder.OpJa:
		m.jump(inst, ip, !m.HasFlag(FlagCarry) && !m.HasFlag(FlagZero))
	case decoder.OpJo:
		m.jump(inst, ip, m.HasFlag(FlagOverflow))
	case decoder.OpJno:
		m.jump(inst, ip, !m.HasFlag(FlagOverflow))
	case decoder.OpJcxz:
		m.jump(inst, ip, m.Word(decoder.RegisterC) == 0)
	case decoder.OpLoop, decoder.OpLoopz, decoder.OpLoopnz:
		// loops don't touch the flags
		cx := m.Word(decoder.RegisterC) - 1
		m.SetWord(decoder.RegisterC, cx)

		taken := cx != 0
		switch inst.Op {
		case decoder.OpLoopz:
			taken = taken && m.HasFlag(FlagZero)
		case decoder.OpLoopnz:
			taken = taken && !m.HasFlag(FlagZero)
		}
		m.jump(inst, ip, taken)

	case decoder.OpNop, decoder.OpHlt:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, text.Format(inst))
	}

	return nil
}

// the target is relative to the first byte of the instruction
func (m *Machine) jump(inst decoder.Instruction, ip uint16, taken bool) {
	if !taken {
		return
	}

	rel, ok := inst.Operands[0].(decoder.RelativeImmediate)
	if !ok {
		panic(fmt.Sprintf("AssertionError: %s without a relative target", inst.Op))
	}
	m.SetWord(decoder.RegisterIP, ip+uint16(rel.Value))
}

// width of the operation in bytes, the destination decides
func (m *Machine) width(inst decoder.Instruction, operand decoder.Operand) uint8 {
	if r, ok := operand.(decoder.RegisterAccess); ok {
		return r.Count
	}
	if inst.Flags.Has(decoder.FlagWide) {
		return 2
	}

	return 1
}

func (m *Machine) address(ea decoder.EffectiveAddress) uint32 {
	offset := uint16(ea.Displacement)
	first, second := ea.Base.Terms()
	if first != decoder.RegisterNone {
		offset += m.Word(first)
	}
	if second != decoder.RegisterNone {
		offset += m.Word(second)
	}

	return memory.Address(m.Word(ea.Segment), offset, 0)
}

func (m *Machine) read(inst decoder.Instruction, operand decoder.Operand, width uint8) uint32 {
	switch op := operand.(type) {
	case decoder.RegisterAccess:
		return uint32(m.Get(op))
	case decoder.EffectiveAddress:
		if width == 2 {
			return uint32(m.image.Read16(m.address(op)))
		}
		return uint32(m.image.Read8(m.address(op)))
	case decoder.Immediate:
		return op.Value & widthMask(width)
	default:
		panic(fmt.Sprintf("AssertionError: %s can't read the operand %T", inst.Op, operand))
	}
}

func (m *Machine) write(operand decoder.Operand, width uint8, value uint32) error {
	switch op := operand.(type) {
	case decoder.RegisterAccess:
		m.Set(op, uint16(value))
	case decoder.EffectiveAddress:
		if width == 2 {
			m.image.Write16(m.address(op), uint16(value))
		} else {
			m.image.Write8(m.address(op), byte(value))
		}
	default:
		return fmt.Errorf("%w: can't write to %T", ErrUnsupported, operand)
	}

	return nil
}
