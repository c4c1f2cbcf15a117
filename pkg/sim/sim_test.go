package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
)

var (
	al = decoder.RegisterAccess{Index: decoder.RegisterA, Count: 1}
	ah = decoder.RegisterAccess{Index: decoder.RegisterA, Offset: 1, Count: 1}
	ax = decoder.RegisterAccess{Index: decoder.RegisterA, Count: 2}
)

func newMachine(program []byte) *Machine {
	image := memory.NewImage()
	n := image.Copy(0, program)

	return NewMachine(image, n)
}

func TestRegisters(t *testing.T) {
	var r Registers

	r.Set(ax, 0x1234)
	assert.Equal(t, uint16(0x34), r.Get(al))
	assert.Equal(t, uint16(0x12), r.Get(ah))

	r.Set(ah, 0xff)
	assert.Equal(t, uint16(0xff34), r.Get(ax))

	r.Set(al, 0x1ab)
	assert.Equal(t, uint16(0xffab), r.Get(ax), "only the low byte of the value is stored")

	r.Set(decoder.RegisterAccess{}, 0xffff)
	assert.Equal(t, uint16(0), r.Word(decoder.RegisterNone))
}

func TestUpdateFlags(t *testing.T) {
	tests := []struct {
		result uint32
		width  uint8
		want   string
	}{
		{0, 2, "PZ"},
		{1, 2, ""},
		{3, 1, "P"},
		{0x80, 1, "S"},
		{0x8000, 2, "PS"},
		{0x100, 1, "CPZ"},
		{0xffffffff, 2, "CPS"},
	}

	for _, test := range tests {
		var r Registers
		r.SetWord(decoder.RegisterFlags, FlagOverflow|FlagDirection)
		r.UpdateFlags(test.result, test.width)

		assert.Equal(t, test.want+"D", FlagString(r.Flags()), "result 0x%x width %d", test.result, test.width)
	}
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "", FlagString(0))
	assert.Equal(t, "CPAZSTIDO", FlagString(0xffff))
}

func TestRunLoop(t *testing.T) {
	// mov cx, 3
	// sub cx, 1
	// jne $-3
	// hlt
	m := newMachine([]byte{0xb9, 0x03, 0x00, 0x83, 0xe9, 0x01, 0x75, 0xfb, 0xf4})

	var trace bytes.Buffer
	require.NoError(t, m.Run(&trace))

	assert.Equal(t, uint16(0), m.Word(decoder.RegisterC))
	assert.Equal(t, uint16(9), m.Word(decoder.RegisterIP))
	assert.True(t, m.HasFlag(FlagZero))

	lines := strings.Split(strings.TrimSuffix(trace.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "mov cx, 3 ; cx:0x0->0x3 ip:0x0->0x3", lines[0])
	assert.Equal(t, "sub cx, 1 ; cx:0x3->0x2 ip:0x3->0x6", lines[1])
	assert.Equal(t, "jne $-3 ; ip:0x6->0x3", lines[2])
	assert.Equal(t, "hlt ; ip:0x8->0x9", lines[7])
}

func TestRunMemory(t *testing.T) {
	m := newMachine([]byte{
		0xc7, 0x06, 0xe8, 0x03, 0x01, 0x00, // mov word [1000], 1
		0x8b, 0x1e, 0xe8, 0x03, // mov bx, [1000]
		0xbd, 0xd0, 0x07, // mov bp, 2000
		0xc6, 0x46, 0x04, 0x0a, // mov byte [bp + 4], 10
		0x8a, 0x46, 0x04, // mov al, [bp + 4]
		0x01, 0x5e, 0x04, // add [bp + 4], bx
	})

	require.NoError(t, m.Run(nil))

	assert.Equal(t, uint16(1), m.image.Read16(1000))
	assert.Equal(t, uint16(1), m.Word(decoder.RegisterB))
	assert.Equal(t, uint16(10), m.Get(al))
	assert.Equal(t, uint16(11), m.image.Read16(2004))
	assert.True(t, m.Done())
}

func TestRunSegments(t *testing.T) {
	m := newMachine([]byte{
		0xb8, 0x00, 0x10, // mov ax, 0x1000
		0x8e, 0xc0, // mov es, ax
		0x26, 0xc6, 0x06, 0x40, 0x00, 0x2a, // mov byte [es:64], 42
	})

	require.NoError(t, m.Run(nil))

	assert.Equal(t, byte(42), m.image.Read8(0x10040))
	assert.Equal(t, byte(0), m.image.Read8(0x40), "ds:64 is left alone")
}

func TestConditionalJumps(t *testing.T) {
	// mov al, a
	// cmp al, b
	// jcc $+3
	// hlt
	// hlt
	run := func(t *testing.T, opcode byte, a, b byte) uint16 {
		m := newMachine([]byte{0xb0, a, 0x3c, b, opcode, 0x01, 0xf4, 0xf4})
		require.NoError(t, m.Run(nil))
		return m.Word(decoder.RegisterIP)
	}

	const (
		taken    = 8
		notTaken = 7
	)
	tests := []struct {
		name   string
		opcode byte
		a, b   byte
		want   uint16
	}{
		{"jl less", 0x7c, 1, 2, taken},
		{"jl greater", 0x7c, 2, 1, notTaken},
		{"jl signed", 0x7c, 0xff, 1, taken},
		{"jl overflow", 0x7c, 0x80, 1, taken},
		{"jnl greater", 0x7d, 2, 1, taken},
		{"jnl equal", 0x7d, 1, 1, taken},
		{"jnl less", 0x7d, 1, 2, notTaken},
		{"jle equal", 0x7e, 1, 1, taken},
		{"jle less", 0x7e, 1, 2, taken},
		{"jle greater", 0x7e, 2, 1, notTaken},
		{"jg greater", 0x7f, 2, 1, taken},
		{"jg equal", 0x7f, 1, 1, notTaken},
		{"jg less", 0x7f, 1, 2, notTaken},
		{"ja above", 0x77, 2, 1, taken},
		{"ja unsigned", 0x77, 0xff, 1, taken},
		{"ja equal", 0x77, 1, 1, notTaken},
		{"ja below", 0x77, 1, 2, notTaken},
		{"jbe below", 0x76, 1, 2, taken},
		{"jbe equal", 0x76, 1, 1, taken},
		{"jbe above", 0x76, 2, 1, notTaken},
		{"jo overflow", 0x70, 0x80, 1, taken},
		{"jo no overflow", 0x70, 1, 2, notTaken},
		{"jno no overflow", 0x71, 1, 2, taken},
		{"jno overflow", 0x71, 0x80, 1, notTaken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, run(t, test.opcode, test.a, test.b))
		})
	}
}

func TestCompare(t *testing.T) {
	// mov ax, 5
	// cmp ax, 6
	m := newMachine([]byte{0xb8, 0x05, 0x00, 0x3d, 0x06, 0x00})
	require.NoError(t, m.Run(nil))

	assert.Equal(t, uint16(5), m.Get(ax))
	assert.True(t, m.HasFlag(FlagCarry))
	assert.True(t, m.HasFlag(FlagSign))
	assert.False(t, m.HasFlag(FlagZero))
	assert.False(t, m.HasFlag(FlagOverflow))
}

func TestOverflow(t *testing.T) {
	// mov al, 127
	// add al, 1
	m := newMachine([]byte{0xb0, 0x7f, 0x04, 0x01})
	require.NoError(t, m.Run(nil))

	assert.Equal(t, uint16(0x80), m.Get(al))
	assert.True(t, m.HasFlag(FlagOverflow))
	assert.True(t, m.HasFlag(FlagAuxiliary))
	assert.True(t, m.HasFlag(FlagSign))
	assert.False(t, m.HasFlag(FlagCarry))
}

func TestLoop(t *testing.T) {
	// mov cx, 4
	// add ax, 2
	// loop $-3
	m := newMachine([]byte{0xb9, 0x04, 0x00, 0x05, 0x02, 0x00, 0xe2, 0xfb})
	require.NoError(t, m.Run(nil))

	assert.Equal(t, uint16(8), m.Get(ax))
	assert.Equal(t, uint16(0), m.Word(decoder.RegisterC))
}

func TestStepLimit(t *testing.T) {
	// jmp $+0
	m := newMachine([]byte{0xeb, 0xfe})
	m.MaxSteps = 10

	err := m.Run(nil)
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestUnsupported(t *testing.T) {
	// push ax
	m := newMachine([]byte{0x50})

	err := m.Run(nil)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestTruncatedProgram(t *testing.T) {
	image := memory.NewImage()
	image.Copy(0, []byte{0xb8, 0x05, 0x00})
	m := NewMachine(image, 2)

	err := m.Run(nil)
	assert.ErrorIs(t, err, decoder.ErrTruncated)
}

func TestDump(t *testing.T) {
	m := newMachine([]byte{0xb8, 0x00, 0x00})
	require.NoError(t, m.Run(nil))

	var out bytes.Buffer
	require.NoError(t, m.Dump(&out))
	assert.Equal(t, "Final registers:\n      ip: 0x0003 (3)\n", out.String())

	m.SetWord(decoder.RegisterFlags, FlagZero|FlagParity)
	out.Reset()
	require.NoError(t, m.Dump(&out))
	assert.Equal(t, "Final registers:\n      ip: 0x0003 (3)\n   flags: PZ\n", out.String())
}
