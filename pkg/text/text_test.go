package text

import (
	"bytes"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
)

type vector struct {
	Name       string `yaml:"name"`
	Bytes      string `yaml:"bytes"`
	Asm        string `yaml:"asm"`
	Reassemble *bool  `yaml:"reassemble"`
}

func (v vector) program(t *testing.T) []byte {
	t.Helper()

	program, err := hex.DecodeString(strings.ReplaceAll(v.Bytes, " ", ""))
	require.NoError(t, err, v.Name)

	return program
}

func loadVectors(t *testing.T) []vector {
	t.Helper()

	contents, err := os.ReadFile(filepath.Join("testdata", "instructions.yaml"))
	require.NoError(t, err)

	var vectors []vector
	require.NoError(t, yaml.Unmarshal(contents, &vectors))
	require.NotEmpty(t, vectors)

	return vectors
}

func TestDisassemble(t *testing.T) {
	for _, v := range loadVectors(t) {
		got, err := Disassemble(v.program(t))
		if assert.NoError(t, err, v.Name) {
			assert.Equal(t, v.Asm, got, v.Name)
		}
	}
}

func TestDisassembleReassembles(t *testing.T) {
	if _, err := exec.LookPath("nasm"); err != nil {
		t.Skip("nasm is not installed")
	}

	for _, v := range loadVectors(t) {
		if v.Reassemble != nil && !*v.Reassemble {
			continue
		}

		source := v.program(t)
		asm, err := Disassemble(source)
		require.NoError(t, err, v.Name)

		verifyAssembled(t, []byte(Header(v.Name)+asm), source, v.Name)
	}
}

func verifyAssembled(t *testing.T, asm []byte, source []byte, name string) {
	t.Helper()

	dir := t.TempDir()
	in := filepath.Join(dir, "listing.asm")
	out := filepath.Join(dir, "listing")

	require.NoError(t, os.WriteFile(in, asm, 0o644), name)

	nasm := exec.Command("nasm", "-o", out, in)
	output, err := nasm.CombinedOutput()
	require.NoError(t, err, "%s: nasm: %s", name, output)

	assembled, err := os.ReadFile(out)
	require.NoError(t, err, name)

	assert.Equal(t, hex.EncodeToString(source), hex.EncodeToString(assembled), "%s:\n%s", name, asm)
}

func TestFormat(t *testing.T) {
	inst := decoder.Instruction{
		Op:    decoder.OpMov,
		Flags: decoder.FlagWide | decoder.FlagSegment,
		Operands: [3]decoder.Operand{
			decoder.EffectiveAddress{Segment: decoder.RegisterSS, Base: decoder.BaseBpSi, Displacement: -32768},
			decoder.Immediate{Value: 0xffff},
		},
	}
	assert.Equal(t, "mov word [ss:bp + si - 32768], 65535", Format(inst))

	// the operands of an instruction are not modified by the lock xchg swap
	lock := decoder.Instruction{
		Op:    decoder.OpXchg,
		Flags: decoder.FlagLock | decoder.FlagWide,
		Operands: [3]decoder.Operand{
			decoder.RegisterAccess{Index: decoder.RegisterA, Count: 2},
			decoder.EffectiveAddress{Segment: decoder.RegisterDS, Base: decoder.BaseSi, Displacement: 2},
		},
	}
	assert.Equal(t, "lock xchg word [si + 2], ax", Format(lock))
	assert.IsType(t, decoder.RegisterAccess{}, lock.Operands[0])
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "; listing_0037\nbits 16\n\n", Header("listing_0037"))
}

func TestListingAnnotate(t *testing.T) {
	program := []byte{0xb8, 0x05, 0x00, 0x26, 0xf0, 0x86, 0x07}
	d := decoder.FromBytes(program)

	var out bytes.Buffer
	require.NoError(t, NewListing(&out, d.Image(), true).WriteAll(d))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "mov ax, 5 "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "; 0x00000: b8 05 00"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "lock xchg byte [es:bx], al "), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "; 0x00003: 26 f0 86 07"), lines[1])
}

func TestListingStopsAtTheFailure(t *testing.T) {
	d := decoder.FromBytes([]byte{0x90, 0x60})

	var out bytes.Buffer
	err := NewListing(&out, d.Image(), false).WriteAll(d)
	assert.ErrorIs(t, err, decoder.ErrUnrecognized)
	assert.Equal(t, "nop\n", out.String())
}

func TestWriteLabeled(t *testing.T) {
	// mov cx, 3
	// es: mov ax, [bx]
	// loop to the segment override
	// jmp past the end of the program
	program := []byte{0xb9, 0x03, 0x00, 0x26, 0x8b, 0x07, 0xe2, 0xfb, 0xeb, 0x10}
	instructions, err := decoder.FromBytes(program).Decode()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteLabeled(&out, instructions))

	want := "mov cx, 3\n" +
		"label__3:\n" +
		"mov ax, [es:bx]\n" +
		"loop label__3\n" +
		"jmp $+18\n"
	assert.Equal(t, want, out.String())
}

func TestWriteLabeledAlternativeNames(t *testing.T) {
	// dec cx
	// jne to the dec
	instructions, err := decoder.FromBytes([]byte{0x49, 0x75, 0xfd}).Decode()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteLabeled(&out, instructions))

	assert.Equal(t, "label__0:\ndec cx\njne label__0 ; jnz\n", out.String())
}
