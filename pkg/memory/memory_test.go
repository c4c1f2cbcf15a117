package memory

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		segment, offset, extra uint16
		want                   uint32
	}{
		{0, 0, 0, 0},
		{0, 0x1234, 0, 0x1234},
		{0x1000, 0x0010, 0, 0x10010},
		{0x1000, 0x0010, 2, 0x10012},
		{0xffff, 0x0010, 0, 0x00000},
		{0xffff, 0xffff, 0, 0x0ffef},
		// the offset wraps inside the segment before the segment is added
		{0x0001, 0xffff, 1, 0x00010},
	}

	for _, test := range tests {
		got := Address(test.segment, test.offset, test.extra)
		assert.Equal(t, test.want, got, "%04x:%04x+%d", test.segment, test.offset, test.extra)
	}
}

func TestCursor(t *testing.T) {
	c := Cursor{Segment: 0x0100, Offset: 0xfffe}
	assert.Equal(t, uint32(0x10ffe), c.Address(0))
	assert.Equal(t, uint32(0x10fff), c.Address(1))

	c = c.Advance(3)
	assert.Equal(t, Cursor{Segment: 0x0100, Offset: 0x0001}, c)
}

func TestReadWrite(t *testing.T) {
	m := NewImage()
	m.Write16(0x100, 0xbeef)

	assert.Equal(t, byte(0xef), m.Read8(0x100))
	assert.Equal(t, byte(0xbe), m.Read8(0x101))
	assert.Equal(t, uint16(0xbeef), m.Read16(0x100))
	assert.Equal(t, []byte{0xef, 0xbe, 0x00}, m.Bytes(0x100, 3))

	m.Write16(Mask, 0x1234)
	assert.Equal(t, byte(0x34), m.Read8(Mask))
	assert.Equal(t, byte(0x12), m.Read8(0))
}

func TestCopy(t *testing.T) {
	m := NewImage()
	assert.Equal(t, uint32(3), m.Copy(0x10, []byte{1, 2, 3}))
	assert.Equal(t, []byte{1, 2, 3}, m.Bytes(0x10, 3))

	assert.Equal(t, uint32(1), m.Copy(Mask, []byte{4, 5}))
	assert.Equal(t, byte(4), m.Read8(Mask))
	assert.Equal(t, byte(0), m.Read8(0))
}

func TestReadOutOfRange(t *testing.T) {
	m := NewImage()
	assert.Panics(t, func() { m.Read8(Size) })
	assert.Panics(t, func() { m.Write8(Size+10, 1) })
}

func TestLoad(t *testing.T) {
	m := NewImage()
	program := []byte{0xb8, 0x05, 0x00, 0x74, 0x02}

	n, err := m.Load(bytes.NewReader(program), 0x200)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(program)), n)
	assert.Equal(t, program, m.Bytes(0x200, uint32(len(program))))
}

func TestLoadClampsToTheEndOfMemory(t *testing.T) {
	m := NewImage()
	program := bytes.Repeat([]byte{0x90}, 10)

	n, err := m.Load(bytes.NewReader(program), Size-4)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), n)
	assert.Equal(t, byte(0x00), m.Read8(0), "nothing must wrap to the start of memory")
}

func TestLoadInvalidOffset(t *testing.T) {
	m := NewImage()
	_, err := m.Load(bytes.NewReader([]byte{0x90}), Size)
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	m := NewImage()
	n, err := m.Load(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)
}

func TestLoadXZ(t *testing.T) {
	program := []byte{0x89, 0xd9, 0x88, 0xe5, 0xf0, 0x86, 0xc3}

	var compressed bytes.Buffer
	w, err := xz.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = w.Write(program)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	m := NewImage()
	n, err := m.Load(&compressed, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(program)), n)
	assert.Equal(t, program, m.Bytes(0, n))
}

func TestLoadFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "program")
	require.NoError(t, os.WriteFile(filename, []byte{0xcc, 0xc3}, 0o644))

	m := NewImage()
	n, err := m.LoadFile(filename, 0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)
	assert.Equal(t, uint16(0xc3cc), m.Read16(0x10))

	_, err = m.LoadFile(filepath.Join(t.TempDir(), "missing"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
