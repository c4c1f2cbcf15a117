package memory

import (
	"encoding/binary"
	"fmt"
)

// The 8086 addresses 1 MiB through 20 address lines. Every segment:offset pair
// is folded into that range, so the address wraps around at the top.
const (
	Size = 1 << 20
	Mask = Size - 1
)

// Address computes the absolute (physical) address of segment:offset+extra.
// The segment is shifted left by 4 bits (paragraph granularity), then added to the offset.
//
//	segment  ssss ssss ssss ssss 0000
//	offset        oooo oooo oooo oooo
//	---------------------------------
//	address  aaaa aaaa aaaa aaaa aaaa
func Address(segment, offset, extra uint16) uint32 {
	return ((uint32(segment) << 4) + uint32(offset+extra)) & Mask
}

// Cursor is a segmented position inside the Image.
type Cursor struct {
	Segment uint16
	Offset  uint16
}

func (c Cursor) Address(extra uint16) uint32 {
	return Address(c.Segment, c.Offset, extra)
}

// Advance moves the offset forward. The segment never changes, the offset wraps at 64 KiB.
func (c Cursor) Advance(n uint32) Cursor {
	c.Offset += uint16(n)
	return c
}

// Image is the flat memory of the machine.
type Image struct {
	bytes [Size]byte
}

func NewImage() *Image {
	return &Image{}
}

// Read8 panics when the address is outside of the image, that is a programming error
// and not a problem with the instruction stream.
func (m *Image) Read8(address uint32) byte {
	verifyAddress(address)
	return m.bytes[address]
}

func (m *Image) Write8(address uint32, value byte) {
	verifyAddress(address)
	m.bytes[address] = value
}

// Read16 reads a little endian word. The high byte wraps around the end of the image.
func (m *Image) Read16(address uint32) uint16 {
	low := m.Read8(address)
	high := m.Read8((address + 1) & Mask)

	return binary.LittleEndian.Uint16([]byte{low, high})
}

func (m *Image) Write16(address uint32, value uint16) {
	m.Write8(address, byte(value))
	m.Write8((address+1)&Mask, byte(value>>8))
}

// Copy places the program at offset, whatever doesn't fit is dropped.
func (m *Image) Copy(offset uint32, program []byte) uint32 {
	verifyAddress(offset)
	return uint32(copy(m.bytes[offset:], program))
}

// Bytes returns a copy of count bytes starting at address.
func (m *Image) Bytes(address uint32, count uint32) []byte {
	out := make([]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		out = append(out, m.Read8((address+i)&Mask))
	}

	return out
}

func verifyAddress(address uint32) {
	if address >= Size {
		panic(fmt.Sprintf("AssertionError: address 0x%x is outside of the memory image", address))
	}
}
