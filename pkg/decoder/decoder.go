package decoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
)

// Instruction reference for 8086 CPU (https://edge.edx.org/c4x/BITSPilani/EEE231/asset/8086_family_Users_Manual_1_.pdf | page 161(pdf))
// [opcode|d|w] [mod|reg|r/m] [displacement-low] [displacement-high] [data-low] [data-high]
//    6    1 1    2   3   3
// The intel x86 processors use Little Endian, so the low byte comes first

var (
	// ErrUnrecognized - none of the formats describe the bytes at the cursor
	ErrUnrecognized = errors.New("unrecognized instruction")
	// ErrTruncated - the instruction continues past the end of the decoded region
	ErrTruncated = errors.New("truncated instruction")
)

type DecodeError struct {
	Address uint32
	Byte    byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode the instruction at 0x%05x (%08b): %v", e.Address, e.Byte, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeOne decodes the instruction at the cursor and returns the cursor moved past it.
// When nothing matches, the instruction is empty (OpNone, zero size), the cursor stays where
// it was and the error is ErrUnrecognized.
func DecodeOne(ctx *Context, image *memory.Image, at memory.Cursor) (Instruction, memory.Cursor, error) {
	return decode(ctx, image, at, memory.Size)
}

// decode doesn't read more than limit bytes from the cursor
func decode(ctx *Context, image *memory.Image, at memory.Cursor, limit uint32) (Instruction, memory.Cursor, error) {
	truncated := false
	for _, format := range table {
		inst, ok, err := tryMatch(format, image, at, limit)
		if errors.Is(err, ErrTruncated) {
			// a shorter format may still match
			truncated = true
			continue
		}
		if err != nil {
			return Instruction{}, at, err
		}
		if !ok {
			continue
		}

		ctx.apply(&inst)
		ctx.update(inst)

		return inst, at.Advance(inst.Size), nil
	}

	if truncated {
		return Instruction{}, at, ErrTruncated
	}

	return Instruction{}, at, ErrUnrecognized
}

// Decoder walks a region of the memory instruction by instruction.
type Decoder struct {
	image   *memory.Image
	ctx     *Context
	at      memory.Cursor
	count   uint32
	pos     uint32
	decoded []Instruction
}

// NewDecoder decodes count bytes starting at start.
func NewDecoder(image *memory.Image, start memory.Cursor, count uint32) *Decoder {
	return &Decoder{
		image:   image,
		ctx:     NewContext(),
		at:      start,
		count:   count,
		decoded: make([]Instruction, 0),
	}
}

// FromBytes loads the program at the start of an empty memory.
func FromBytes(program []byte) *Decoder {
	image := memory.NewImage()
	n := image.Copy(0, program)

	return NewDecoder(image, memory.Cursor{}, n)
}

// Next returns io.EOF after the last instruction of the region.
func (d *Decoder) Next() (Instruction, error) {
	if d.pos >= d.count {
		if d.ctx.Pending() {
			return Instruction{}, d.fail(ErrTruncated)
		}
		return Instruction{}, io.EOF
	}

	inst, at, err := decode(d.ctx, d.image, d.at, d.count-d.pos)
	if err != nil {
		return Instruction{}, d.fail(err)
	}

	d.at = at
	d.pos += inst.Size
	d.decoded = append(d.decoded, inst)

	return inst, nil
}

func (d *Decoder) fail(err error) error {
	address := d.at.Address(0)
	return &DecodeError{Address: address, Byte: d.image.Read8(address), Err: err}
}

// Decode decodes everything that is left in the region.
func (d *Decoder) Decode() ([]Instruction, error) {
	for {
		_, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return d.decoded, err
		}
	}

	return d.decoded, nil
}

// GetDecoded returns the instructions decoded so far, useful after a failure.
func (d *Decoder) GetDecoded() []Instruction {
	return d.decoded
}

// Cursor is the position of the next instruction.
func (d *Decoder) Cursor() memory.Cursor {
	return d.at
}

func (d *Decoder) Image() *memory.Image {
	return d.image
}
