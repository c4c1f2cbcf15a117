package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
)

// Usage is the role of a bit field inside of an instruction format
type Usage uint8

const (
	UsageLiteral Usage = iota
	UsageD
	UsageS
	UsageW
	UsageV
	UsageZ
	UsageMod
	UsageReg
	UsageRM
	UsageSR
	UsageEscape

	UsageHasDisp
	UsageDispAlwaysW
	UsageHasData
	UsageWMakesDataW
	UsageRelJMPDisp
	UsageRMRegAlwaysW
	UsageFar

	UsageDisp
	UsageData

	usageCount
)

// Field describes Bits bits of the stream.
// A field with 0 bits is implicit: it doesn't consume the stream and contributes Value instead.
// Shift places the bits of a field that is split over the stream (the esc opcode).
type Field struct {
	Usage Usage
	Bits  uint8
	Shift uint8
	Value uint32
}

type Format struct {
	Op     Operation
	Fields []Field
}

// errUnderrun - the field needs more bits than there are left in the pending byte
var errUnderrun = errors.New("not enough bits left in the pending byte")

// bitReader doles out bits of the stream, most significant first.
// Bytes are fetched lazily, one at a time, when all the bits of the pending one are used up.
type bitReader struct {
	image *memory.Image
	at    memory.Cursor
	// bytes that may still be fetched from the image
	remaining uint32
	consumed  uint32

	pending      byte
	pendingCount uint8
}

func newBitReader(image *memory.Image, at memory.Cursor, limit uint32) *bitReader {
	return &bitReader{
		image:     image,
		at:        at,
		remaining: limit,
	}
}

// next fetches a whole byte. The pending bits are not touched.
func (r *bitReader) next() (byte, error) {
	if r.remaining == 0 {
		return 0, ErrTruncated
	}

	b := r.image.Read8(r.at.Address(0))
	r.at = r.at.Advance(1)
	r.remaining -= 1
	r.consumed += 1

	return b, nil
}

func (r *bitReader) take(width uint8) (uint32, error) {
	if width == 0 {
		return 0, nil
	}
	if width > 8 {
		panic(fmt.Sprintf("AssertionError: a field can't be wider than a byte. Got %d bits", width))
	}

	if r.pendingCount == 0 {
		b, err := r.next()
		if err != nil {
			return 0, err
		}
		r.pending = b
		r.pendingCount = 8
	}

	if width > r.pendingCount {
		return 0, errUnderrun
	}

	r.pendingCount -= width
	value := uint32(r.pending>>r.pendingCount) & (1<<width - 1)

	return value, nil
}

// [data-lo] [data-hi?]
// The 8086 automatically sign-extends a single byte displacement (section 2.8, page 2-68)
func (r *bitReader) value(wide bool, signExtended bool) (uint32, error) {
	low, err := r.next()
	if err != nil {
		return 0, err
	}

	if !wide {
		if signExtended {
			return uint32(int32(int8(low))), nil
		}
		return uint32(low), nil
	}

	high, err := r.next()
	if err != nil {
		return 0, err
	}

	return uint32(binary.LittleEndian.Uint16([]byte{low, high})), nil
}
