package text

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
)

// Listing writes one line per instruction. The prefixes are folded into the instruction
// they modify and never show up on their own line.
type Listing struct {
	w     io.Writer
	image *memory.Image
	// annotate appends the address and the bytes of the instruction as a comment
	annotate bool

	prefixStart uint32
	hasPrefix   bool
}

func NewListing(w io.Writer, image *memory.Image, annotate bool) *Listing {
	return &Listing{
		w:        w,
		image:    image,
		annotate: annotate,
	}
}

func (l *Listing) Write(inst decoder.Instruction) error {
	if inst.IsPrefix() {
		if !l.hasPrefix {
			l.prefixStart = inst.Address
			l.hasPrefix = true
		}
		return nil
	}

	start := inst.Address
	if l.hasPrefix {
		start = l.prefixStart
		l.hasPrefix = false
	}

	line := Format(inst)
	if l.annotate && l.image != nil {
		size := (inst.Address + inst.Size - start) & memory.Mask
		line = fmt.Sprintf("%-36s ; 0x%05x: % x", line, start, l.image.Bytes(start, size))
	}

	_, err := fmt.Fprintln(l.w, line)
	return err
}

// WriteAll lists every instruction the decoder produces.
// The instructions before a decoding failure are still written.
func (l *Listing) WriteAll(d *decoder.Decoder) error {
	for {
		inst, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := l.Write(inst); err != nil {
			return fmt.Errorf("failed to write the listing: %w", err)
		}
	}
}

// Disassemble renders the whole program, the way the decoder tests verify it with nasm.
func Disassemble(program []byte) (string, error) {
	var sb strings.Builder

	d := decoder.FromBytes(program)
	err := NewListing(&sb, d.Image(), false).WriteAll(d)

	return sb.String(), err
}
