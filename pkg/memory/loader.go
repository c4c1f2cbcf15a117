package memory

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Load copies the program from r into the image starting at offset.
// Everything that doesn't fit before the end of the image is dropped.
// Returns the number of bytes that were copied.
// xz compressed programs are unpacked on the fly.
func (m *Image) Load(r io.Reader, offset uint32) (uint32, error) {
	if offset >= Size {
		return 0, fmt.Errorf("the load offset 0x%x is outside of the memory image", offset)
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read the program header: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, xzMagic) {
		src, err = xz.NewReader(br)
		if err != nil {
			return 0, fmt.Errorf("failed to open the xz stream: %w", err)
		}
	}

	n, err := io.ReadFull(src, m.bytes[offset:])
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		// the program is smaller than the remaining memory
	case err != nil:
		return uint32(n), fmt.Errorf("failed to load the program: %w", err)
	}

	return uint32(n), nil
}

// LoadFile is Load for a file on disk.
func (m *Image) LoadFile(filename string, offset uint32) (uint32, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open the file %s: %w", filename, err)
	}
	defer f.Close()

	n, err := m.Load(f, offset)
	if err != nil {
		return n, fmt.Errorf("%s: %w", filename, err)
	}

	return n, nil
}
