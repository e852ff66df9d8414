// Package rom gives bounds-checked access to a game image loaded from disk.
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/aki/gen3talk/internal/codec"
)

// DefaultBase is the address at which the image is mapped on the handheld
const DefaultBase uint32 = 0x08000000

// MaxStringLen bounds the bytes read by StringAt
const MaxStringLen = 255

var (
	// ErrOutOfBounds is returned for reads outside the image
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrInvalidPointer is returned for pointers below the mapping base
	ErrInvalidPointer = errors.New("invalid pointer")
)

// Image is an in-memory copy of a game image
type Image struct {
	path string
	data []byte
}

// Load reads the image at path
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rom file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read rom: %w", err)
	}
	return &Image{path: path, data: data}, nil
}

// FromBytes wraps data as an image
func FromBytes(data []byte) *Image {
	return &Image{data: data}
}

// Path returns the file the image was loaded from
func (img *Image) Path() string {
	return img.path
}

// Size returns the image length in bytes
func (img *Image) Size() int {
	return len(img.data)
}

// Read returns a copy of length bytes at offset
func (img *Image) Read(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(img.data)-length {
		return nil, fmt.Errorf("%w: offset=0x%X length=%d size=%d", ErrOutOfBounds, offset, length, len(img.data))
	}
	out := make([]byte, length)
	copy(out, img.data[offset:offset+length])
	return out, nil
}

// ReadU8 reads one byte
func (img *Image) ReadU8(offset int) (uint8, error) {
	b, err := img.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian 16-bit value
func (img *Image) ReadU16(offset int) (uint16, error) {
	b, err := img.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian 32-bit value
func (img *Image) ReadU32(offset int) (uint32, error) {
	b, err := img.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadPointer reads a 32-bit pointer and converts it to an image offset by
// subtracting base
func (img *Image) ReadPointer(offset int, base uint32) (int, error) {
	value, err := img.ReadU32(offset)
	if err != nil {
		return 0, err
	}
	if value < base {
		return 0, fmt.Errorf("%w: 0x%08X below base 0x%08X", ErrInvalidPointer, value, base)
	}
	return int(value - base), nil
}

// StringAt returns the encoded string starting at offset: at most
// MaxStringLen bytes, clipped at the end of the image and cut just after the
// first terminator or page break.
func (img *Image) StringAt(offset int) ([]byte, error) {
	if offset < 0 || offset >= len(img.data) {
		return nil, fmt.Errorf("%w: offset=0x%X size=%d", ErrOutOfBounds, offset, len(img.data))
	}
	length := min(MaxStringLen, len(img.data)-offset)
	raw, err := img.Read(offset, length)
	if err != nil {
		return nil, err
	}
	for i, b := range raw {
		if b == codec.Terminator || b == codec.PageBreak {
			return raw[:i+1], nil
		}
	}
	return raw, nil
}
