package rom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/gen3talk/internal/codec"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gba")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Size())
	assert.Equal(t, path, img.Path())

	_, err = Load(filepath.Join(t.TempDir(), "missing.gba"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImage_Read(t *testing.T) {
	img := FromBytes([]byte{0x10, 0x20, 0x30, 0x40})

	tests := []struct {
		name    string
		offset  int
		length  int
		want    []byte
		wantErr bool
	}{
		{name: "whole image", offset: 0, length: 4, want: []byte{0x10, 0x20, 0x30, 0x40}},
		{name: "middle", offset: 1, length: 2, want: []byte{0x20, 0x30}},
		{name: "empty at end", offset: 4, length: 0, want: []byte{}},
		{name: "past end", offset: 3, length: 2, wantErr: true},
		{name: "negative offset", offset: -1, length: 1, wantErr: true},
		{name: "negative length", offset: 0, length: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := img.Read(tt.offset, tt.length)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfBounds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImage_ReadIsACopy(t *testing.T) {
	img := FromBytes([]byte{1, 2})
	b, err := img.Read(0, 2)
	require.NoError(t, err)
	b[0] = 9

	v, err := img.ReadU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)
}

func TestImage_Integers(t *testing.T) {
	img := FromBytes([]byte{0x34, 0x12, 0x78, 0x56, 0x00, 0x00, 0x00, 0x08, 0x10, 0x00, 0x00, 0x07})

	u8, err := img.ReadU8(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), u8)

	u16, err := img.ReadU16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := img.ReadU32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x56781234), u32)

	_, err = img.ReadU32(10)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestImage_ReadPointer(t *testing.T) {
	img := FromBytes([]byte{0x10, 0x00, 0x00, 0x08, 0x10, 0x00, 0x00, 0x07})

	off, err := img.ReadPointer(0, DefaultBase)
	require.NoError(t, err)
	assert.Equal(t, 0x10, off)

	_, err = img.ReadPointer(4, DefaultBase)
	assert.ErrorIs(t, err, ErrInvalidPointer)

	_, err = img.ReadPointer(6, DefaultBase)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestImage_StringAt(t *testing.T) {
	data := []byte{0xC2, 0xD9, 0xE0, 0xE0, 0xE3, codec.Terminator, 0xBB, 0xBC, codec.PageBreak, 0xBD}
	img := FromBytes(data)

	s, err := img.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, data[:6], s)
	assert.Equal(t, "Hello", codec.Decode(s))

	s, err = img.StringAt(6)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBB, 0xBC, codec.PageBreak}, s)

	s, err = img.StringAt(9)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBD}, s, "clipped at the end of the image")

	_, err = img.StringAt(len(data))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestImage_StringAtBoundsLength(t *testing.T) {
	data := make([]byte, 400)
	img := FromBytes(data)

	s, err := img.StringAt(10)
	require.NoError(t, err)
	assert.Len(t, s, MaxStringLen)
}
