package mapbin

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// MaxDimension is the largest width or height the header can carry.
const MaxDimension = 0xFFFF

// DecodeGrid decodes the layer's base64 payload into width*height GIDs in
// row-major order. Flag bits are left embedded in each GID.
func DecodeGrid(layer *TileLayer) ([]uint32, error) {
	if layer == nil {
		return nil, fmt.Errorf("%w: map has no tile layer", ErrFormat)
	}
	if layer.Width <= 0 || layer.Height <= 0 {
		return nil, fmt.Errorf("%w: tile layer has invalid size %dx%d", ErrFormat, layer.Width, layer.Height)
	}
	if layer.Width > MaxDimension || layer.Height > MaxDimension {
		return nil, fmt.Errorf("%w: tile layer size %dx%d exceeds %d", ErrRange, layer.Width, layer.Height, MaxDimension)
	}
	if layer.Encoding != "base64" {
		return nil, fmt.Errorf("%w: only base64 encoding is supported, got %q", ErrFormat, layer.Encoding)
	}

	text := strings.Join(strings.Fields(layer.Data), "")
	if text == "" {
		return nil, fmt.Errorf("%w: tile layer has no data", ErrFormat)
	}
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: decode tile data: %v", ErrFormat, err)
	}

	count := layer.Width * layer.Height
	if len(raw) < count*4 {
		return nil, fmt.Errorf("%w: tile data holds %d bytes, need %d for %dx%d",
			ErrFormat, len(raw), count*4, layer.Width, layer.Height)
	}

	gids := make([]uint32, count)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return gids, nil
}

// EncodeGrid is the inverse of DecodeGrid's payload step: it renders GIDs as
// the base64 text the editor stores in a tile layer.
func EncodeGrid(gids []uint32) string {
	raw := make([]byte, len(gids)*4)
	for i, g := range gids {
		binary.LittleEndian.PutUint32(raw[i*4:], g)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func align(n, width int) int {
	return (n + width - 1) / width * width
}

func padTo(b []byte, width int) []byte {
	for len(b)%width != 0 {
		b = append(b, 0)
	}
	return b
}
