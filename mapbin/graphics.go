package mapbin

import (
	"encoding/binary"
	"fmt"
)

// Graphics word layout.
const (
	GraphicsIndexMask uint16 = 0x00FF
	GraphicsFlipH     uint16 = 1 << 8
	GraphicsFlipV     uint16 = 1 << 9
)

const (
	graphicsIDMask         uint32 = 0x00FFFFFF
	graphicsFallbackIDMask uint32 = 0x0FFFFFFF
	maxGraphicsIndex              = 0xFF
)

// GraphicsWord converts a GID into the runtime's 16-bit cell. The tile
// index is kept 1-based; a zero GID always means an empty cell.
func GraphicsWord(gid uint32) (uint16, error) {
	if gid == 0 {
		return 0, nil
	}

	tid := gid & graphicsIDMask
	if tid > maxGraphicsIndex {
		// Legacy remask. It keeps every bit the first mask kept, so it
		// only changes which index the error reports.
		tid = gid & graphicsFallbackIDMask
		if tid > maxGraphicsIndex {
			return 0, fmt.Errorf("%w: tile index %d (gid %#08x) does not fit in 8 bits", ErrRange, tid, gid)
		}
	}

	word := uint16(tid)
	if gid&FlipHorizontalFlag != 0 {
		word |= GraphicsFlipH
	}
	if gid&FlipVerticalFlag != 0 {
		word |= GraphicsFlipV
	}
	return word, nil
}

// EncodeGraphics writes one little-endian word per tile, padded to 4 bytes.
// width is only used to name the offending cell in errors.
func EncodeGraphics(gids []uint32, width int) ([]byte, error) {
	if width <= 0 {
		width = 1
	}
	out := make([]byte, 0, align(len(gids)*2, 4))
	for i, gid := range gids {
		word, err := GraphicsWord(gid)
		if err != nil {
			return nil, fmt.Errorf("tile (%d,%d): %w", i%width, i/width, err)
		}
		out = binary.LittleEndian.AppendUint16(out, word)
	}
	return padTo(out, 4), nil
}
