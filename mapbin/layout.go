package mapbin

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed room header: width, height, grid x, grid y
	// and two reserved bytes.
	HeaderSize = 8

	// SectionBase is where the offset accumulator starts: the header plus
	// three 4-byte offsets. When a room has no entity section the table is
	// only 9 bytes long, so sections really start 3 bytes earlier than the
	// offsets claim. The runtime reads sections at these offsets; do not
	// correct them.
	SectionBase = HeaderSize + 3*4

	// noEntityTableSize is the on-disk size of header plus offset table when
	// the entity slot is the single zero byte.
	noEntityTableSize = HeaderSize + 2*4 + 1

	maxGridCoord = 0xFF
)

// Header is the fixed 8-byte room header.
type Header struct {
	Width, Height uint16
	RoomX, RoomY  uint8
}

// Layout is the section offset table.
type Layout struct {
	Collision   uint32
	Graphics    uint32
	Entities    uint32
	HasEntities bool
}

// ComputeLayout assigns offsets starting at SectionBase, each section
// advancing the accumulator by its 4-aligned length.
func ComputeLayout(collisionLen, graphicsLen int, hasEntities bool) Layout {
	off := SectionBase
	l := Layout{HasEntities: hasEntities}
	l.Collision = uint32(off)
	off += align(collisionLen, 4)
	l.Graphics = uint32(off)
	off += align(graphicsLen, 4)
	if hasEntities {
		l.Entities = uint32(off)
	}
	return l
}

// TableSize is the number of bytes the header and offset table occupy on
// disk, which differs from SectionBase when there is no entity section.
func (l Layout) TableSize() int {
	if l.HasEntities {
		return SectionBase
	}
	return noEntityTableSize
}

// NewHeader validates the room size and grid cell against the header fields.
func NewHeader(width, height int, cell GridCell) (Header, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return Header{}, fmt.Errorf("%w: room size %dx%d outside 1..%d", ErrRange, width, height, MaxDimension)
	}
	if cell.X < 0 || cell.Y < 0 || cell.X > maxGridCoord || cell.Y > maxGridCoord {
		return Header{}, fmt.Errorf("%w: room grid cell (%d,%d) outside 0..%d", ErrRange, cell.X, cell.Y, maxGridCoord)
	}
	return Header{
		Width:  uint16(width),
		Height: uint16(height),
		RoomX:  uint8(cell.X),
		RoomY:  uint8(cell.Y),
	}, nil
}

func (h Header) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, h.Width)
	b = binary.LittleEndian.AppendUint16(b, h.Height)
	return append(b, h.RoomX, h.RoomY, 0, 0)
}

func (l Layout) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, l.Collision)
	b = binary.LittleEndian.AppendUint32(b, l.Graphics)
	if l.HasEntities {
		return binary.LittleEndian.AppendUint32(b, l.Entities)
	}
	return append(b, 0)
}

// Assemble concatenates header, offset table and sections. Each section is
// padded to 4 bytes relative to the start of the section data; the entity
// section is appended unpadded. entities is nil when there is no section.
func Assemble(h Header, collision, graphics, entities []byte) []byte {
	l := ComputeLayout(len(collision), len(graphics), entities != nil)
	size := l.TableSize() + align(len(collision), 4) + align(len(graphics), 4) + len(entities)

	out := make([]byte, 0, size)
	out = h.appendTo(out)
	out = l.appendTo(out)

	start := len(out)
	out = append(out, collision...)
	out = padSection(out, start)
	out = append(out, graphics...)
	out = padSection(out, start)
	return append(out, entities...)
}

func padSection(b []byte, start int) []byte {
	for (len(b)-start)%4 != 0 {
		b = append(b, 0)
	}
	return b
}
