package mapbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Map is a decoded room binary.
type Map struct {
	Header    Header
	Layout    Layout
	Collision []CollisionClass
	Graphics  []uint16
	Entities  []EntityRecord // nil when the binary has no entity section
}

// CollisionAt returns the class of cell (x, y).
func (m *Map) CollisionAt(x, y int) CollisionClass {
	return m.Collision[y*int(m.Header.Width)+x]
}

// GraphicsAt returns the graphics word of cell (x, y).
func (m *Map) GraphicsAt(x, y int) uint16 {
	return m.Graphics[y*int(m.Header.Width)+x]
}

// Decode parses a binary produced by Compile.
//
// Whether the entity slot holds an offset or the single zero byte is
// decided from the total length, since an offset's low byte may itself be
// zero.
func Decode(b []byte) (*Map, error) {
	if len(b) < noEntityTableSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrFormat, len(b))
	}

	m := &Map{Header: Header{
		Width:  binary.LittleEndian.Uint16(b[0:]),
		Height: binary.LittleEndian.Uint16(b[2:]),
		RoomX:  b[4],
		RoomY:  b[5],
	}}
	cells := int(m.Header.Width) * int(m.Header.Height)
	if cells == 0 {
		return nil, fmt.Errorf("%w: room size %dx%d", ErrFormat, m.Header.Width, m.Header.Height)
	}

	colLen := align((cells+3)/4, 4)
	gfxLen := align(cells*2, 4)
	m.Layout = Layout{
		Collision: binary.LittleEndian.Uint32(b[8:]),
		Graphics:  binary.LittleEndian.Uint32(b[12:]),
	}
	m.Layout.HasEntities = len(b) != noEntityTableSize+colLen+gfxLen
	if m.Layout.HasEntities {
		if len(b) < SectionBase+colLen+gfxLen+2 {
			return nil, fmt.Errorf("%w: truncated binary (%d bytes)", ErrFormat, len(b))
		}
		m.Layout.Entities = binary.LittleEndian.Uint32(b[16:])
	} else if b[16] != 0 {
		return nil, fmt.Errorf("%w: entity slot is %#x, expected zero", ErrFormat, b[16])
	}

	want := ComputeLayout(colLen, gfxLen, m.Layout.HasEntities)
	if m.Layout != want {
		return nil, fmt.Errorf("%w: offset table %+v does not match room size, expected %+v", ErrFormat, m.Layout, want)
	}

	pos := m.Layout.TableSize()
	col := b[pos : pos+colLen]
	m.Collision = make([]CollisionClass, cells)
	for i := range m.Collision {
		m.Collision[i] = CollisionClass(col[i/4]>>((i%4)*2)) & 0x3
	}
	pos += colLen

	gfx := b[pos : pos+gfxLen]
	m.Graphics = make([]uint16, cells)
	for i := range m.Graphics {
		m.Graphics[i] = binary.LittleEndian.Uint16(gfx[i*2:])
	}
	pos += gfxLen

	if m.Layout.HasEntities {
		ents, err := decodeEntities(b[pos:])
		if err != nil {
			return nil, err
		}
		m.Entities = ents
	}
	return m, nil
}

type reader struct {
	b   []byte
	pos int
}

func (r *reader) need(n int) error {
	if r.pos+n > len(r.b) {
		return fmt.Errorf("%w: unexpected end of entity data at byte %d", ErrFormat, r.pos)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) cstring() (string, error) {
	i := bytes.IndexByte(r.b[r.pos:], 0)
	if i < 0 {
		return "", fmt.Errorf("%w: unterminated string at byte %d", ErrFormat, r.pos)
	}
	s := string(r.b[r.pos : r.pos+i])
	r.pos += i + 1
	return s, nil
}

func decodeEntities(b []byte) ([]EntityRecord, error) {
	r := &reader{b: b}
	count, err := r.u16()
	if err != nil {
		return nil, err
	}

	ents := make([]EntityRecord, 0, count)
	for i := 0; i < int(count); i++ {
		size, err := r.u16()
		if err != nil {
			return nil, err
		}
		if err := r.need(int(size)); err != nil {
			return nil, err
		}
		body := &reader{b: r.b[r.pos : r.pos+int(size)]}
		e, err := decodeEntity(body)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		if body.pos != len(body.b) {
			return nil, fmt.Errorf("%w: entity %d: record length %d, decoded %d", ErrFormat, i, size, body.pos)
		}
		r.pos += int(size)
		ents = append(ents, e)
	}
	return ents, nil
}

func decodeEntity(r *reader) (EntityRecord, error) {
	var e EntityRecord
	for _, dst := range []*uint16{&e.X, &e.Y, &e.Width, &e.Height} {
		v, err := r.u16()
		if err != nil {
			return e, err
		}
		*dst = v
	}
	var err error
	if e.Name, err = r.cstring(); err != nil {
		return e, err
	}
	n, err := r.u8()
	if err != nil {
		return e, err
	}

	for j := 0; j < int(n); j++ {
		var p PropertyRecord
		if p.Name, err = r.cstring(); err != nil {
			return e, err
		}
		tag, err := r.u8()
		if err != nil {
			return e, err
		}
		switch PropertyTag(tag) {
		case TagString:
			if _, err := r.u8(); err != nil {
				return e, err
			}
			s, err := r.cstring()
			if err != nil {
				return e, err
			}
			p.Value = StringValue(s)
		case TagInt:
			v, err := r.u32()
			if err != nil {
				return e, err
			}
			p.Value = IntValue(v)
		case TagFixed:
			v, err := r.u32()
			if err != nil {
				return e, err
			}
			p.Value = FixedValue(int32(v))
		default:
			return e, fmt.Errorf("%w: property %q has unknown tag %d", ErrFormat, p.Name, tag)
		}
		e.Properties = append(e.Properties, p)
	}
	return e, nil
}
