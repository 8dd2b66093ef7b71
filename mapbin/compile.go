package mapbin

import "fmt"

// Result is a compiled room.
type Result struct {
	Bytes    []byte
	Header   Header
	Layout   Layout
	Entities int
}

// Compile encodes room into the binary asset format. cell is the room's
// position in the world grid. Any error aborts the whole room; no partial
// output is returned.
func Compile(room *Room, types TileTypes, cell GridCell) (*Result, error) {
	if room == nil || room.Layer == nil {
		return nil, fmt.Errorf("%w: map has no tile layer", ErrFormat)
	}

	gids, err := DecodeGrid(room.Layer)
	if err != nil {
		return nil, err
	}
	header, err := NewHeader(room.Layer.Width, room.Layer.Height, cell)
	if err != nil {
		return nil, err
	}

	collision, err := EncodeCollision(gids, types)
	if err != nil {
		return nil, err
	}
	graphics, err := EncodeGraphics(gids, room.Layer.Width)
	if err != nil {
		return nil, err
	}

	var entities []byte
	var count int
	if room.ObjectGroup != nil {
		records, err := Entities(room.ObjectGroup)
		if err != nil {
			return nil, err
		}
		if entities, err = EncodeEntities(records); err != nil {
			return nil, err
		}
		count = len(records)
	}

	return &Result{
		Bytes:    Assemble(header, collision, graphics, entities),
		Header:   header,
		Layout:   ComputeLayout(len(collision), len(graphics), entities != nil),
		Entities: count,
	}, nil
}
