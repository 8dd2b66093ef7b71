// Package mapbin encodes a single editor room into the fixed-layout binary
// asset read by the game runtime, and decodes such assets back for
// inspection. It has no dependency on the TMX reader; callers hand it a
// Room already extracted from the editor document.
package mapbin

// Tile GID flag bits as stored by the editor.
const (
	FlipHorizontalFlag uint32 = 0x80000000
	FlipVerticalFlag   uint32 = 0x40000000
	FlipDiagonalFlag   uint32 = 0x20000000
	RotateHex120Flag   uint32 = 0x10000000
)

// Room is one editor map reduced to what the binary format needs.
type Room struct {
	Name        string
	Layer       *TileLayer
	ObjectGroup *ObjectGroup // nil when the map has no object group
}

// TileLayer is the raw, still-encoded tile layer.
type TileLayer struct {
	Width    int
	Height   int
	Encoding string
	Data     string
}

// ObjectGroup holds the objects of the map's object layer in document order.
type ObjectGroup struct {
	Objects []Object
}

// Object is an editor object before validation. Kind is the editor's
// type/class string; only objects of kind "entity" are serialized.
type Object struct {
	Kind       string
	Name       string
	X, Y       float64
	Width      float64
	Height     float64
	Properties []Property
}

// Property is an untyped editor property. An empty Type means "string".
type Property struct {
	Name  string
	Type  string
	Value string
}

// TileTypes maps a zero-based tileset tile id to its declared type string.
type TileTypes map[uint32]string

// Lookup returns the registered type of tile id, or "" and false.
func (t TileTypes) Lookup(id uint32) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t[id]
	return s, ok
}

// GridCell is a room's position in the world grid, in whole rooms.
type GridCell struct {
	X, Y int
}
