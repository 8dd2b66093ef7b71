// Package leveldata reads Tiled TMX rooms and their TSX tileset into the
// plain values the binary encoder consumes. Object groups, tilesets and
// layer data are decoded with go-tiled's types; the tile payload is kept in
// its raw encoded form because the encoder needs the exact GIDs and declared
// encoding.
package leveldata

import "github.com/lafriks/go-tiled"

// DefaultTileset is the tileset file expected next to every room.
const DefaultTileset = "tileset.tsx"

type tmxMap struct {
	Layers       []tmxLayer           `xml:"layer"`
	ObjectGroups []*tiled.ObjectGroup `xml:"objectgroup"`
}

type tmxLayer struct {
	Name   string      `xml:"name,attr"`
	Width  int         `xml:"width,attr"`
	Height int         `xml:"height,attr"`
	Data   *tiled.Data `xml:"data"`
}
