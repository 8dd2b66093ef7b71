package leveldata

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/automoto/mapc/mapbin"
	"github.com/lafriks/go-tiled"
)

// RoomName returns the room name for a TMX path: its file stem.
func RoomName(tmxPath string) string {
	base := path.Base(tmxPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadRoom parses a TMX file from fsys. Only the first tile layer and the
// first object group are used. It takes an fs.FS so callers can pass
// os.DirFS or an in-memory filesystem in tests.
func LoadRoom(fsys fs.FS, tmxPath string) (*mapbin.Room, error) {
	raw, err := fs.ReadFile(fsys, tmxPath)
	if err != nil {
		return nil, fmt.Errorf("read TMX %s: %w", tmxPath, err)
	}

	var doc tmxMap
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse TMX %s: %v", mapbin.ErrFormat, tmxPath, err)
	}

	room := &mapbin.Room{Name: RoomName(tmxPath)}
	if len(doc.Layers) == 0 {
		return nil, fmt.Errorf("%w: %s: map has no tile layer", mapbin.ErrFormat, tmxPath)
	}

	layer := doc.Layers[0]
	if layer.Data == nil {
		return nil, fmt.Errorf("%w: %s: tile layer %q has no data", mapbin.ErrFormat, tmxPath, layer.Name)
	}
	if layer.Data.Compression != "" {
		return nil, fmt.Errorf("%w: %s: compressed tile data (%s) is not supported",
			mapbin.ErrFormat, tmxPath, layer.Data.Compression)
	}
	room.Layer = &mapbin.TileLayer{
		Width:    layer.Width,
		Height:   layer.Height,
		Encoding: layer.Data.Encoding,
		Data:     string(layer.Data.RawData),
	}

	if len(doc.ObjectGroups) > 0 {
		room.ObjectGroup = convertObjectGroup(doc.ObjectGroups[0])
	}
	return room, nil
}

func convertObjectGroup(og *tiled.ObjectGroup) *mapbin.ObjectGroup {
	group := &mapbin.ObjectGroup{Objects: make([]mapbin.Object, 0, len(og.Objects))}
	for _, o := range og.Objects {
		// TMX stores the object class in the type= attribute
		kind := o.Type //nolint:staticcheck
		if kind == "" {
			kind = o.Class
		}

		obj := mapbin.Object{
			Kind:   kind,
			Name:   o.Name,
			X:      o.X,
			Y:      o.Y,
			Width:  o.Width,
			Height: o.Height,
		}
		for _, p := range o.Properties {
			obj.Properties = append(obj.Properties, mapbin.Property{
				Name:  p.Name,
				Type:  p.Type,
				Value: p.Value,
			})
		}
		group.Objects = append(group.Objects, obj)
	}
	return group
}

// LoadTileTypes reads the tile type table from a TSX tileset. Tiles without
// a type are left unregistered.
func LoadTileTypes(fsys fs.FS, tsxPath string) (mapbin.TileTypes, error) {
	raw, err := fs.ReadFile(fsys, tsxPath)
	if err != nil {
		return nil, fmt.Errorf("read tileset %s: %w", tsxPath, err)
	}

	var ts tiled.Tileset
	if err := xml.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("%w: parse tileset %s: %v", mapbin.ErrFormat, tsxPath, err)
	}

	types := make(mapbin.TileTypes, len(ts.Tiles))
	for _, tile := range ts.Tiles {
		typ := tile.Type //nolint:staticcheck
		if typ == "" {
			typ = tile.Class
		}
		if typ != "" {
			types[tile.ID] = typ
		}
	}
	return types, nil
}

// TilesetPath returns the path of the named tileset next to a room file.
func TilesetPath(tmxPath, tileset string) string {
	return path.Join(path.Dir(tmxPath), tileset)
}

// DiscoverRooms lists the .tmx files in dir within fsys, sorted by room name.
func DiscoverRooms(fsys fs.FS, dir string) ([]string, error) {
	pattern := path.Join(dir, "*.tmx")
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return RoomName(matches[i]) < RoomName(matches[j])
	})
	return matches, nil
}
