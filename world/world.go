// Package world lays rooms out on the world grid. It reads a Tiled .world
// file and an ordered room list, validates that every room is aligned to the
// room grid, and produces the placement table consumed by the room compiler
// together with the room matrix consumed by the runtime.
package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/automoto/mapc/mapbin"
)

// MaxRooms is the exclusive upper bound on the room list length. Matrix
// cells store index+1 in a byte and 0 means "no room".
const MaxRooms = 255

const maxMatrixSide = 0xFFFF

// Grid is the size of one world cell (one screen) in pixels.
type Grid struct {
	Width  int
	Height int
}

// Document is the subset of a Tiled .world file the processor reads.
type Document struct {
	Maps []MapRef `json:"maps"`
	Type string   `json:"type"`
}

// MapRef is one room entry of a .world file, in pixels.
type MapRef struct {
	FileName string `json:"fileName"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Name is the room name: the map file stem.
func (m MapRef) Name() string {
	base := path.Base(m.FileName)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ReadDocument decodes a .world file.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode world: %v", mapbin.ErrFormat, err)
	}
	return &doc, nil
}

// Layout is the processed world: placements plus the room matrix.
type Layout struct {
	Placements   *Placements
	MatrixWidth  int
	MatrixHeight int
	// Matrix holds one byte per world cell, row-major: the 1-based index of
	// the room covering it, or 0.
	Matrix []byte
}

// Process validates the rooms in list against the world document and lays
// them out relative to their common bounding box. All validation problems
// are collected and returned together.
func Process(doc *Document, list []string, grid Grid) (*Layout, error) {
	if grid.Width <= 0 || grid.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid room grid %dx%d", mapbin.ErrRange, grid.Width, grid.Height)
	}
	if len(list) >= MaxRooms {
		return nil, fmt.Errorf("%w: exceeded max room count of %d", mapbin.ErrRange, MaxRooms)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: room list is empty", mapbin.ErrFormat)
	}

	var errs []error
	rooms := make(map[string]MapRef, len(doc.Maps))
	for _, m := range doc.Maps {
		name := m.Name()
		if m.Width%grid.Width != 0 || m.Height%grid.Height != 0 {
			errs = append(errs, fmt.Errorf("%w: room '%s' size is not grid-aligned", mapbin.ErrRange, name))
		}
		rooms[name] = m
	}

	seen := make(map[string]bool, len(list))
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, name := range list {
		if seen[name] {
			errs = append(errs, fmt.Errorf("%w: room '%s' is listed more than once", mapbin.ErrFormat, name))
			continue
		}
		seen[name] = true

		r, ok := rooms[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: room '%s' is not in the world file", mapbin.ErrLookup, name))
			continue
		}
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.X+r.Width)
		maxY = max(maxY, r.Y+r.Height)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, name := range list {
		r := rooms[name]
		if (r.X-minX)%grid.Width != 0 || (r.Y-minY)%grid.Height != 0 {
			errs = append(errs, fmt.Errorf("%w: room '%s' position is not grid-aligned", mapbin.ErrRange, name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	l := &Layout{
		Placements:   &Placements{Rooms: make(map[string]Placement, len(list)), List: list},
		MatrixWidth:  (maxX - minX) / grid.Width,
		MatrixHeight: (maxY - minY) / grid.Height,
	}
	if l.MatrixWidth > maxMatrixSide || l.MatrixHeight > maxMatrixSide {
		return nil, fmt.Errorf("%w: world size (%dx%d screens) is too large", mapbin.ErrRange, l.MatrixWidth, l.MatrixHeight)
	}
	l.Matrix = make([]byte, l.MatrixWidth*l.MatrixHeight)

	for i, name := range list {
		r := rooms[name]
		x0, y0 := (r.X-minX)/grid.Width, (r.Y-minY)/grid.Height
		x1, y1 := x0+r.Width/grid.Width, y0+r.Height/grid.Height
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				l.Matrix[y*l.MatrixWidth+x] = byte(i + 1)
			}
		}
		l.Placements.Rooms[name] = Placement{Index: i, X: x0, Y: y0}
	}
	return l, nil
}
