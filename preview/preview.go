// Package preview renders compiled rooms to images for quick inspection.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/colornames"

	"github.com/automoto/mapc/mapbin"
)

// Palette maps collision classes to fill colors. Cells with a graphics tile
// but no collision are drawn with Decor.
var Palette = struct {
	Solid, Water, Heat, Decor, Entity color.RGBA
}{
	Solid:  colornames.Slategray,
	Water:  colornames.Dodgerblue,
	Heat:   colornames.Orangered,
	Decor:  colornames.Darkseagreen,
	Entity: colornames.Yellow,
}

// Options controls rendering.
type Options struct {
	TileSize int // pixels per tile in the editor, used to place entities
	Scale    int // output pixels per tile
}

// DefaultOptions matches the 8px tiles of the game.
var DefaultOptions = Options{TileSize: 8, Scale: 4}

// Render draws one Scale×Scale block per cell and outlines entities.
func Render(m *mapbin.Map, opts Options) (*image.RGBA, error) {
	if opts.TileSize <= 0 || opts.Scale <= 0 {
		return nil, fmt.Errorf("invalid preview options %+v", opts)
	}
	w, h := int(m.Header.Width), int(m.Header.Height)
	img := image.NewRGBA(image.Rect(0, 0, w*opts.Scale, h*opts.Scale))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := cellColor(m.CollisionAt(x, y), m.GraphicsAt(x, y))
			if !ok {
				continue
			}
			r := image.Rect(x*opts.Scale, y*opts.Scale, (x+1)*opts.Scale, (y+1)*opts.Scale)
			draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
		}
	}

	for _, e := range m.Entities {
		x0 := int(e.X) * opts.Scale / opts.TileSize
		y0 := int(e.Y) * opts.Scale / opts.TileSize
		x1 := (int(e.X) + int(e.Width)) * opts.Scale / opts.TileSize
		y1 := (int(e.Y) + int(e.Height)) * opts.Scale / opts.TileSize
		outline(img, image.Rect(x0, y0, max(x1, x0+1), max(y1, y0+1)), Palette.Entity)
	}
	return img, nil
}

func cellColor(class mapbin.CollisionClass, gfx uint16) (color.RGBA, bool) {
	switch class {
	case mapbin.CollisionSolid:
		return Palette.Solid, true
	case mapbin.CollisionWater:
		return Palette.Water, true
	case mapbin.CollisionHeat:
		return Palette.Heat, true
	}
	if gfx&mapbin.GraphicsIndexMask != 0 {
		return Palette.Decor, true
	}
	return color.RGBA{}, false
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// WritePNG renders m and encodes it as PNG.
func WritePNG(w io.Writer, m *mapbin.Map, opts Options) error {
	img, err := Render(m, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
