package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/automoto/mapc/compiler"
	"github.com/automoto/mapc/config"
	"github.com/automoto/mapc/mapbin"
	"github.com/automoto/mapc/preview"
	"github.com/automoto/mapc/world"
)

var (
	tilesetFlag string
	jobsFlag    int
	scaleFlag   int
	tileFlag    int
)

func commands() map[string]*command {
	compileFlags := flag.NewFlagSet("compile", flag.ContinueOnError)
	compileFlags.StringVar(&tilesetFlag, "tileset", "", "tileset file name next to the room (overrides config)")

	buildFlags := flag.NewFlagSet("build", flag.ContinueOnError)
	buildFlags.IntVar(&jobsFlag, "j", 0, "rooms compiled in parallel (overrides config)")

	previewFlags := flag.NewFlagSet("preview", flag.ContinueOnError)
	previewFlags.IntVar(&scaleFlag, "scale", preview.DefaultOptions.Scale, "output pixels per tile")
	previewFlags.IntVar(&tileFlag, "tile", preview.DefaultOptions.TileSize, "editor tile size in pixels")

	return map[string]*command{
		"compile": {flags: compileFlags, nargs: 3, run: runCompile},
		"world":   {flags: flag.NewFlagSet("world", flag.ContinueOnError), nargs: 4, run: runWorld},
		"build":   {flags: buildFlags, nargs: 3, run: runBuild},
		"watch":   {flags: flag.NewFlagSet("watch", flag.ContinueOnError), nargs: 3, run: runWatch},
		"dump":    {flags: flag.NewFlagSet("dump", flag.ContinueOnError), nargs: 1, run: runDump},
		"preview": {flags: previewFlags, nargs: 2, run: runPreview},
	}
}

func loadPlacements(path string) (*world.Placements, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return world.ReadPlacements(f)
}

func newCompiler(cfg *config.Settings, dir, worldPath string) (*compiler.Compiler, error) {
	placements, err := loadPlacements(worldPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", worldPath, err)
	}
	return compiler.New(os.DirFS(dir), placements, cfg.Compiler,
		compiler.WithLogger(log.Default()),
		compiler.WithWatch(cfg.Watch),
	), nil
}

func runCompile(ctx context.Context, cfg *config.Settings, args []string) error {
	input, worldPath, output := args[0], args[1], args[2]
	if tilesetFlag != "" {
		cfg.Compiler.Tileset = tilesetFlag
	}

	c, err := newCompiler(cfg, filepath.Dir(input), worldPath)
	if err != nil {
		return err
	}
	if err := c.CompileFile(ctx, filepath.Base(input), output); err != nil {
		if output != "-" {
			log.Printf("error, no output written to %s", output)
		}
		return err
	}
	return nil
}

func runBuild(ctx context.Context, cfg *config.Settings, args []string) error {
	worldPath, roomsDir, outDir := args[0], args[1], args[2]
	if jobsFlag > 0 {
		cfg.Compiler.Jobs = jobsFlag
	}

	c, err := newCompiler(cfg, roomsDir, worldPath)
	if err != nil {
		return err
	}
	rooms, err := c.Rooms(".")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return c.CompileAll(ctx, rooms, outDir)
}

func runWatch(ctx context.Context, cfg *config.Settings, args []string) error {
	worldPath, roomsDir, outDir := args[0], args[1], args[2]

	c, err := newCompiler(cfg, roomsDir, worldPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return c.Watch(ctx, roomsDir, outDir)
}

func runWorld(ctx context.Context, cfg *config.Settings, args []string) error {
	worldPath, listPath, outJSON, outBin := args[0], args[1], args[2], args[3]

	wf, err := os.Open(worldPath)
	if err != nil {
		return err
	}
	defer wf.Close()
	doc, err := world.ReadDocument(wf)
	if err != nil {
		return err
	}

	lf, err := os.Open(listPath)
	if err != nil {
		return err
	}
	defer lf.Close()
	list, err := world.ReadRoomList(lf)
	if err != nil {
		return err
	}

	grid := world.Grid{Width: cfg.World.GridWidth, Height: cfg.World.GridHeight}
	layout, err := world.Process(doc, list, grid)
	if err != nil {
		return err
	}

	var js, bin bytes.Buffer
	if err := layout.WriteJSON(&js); err != nil {
		return err
	}
	if err := layout.WriteMatrix(&bin); err != nil {
		return err
	}
	if err := writeOutput(outJSON, js.Bytes()); err != nil {
		return err
	}
	if err := writeOutput(outBin, bin.Bytes()); err != nil {
		return err
	}
	log.Printf("%d rooms, world %dx%d screens", len(list), layout.MatrixWidth, layout.MatrixHeight)
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return compiler.WriteFileAtomic(path, data)
}

func readMap(path string) (*mapbin.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := mapbin.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func runDump(ctx context.Context, cfg *config.Settings, args []string) error {
	m, err := readMap(args[0])
	if err != nil {
		return err
	}
	return dump(os.Stdout, m)
}

var collisionGlyphs = map[mapbin.CollisionClass]byte{
	mapbin.CollisionNone:  '.',
	mapbin.CollisionSolid: '#',
	mapbin.CollisionWater: '~',
	mapbin.CollisionHeat:  '^',
}

func dump(w io.Writer, m *mapbin.Map) error {
	var b strings.Builder
	fmt.Fprintf(&b, "size      %dx%d\n", m.Header.Width, m.Header.Height)
	fmt.Fprintf(&b, "room      (%d,%d)\n", m.Header.RoomX, m.Header.RoomY)
	fmt.Fprintf(&b, "collision @%d\n", m.Layout.Collision)
	fmt.Fprintf(&b, "graphics  @%d\n", m.Layout.Graphics)
	if m.Layout.HasEntities {
		fmt.Fprintf(&b, "entities  @%d (%d)\n", m.Layout.Entities, len(m.Entities))
	} else {
		b.WriteString("entities  none\n")
	}

	b.WriteString("\n")
	for y := 0; y < int(m.Header.Height); y++ {
		for x := 0; x < int(m.Header.Width); x++ {
			b.WriteByte(collisionGlyphs[m.CollisionAt(x, y)])
		}
		b.WriteByte('\n')
	}

	for _, e := range m.Entities {
		fmt.Fprintf(&b, "\n%s at (%d,%d) size %dx%d\n", e.Name, e.X, e.Y, e.Width, e.Height)
		for _, p := range e.Properties {
			fmt.Fprintf(&b, "  %s = %s\n", p.Name, formatValue(p.Value))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v mapbin.PropertyValue) string {
	switch v := v.(type) {
	case mapbin.StringValue:
		return fmt.Sprintf("%q", string(v))
	case mapbin.IntValue:
		return fmt.Sprintf("%d", uint32(v))
	case mapbin.FixedValue:
		return fmt.Sprintf("%g (fx %d)", v.Float(), int32(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func runPreview(ctx context.Context, cfg *config.Settings, args []string) error {
	m, err := readMap(args[0])
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, m, preview.Options{TileSize: tileFlag, Scale: scaleFlag}); err != nil {
		return err
	}
	return writeOutput(args[1], buf.Bytes())
}
