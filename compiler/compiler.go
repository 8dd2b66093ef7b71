// Package compiler drives room compilation: it loads a room and its tileset,
// resolves the room's world placement, encodes it with mapbin and writes the
// result without ever leaving a partial file behind.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/automoto/mapc/config"
	"github.com/automoto/mapc/leveldata"
	"github.com/automoto/mapc/mapbin"
	"github.com/automoto/mapc/telemetry"
	"github.com/automoto/mapc/world"
)

// OutputExt is appended to the room name for batch and watch outputs.
const OutputExt = ".bin"

// Compiler compiles rooms read from one filesystem. It holds only
// read-only state, so one Compiler may compile many rooms concurrently.
type Compiler struct {
	fsys       fs.FS
	placements *world.Placements
	tileset    string
	jobs       int
	watch      config.WatchConfig
	logger     *log.Logger
	tracer     trace.Tracer
	stdout     io.Writer
}

// Option customizes a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for progress and watch messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithTracer sets the tracer used for per-room spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = t }
}

// WithStdout sets where output path "-" is written.
func WithStdout(w io.Writer) Option {
	return func(c *Compiler) { c.stdout = w }
}

// WithWatch sets the watch mode configuration.
func WithWatch(cfg config.WatchConfig) Option {
	return func(c *Compiler) { c.watch = cfg }
}

// New returns a Compiler reading rooms from fsys and placing them with
// placements.
func New(fsys fs.FS, placements *world.Placements, cfg config.CompilerConfig, opts ...Option) *Compiler {
	c := &Compiler{
		fsys:       fsys,
		placements: placements,
		tileset:    cfg.Tileset,
		jobs:       max(cfg.Jobs, 1),
		watch:      config.Defaults().Watch,
		logger:     log.New(io.Discard, "", 0),
		tracer:     telemetry.Tracer("compiler"),
		stdout:     os.Stdout,
	}
	if c.tileset == "" {
		c.tileset = leveldata.DefaultTileset
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileRoom compiles the TMX file at tmxPath (a path within the
// compiler's filesystem) and returns the encoded room. A room missing from
// the placement table fails before anything is read or encoded.
func (c *Compiler) CompileRoom(ctx context.Context, tmxPath string) (res *mapbin.Result, err error) {
	name := leveldata.RoomName(tmxPath)
	_, span := c.tracer.Start(ctx, "compile.room", trace.WithAttributes(
		attribute.String("room", name),
		attribute.String("path", tmxPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("bytes", len(res.Bytes)),
				attribute.Int("entities", res.Entities),
			)
		}
		span.End()
	}()

	cell, err := c.placements.Cell(name)
	if err != nil {
		return nil, err
	}
	types, err := leveldata.LoadTileTypes(c.fsys, leveldata.TilesetPath(tmxPath, c.tileset))
	if err != nil {
		return nil, err
	}
	room, err := leveldata.LoadRoom(c.fsys, tmxPath)
	if err != nil {
		return nil, err
	}

	res, err = mapbin.Compile(room, types, cell)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return res, nil
}

// CompileFile compiles one room and writes it to outPath, or to stdout when
// outPath is "-".
func (c *Compiler) CompileFile(ctx context.Context, tmxPath, outPath string) error {
	res, err := c.CompileRoom(ctx, tmxPath)
	if err != nil {
		return err
	}
	if err := c.write(outPath, res.Bytes); err != nil {
		return err
	}
	c.logger.Printf("%s -> %s (%d bytes, %d entities)", tmxPath, outPath, len(res.Bytes), res.Entities)
	return nil
}

// CompileAll compiles every room into outDir as <room>.bin. Rooms are
// independent: a failing room does not stop or affect the others, and all
// failures are returned joined in input order.
func (c *Compiler) CompileAll(ctx context.Context, tmxPaths []string, outDir string) error {
	errs := make([]error, len(tmxPaths))

	var g errgroup.Group
	g.SetLimit(c.jobs)
	for i, p := range tmxPaths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = c.CompileFile(ctx, p, c.OutputPath(outDir, p))
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// OutputPath returns the batch output file for a room.
func (c *Compiler) OutputPath(outDir, tmxPath string) string {
	return filepath.Join(outDir, leveldata.RoomName(tmxPath)+OutputExt)
}

func (c *Compiler) write(outPath string, data []byte) error {
	if outPath == "-" {
		_, err := c.stdout.Write(data)
		return err
	}
	return WriteFileAtomic(outPath, data)
}

// WriteFileAtomic writes data to a temporary file next to name and renames
// it into place. On any failure the temporary file is removed and name is
// left untouched.
func WriteFileAtomic(name string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err = os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Rooms lists the rooms in dir of the compiler's filesystem.
func (c *Compiler) Rooms(dir string) ([]string, error) {
	return leveldata.DiscoverRooms(c.fsys, path.Clean(dir))
}
