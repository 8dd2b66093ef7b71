// Command mapc compiles Tiled rooms into the game's binary map format.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/mapc/config"
	"github.com/automoto/mapc/telemetry"
)

const usage = `usage: mapc <command> [flags] args...

commands:
  compile [-tileset name] <input.tmx> <world.json> <output.bin|->
  world   <input.world> <room_list.txt> <out.json|-> <out.bin|->
  build   [-j N] <world.json> <rooms_dir> <out_dir>
  watch   <world.json> <rooms_dir> <out_dir>
  dump    <map.bin>
  preview [-scale N] [-tile N] <map.bin> <out.png>

every command accepts -config (default mapc.yaml, optional) and -env (default .env, optional)
`

type command struct {
	flags *flag.FlagSet
	nargs int
	run   func(ctx context.Context, cfg *config.Settings, args []string) error
}

var errUsage = errors.New("invalid usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("[mapc] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	cmd, ok := commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	configPath := cmd.flags.String("config", config.DefaultFile, "YAML configuration file")
	envPath := cmd.flags.String("env", ".env", "dotenv file with MAPC_* overrides")
	if err := cmd.flags.Parse(args[1:]); err != nil {
		return errUsage
	}
	if cmd.flags.NArg() != cmd.nargs {
		return fmt.Errorf("%w: %s takes %d arguments", errUsage, args[0], cmd.nargs)
	}

	if err := config.LoadDotEnv(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Note: %s not loaded: %v", *envPath, err)
	}
	optional := !flagSet(cmd.flags, "config")
	cfg, err := config.Load(*configPath, optional)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	return cmd.run(ctx, cfg, cmd.flags.Args())
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
