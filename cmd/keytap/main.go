// Package main is the keytap command line tool: watch the keyboard,
// record and replay sessions, or run a hotkey daemon from a config
// file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap"
	"github.com/dshills/keytap/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "watch":
		return cmdWatch(args[1:])
	case "record":
		return cmdRecord(args[1:])
	case "play":
		return cmdPlay(args[1:])
	case "run":
		return cmdRun(args[1:])
	case "version", "-version", "--version":
		fmt.Printf("keytap %s (%s)\n", version, commit)
		return 0
	case "help", "-help", "--help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "keytap: unknown command %q\n\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `keytap - global keyboard hooks, hotkeys and macros

Usage: keytap <command> [options]

Commands:
  watch     Log every keyboard event
  record    Capture events to an NDJSON file
  play      Replay a recorded NDJSON file
  run       Register hotkeys and abbreviations from a config file
  version   Show version information

Run "keytap <command> -h" for command options.
`)
}

// openEngine builds an engine over the requested backend with a
// console logger.
func openEngine(backendKind, level string) (*keytap.Engine, zerolog.Logger, error) {
	log := logging.Console(level)
	be, err := keytap.OpenBackend(backendKind, log)
	if err != nil {
		return nil, log, err
	}
	return keytap.New(be, keytap.WithLogger(log)), log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func cmdWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	backendKind := fs.String("backend", "auto", "backend: auto, hook, evdev, terminal")
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Parse(args)

	eng, log, err := openEngine(*backendKind, *level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer eng.Close()

	_, err = eng.Hook(func(ev *keytap.Event) bool {
		log.Info().
			Str("kind", ev.Kind.String()).
			Str("key", ev.Name()).
			Int32("code", int32(ev.Code)).
			Str("device", ev.Device).
			Msg("key")
		return false
	}, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()
	<-ctx.Done()
	return 0
}

func cmdRecord(args []string) int {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	out := fs.String("o", "recording.ndjson", "output file")
	until := fs.String("until", "esc", "stop combo (empty records until interrupted)")
	backendKind := fs.String("backend", "auto", "backend: auto, hook, evdev, terminal")
	level := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	eng, log, err := openEngine(*backendKind, *level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer eng.Close()

	ctx, cancel := signalContext()
	defer cancel()

	log.Info().Str("until", *until).Msg("recording")
	events, err := eng.Record(ctx, *until)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := keytap.SaveRecording(*out, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info().Int("events", len(events)).Str("file", *out).Msg("saved")
	return 0
}

func cmdPlay(args []string) int {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	in := fs.String("i", "recording.ndjson", "input file")
	speed := fs.Float64("speed", 1, "speed factor (0 plays without delays)")
	backendKind := fs.String("backend", "auto", "backend: auto, hook, evdev, terminal")
	level := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	eng, log, err := openEngine(*backendKind, *level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer eng.Close()

	events, err := keytap.LoadRecording(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := eng.Play(events, *speed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info().Int("events", len(events)).Msg("played")
	return 0
}
