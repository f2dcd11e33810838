package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/keytap"
	"github.com/dshills/keytap/internal/config"
	"github.com/dshills/keytap/internal/logging"
	"github.com/dshills/keytap/internal/script"
)

// engineActions adapts the engine to the script API surface.
type engineActions struct {
	eng *keytap.Engine
}

func (a engineActions) Send(spec string) error              { return a.eng.Send(spec) }
func (a engineActions) Write(text string) error             { return a.eng.Write(text, 0) }
func (a engineActions) IsPressed(spec string) (bool, error) { return a.eng.IsPressed(spec) }

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	path := fs.String("config", "keytap.toml", "configuration file")
	backendKind := fs.String("backend", "", "override the config backend")
	level := fs.String("log-level", "", "override the config log level")
	fs.Parse(args)

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *backendKind != "" {
		cfg.Backend = *backendKind
	}
	if *level != "" {
		cfg.LogLevel = *level
	}

	log := logging.Console(cfg.LogLevel)
	be, err := keytap.OpenBackend(cfg.Backend, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	eng := keytap.New(be, keytap.WithLogger(log))
	defer eng.Close()

	runner := script.NewRunner(engineActions{eng}, log)
	defer runner.Close()

	if err := applyConfig(eng, runner, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	watcher, err := config.Watch(*path, func(next config.Config) {
		if err := applyConfig(eng, runner, next, log); err != nil {
			log.Error().Err(err).Msg("config apply failed")
		}
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("config live reload disabled")
	} else {
		defer watcher.Close()
	}

	log.Info().
		Int("hotkeys", len(cfg.Hotkeys)).
		Int("abbreviations", len(cfg.Abbreviations)).
		Str("backend", cfg.Backend).
		Msg("running")

	ctx, cancel := signalContext()
	defer cancel()
	<-ctx.Done()
	return 0
}

// applyConfig replaces the engine's bindings with the configuration's.
func applyConfig(eng *keytap.Engine, runner *script.Runner, cfg config.Config, log zerolog.Logger) error {
	eng.ClearBindings()

	for _, h := range cfg.Hotkeys {
		var opts []keytap.HotkeyOption
		if h.Blocking {
			opts = append(opts, keytap.Blocking())
		}
		if h.Timeout > 0 {
			opts = append(opts, keytap.WithTimeout(h.Timeout.Std()))
		}
		if _, err := eng.AddHotkey(h.Spec, hotkeyAction(eng, runner, h, log), opts...); err != nil {
			return fmt.Errorf("hotkey %s: %w", h.Spec, err)
		}
	}

	for _, a := range cfg.Abbreviations {
		var opts []keytap.WordOption
		if a.MatchSuffix {
			opts = append(opts, keytap.MatchSuffix())
		}
		if a.Timeout != 0 {
			opts = append(opts, keytap.WithWordTimeout(a.Timeout.Std()))
		}
		if err := eng.AddAbbreviation(a.Source, a.Replacement, opts...); err != nil {
			return fmt.Errorf("abbreviation %s: %w", a.Source, err)
		}
	}

	for _, s := range cfg.Suppress {
		spec := strings.Join(s.Sequence, ", ")
		if err := eng.SuppressSequence(spec, s.Timeout.Std()); err != nil {
			return fmt.Errorf("suppress %s: %w", spec, err)
		}
	}
	return nil
}

// hotkeyAction builds the callback for one configured hotkey.
func hotkeyAction(eng *keytap.Engine, runner *script.Runner, h config.Hotkey, log zerolog.Logger) func() {
	switch {
	case h.Send != "":
		return func() {
			if err := eng.Send(h.Send); err != nil {
				log.Error().Str("hotkey", h.Spec).Err(err).Msg("send failed")
			}
		}
	case h.Write != "":
		return func() {
			if err := eng.Write(h.Write, 5*time.Millisecond); err != nil {
				log.Error().Str("hotkey", h.Spec).Err(err).Msg("write failed")
			}
		}
	default:
		return func() {
			var err error
			if strings.HasSuffix(h.Script, ".lua") {
				err = runner.RunFile(h.Script)
			} else {
				err = runner.RunString(h.Script)
			}
			if err != nil {
				log.Error().Str("hotkey", h.Spec).Err(err).Msg("script failed")
			}
		}
	}
}
