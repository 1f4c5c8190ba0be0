// Package auto wires a dbg.Registry from operator configuration: output
// destination, rendering, colors, persistence, reload and metrics. It also
// keeps a lazily built process-wide registry for code that does not want to
// pass one around.
package auto

/*
Build order follows the data path of a debug line, so Close can release
resources in reverse:

	writer (stderr, stdout, rotating file)
	  -> sink (Term or Slog JSON), optionally counted (Metrics)
	  -> optional Queue (asynchronous rendering)
	  -> Registry (store loaded, DEBUG applied)
	  -> optional Watcher on the store file
*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abyssdigger/dbg"
	"github.com/abyssdigger/dbg/config"
	"github.com/abyssdigger/dbg/sink"
	"github.com/abyssdigger/dbg/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Env is a built registry with everything it owns.
type Env struct {
	Registry *dbg.Registry
	Metrics  *prometheus.Registry // nil unless metrics were asked for
	closers  []func() error
}

// Build validates cfg and assembles a registry from it. Warnings, including
// lines the sink fails to render, are reported through slog.Default().
func Build(cfg *config.Config) (*Env, error) {
	return BuildWithLogger(cfg, slog.Default())
}

// BuildWithLogger is Build with an explicit logger for warnings.
func BuildWithLogger(cfg *config.Config, log *slog.Logger) (env *Env, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env = &Env{}
	defer func() {
		if err != nil {
			env.Close()
			env = nil
		}
	}()

	out, isFile := env.writer(cfg, log)
	use, set := cfg.ColorMode()
	if !set {
		use = isFile != nil && sink.DetectColors(isFile)
	}

	var s dbg.Sink
	switch cfg.Format {
	case sink.FORMAT_JSON:
		logger, err := sink.NewSlogWriter(out, sink.FORMAT_JSON)
		if err != nil {
			return env, err
		}
		s = sink.NewSlog(logger).SetInspectDepth(cfg.Depth)
	default:
		term := sink.NewTerm(out).SetHideDate(bool(cfg.HideDate)).SetInspectDepth(cfg.Depth)
		if err := term.SetLayout(cfg.Layout); err != nil {
			return env, err
		}
		s = term
	}
	if cfg.Metrics {
		env.Metrics = prometheus.NewRegistry()
		if s, err = sink.NewMetrics(s, env.Metrics); err != nil {
			return env, err
		}
	}
	if cfg.Queue > 0 {
		q := sink.StartQueue(s, cfg.Queue, logWriter{log})
		env.closers = append(env.closers, func() error { q.StopAndWait(); return nil })
		s = q
	}

	var st dbg.Store
	var file *store.File
	switch cfg.Store {
	case config.STORE_ENV:
		st = store.NewEnv("")
	case config.STORE_FILE:
		if file, err = store.NewFile(cfg.StorePath); err != nil {
			return env, err
		}
		st = file
	}

	palette := dbg.BasicColors
	if use {
		palette = sink.DetectPalette()
	}
	env.Registry = dbg.InitWithParams(s, st, logWriter{log}).
		SetPalette(palette).
		SetUseColors(use).
		SetInspectDepth(cfg.Depth)
	if cfg.Namespaces != "" && cfg.Namespaces != env.Registry.Namespaces() {
		env.Registry.Enable(cfg.Namespaces)
	}

	if cfg.Watch && file != nil {
		w, err := store.NewWatcher(file, env.Registry, log)
		if err != nil {
			return env, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		env.closers = append(env.closers, func() error { cancel(); return <-done })
	}
	return env, nil
}

// logWriter reports the fallback lines of the registry and the queue as slog
// warnings, one record per line.
type logWriter struct {
	log *slog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.log.Warn("debug output failure", "error", line)
		}
	}
	return len(p), nil
}

// writer opens the output named by cfg. A file that cannot be opened falls
// back to stderr with a warning. The second result is the underlying
// *os.File when there is one, for terminal detection.
func (env *Env) writer(cfg *config.Config, log *slog.Logger) (io.Writer, *os.File) {
	switch cfg.Output {
	case config.OUTPUT_STDOUT:
		return os.Stdout, os.Stdout
	case config.OUTPUT_FILE:
		w, err := sink.NewRotatingWriter(sink.FileOptions{
			Path:       cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   bool(cfg.File.Compress),
		})
		if err != nil {
			log.Warn("debug file output unavailable, falling back to stderr", "path", cfg.File.Path, "error", err)
			return os.Stderr, os.Stderr
		}
		env.closers = append(env.closers, w.Close)
		return w, nil
	}
	return os.Stderr, os.Stderr
}

// Close stops the watcher, drains the queue and closes the output file, in
// that order.
func (env *Env) Close() error {
	var errs []error
	for i := len(env.closers) - 1; i >= 0; i-- {
		if err := env.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	env.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("closing debug environment: %w", errors.Join(errs...))
	}
	return nil
}
