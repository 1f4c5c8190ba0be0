package auto

import (
	"log/slog"
	"os"
	"sync"

	"github.com/abyssdigger/dbg"
	"github.com/abyssdigger/dbg/config"
	"github.com/abyssdigger/dbg/sink"
	"github.com/abyssdigger/dbg/store"
)

var (
	defaultOnce sync.Once
	defaultEnv  *Env
)

// Default returns the process-wide registry, built on first use from the
// DEBUG_* environment. A rejected configuration is reported through slog and
// replaced by colorless stderr output that still honors DEBUG.
func Default() *dbg.Registry {
	defaultOnce.Do(func() {
		cfg, err := config.Load()
		if err == nil {
			defaultEnv, err = Build(cfg)
		}
		if err != nil {
			slog.Warn("debug configuration rejected, using stderr", "error", err)
			defaultEnv = &Env{Registry: dbg.InitWithParams(sink.NewTerm(os.Stderr), store.NewEnv(""), os.Stderr)}
		}
	})
	return defaultEnv.Registry
}

// Logger returns the named logger of the default registry.
func Logger(namespace string) *dbg.Logger {
	return Default().Logger(namespace)
}

// Enable replaces the spec of the default registry.
func Enable(spec string) {
	Default().Enable(spec)
}

// Disable clears the spec of the default registry and returns the old one.
func Disable() string {
	return Default().Disable()
}

// Enabled reports whether name is on in the default registry.
func Enabled(name string) bool {
	return Default().Enabled(name)
}
