// Persistence of the last used debug specification: an environment variable
// for child processes, or a YAML/TOML file that can be edited and watched.
package store

import "os"

const DEFAULT_ENV_VAR = "DEBUG"

// Env keeps the specification in an environment variable, so processes started
// from this one inherit it.
type Env struct {
	name string
}

// NewEnv stores in the variable name (DEFAULT_ENV_VAR when empty).
func NewEnv(name string) *Env {
	if name == "" {
		name = DEFAULT_ENV_VAR
	}
	return &Env{name: name}
}

// Name returns the variable the spec is kept in.
func (e *Env) Name() string { return e.name }

// Save sets the variable, or unsets it for an empty spec.
func (e *Env) Save(spec string) error {
	if spec == "" {
		return os.Unsetenv(e.name)
	}
	return os.Setenv(e.name, spec)
}

// Load returns the variable value, empty when unset.
func (e *Env) Load() (string, error) {
	return os.Getenv(e.name), nil
}
