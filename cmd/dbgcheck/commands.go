package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/abyssdigger/dbg"
	"github.com/abyssdigger/dbg/auto"
	"github.com/abyssdigger/dbg/config"
	"github.com/urfave/cli/v3"
)

// newApp builds the command tree; command output goes to out.
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "dbgcheck",
		Usage: "Inspect and try debug namespace specifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML or TOML debug config file (DEBUG_* variables override it)",
			},
		},
		Commands: []*cli.Command{
			matchCommand(out),
			normalizeCommand(out),
			demoCommand(out),
			envCommand(out),
		},
	}
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// specFor resolves the spec to check: --spec when given, else the configured one.
func specFor(c *cli.Command) (string, error) {
	if c.IsSet("spec") {
		return c.String("spec"), nil
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.Namespaces, nil
}

func matchCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "Show which namespaces a spec enables",
		ArgsUsage: "NAMESPACE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "spec", Usage: "spec to check (default: DEBUG)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			names := c.Args().Slice()
			if len(names) == 0 {
				return errors.New("no namespace given")
			}
			text, err := specFor(c)
			if err != nil {
				return err
			}
			spec := dbg.ParseSpec(text)
			for _, name := range names {
				state := "disabled"
				if spec.Enabled(name) {
					state = "enabled"
				}
				fmt.Fprintf(out, "%s\t%s\n", name, state)
			}
			return nil
		},
	}
}

func normalizeCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Print a spec the way the registry reads it",
		ArgsUsage: "SPEC",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("expected exactly one spec")
			}
			spec := dbg.ParseSpec(c.Args().First())
			fmt.Fprintln(out, spec.String())
			for _, p := range spec.Includes {
				fmt.Fprintf(out, "  + %q\n", p)
			}
			for _, p := range spec.Excludes {
				fmt.Fprintf(out, "  - %q\n", p)
			}
			return nil
		},
	}
}

func demoCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Emit sample lines through the configured output",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "spec", Usage: "spec to enable (default: DEBUG)"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent loggers", Value: 3},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if c.IsSet("spec") {
				cfg.Namespaces = c.String("spec")
			}
			env, err := auto.Build(cfg)
			if err != nil {
				return err
			}
			runDemo(env.Registry, int(c.Int("workers")))
			if err := env.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "enabled: %q\n", env.Registry.Namespaces())
			return nil
		},
	}
}

func runDemo(r *dbg.Registry, workers int) {
	app := r.Logger("demo")
	app.Log("starting %d workers", workers)
	app.Log("config %o", map[string]int{"workers": workers})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			lg := app.Extend(fmt.Sprintf("worker:%d", id))
			for j := 0; j < 3; j++ {
				lg.Log("step %d of %s, %j", j+1, "3", map[string]int{"id": id, "step": j})
			}
		}(i)
	}
	wg.Wait()
	app.Log(errors.New("demo finished"))
}

func envCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Describe the DEBUG_* environment variables",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Fprint(out, config.Usage())
			return nil
		},
	}
}
