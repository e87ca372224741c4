package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
)

// config is read from CMDSTREAM_* variables first; flags override it.
type config struct {
	Frames   int    `env:"CMDSTREAM_FRAMES"   envDefault:"4"`
	Workers  int    `env:"CMDSTREAM_WORKERS"  envDefault:"2"`
	Draws    int    `env:"CMDSTREAM_DRAWS"    envDefault:"3"`
	Context  string `env:"CMDSTREAM_CONTEXT"  envDefault:"trace"`
	MaxSize  int    `env:"CMDSTREAM_MAX_SIZE"`
	Validate bool   `env:"CMDSTREAM_VALIDATE" envDefault:"true"`
	Disasm   bool   `env:"CMDSTREAM_DISASM"   envDefault:"true"`
	Verbose  bool   `env:"CMDSTREAM_VERBOSE"`

	// OTLPEndpoint enables span export when set, e.g. http://localhost:4318.
	OTLPEndpoint string `env:"CMDSTREAM_OTEL_ENDPOINT"`
}

func loadConfig(args []string, stderr io.Writer) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("cmdtrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "number of frames to record")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines recording in parallel")
	fs.IntVar(&cfg.Draws, "draws", cfg.Draws, "indexed draws per frame")
	fs.StringVar(&cfg.Context, "context", cfg.Context, "execution context: trace, hal or null")
	fs.IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "command buffer limit in bytes (0 = unbounded)")
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "panic on recording misuse")
	fs.BoolVar(&cfg.Disasm, "disasm", cfg.Disasm, "print the disassembly of every frame")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")
	fs.StringVar(&cfg.OTLPEndpoint, "otel-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP endpoint for submission spans")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c config) validate() error {
	var errs []error
	if c.Frames < 1 {
		errs = append(errs, fmt.Errorf("frames must be positive, got %d", c.Frames))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Draws < 0 {
		errs = append(errs, fmt.Errorf("draws must not be negative, got %d", c.Draws))
	}
	if c.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("max-size must not be negative, got %d", c.MaxSize))
	}
	return errors.Join(errs...)
}
