// Package obslog builds the structured logger shared by the cmd
// commands, grounded on core/entrypoint.go's Bootstrap/Start: a
// colorized tint.Handler on stderr, optionally fanned out to a plain
// text file handler via slog-multi.
package obslog

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Options configures the logger New builds.
type Options struct {
	// Verbose raises the level to Debug; otherwise Info.
	Verbose bool
	// Prefix is prepended to every line, typically a router id.
	Prefix string
	// FilePath, if non-empty, additionally appends plain text lines to
	// this file.
	FilePath string
}

// New builds a *slog.Logger per Options.
func New(opts Options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: opts.Prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}),
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.FilePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}
