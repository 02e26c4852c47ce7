package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string `doc:"log from debug, info, warn or error, debug also logs the call trace"`
	File   string `doc:"append logs to file, - for stdout"`
	Format string `doc:"format logs as text or json"                                         default:"text"`
}

// level parses option, an empty option leaves the handler default.
func level(option string) (slog.Leveler, bool) {
	if option == "" {
		return nil, true
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(option)); err != nil {
		return nil, false
	}
	return l, true
}

// New returns the logger described by options, tagged with service.
// Invalid options fall back to their default and are reported by the logger itself.
// The returned function closes the log file, if any.
func New(options *Options, service string) (*slog.Logger, func() error) {
	var warnings []string

	lvl, ok := level(options.Level)
	if !ok {
		warnings = append(warnings, "could not parse logger level "+options.Level)
		options.Level = ""
	}
	opts := slog.HandlerOptions{Level: lvl}

	var (
		output  io.Writer = os.Stdout
		closer            = func() error { return nil }
		fileErr error
	)
	switch options.File {
	case "", "-":
	case os.DevNull:
		return slog.New(slog.DiscardHandler), closer
	default:
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fileErr = err
			options.File = ""
		} else {
			output, closer = f, f.Close
		}
	}

	var handler slog.Handler
	switch strings.ToLower(options.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, &opts)
	case "text":
		handler = slog.NewTextHandler(output, &opts)
	default:
		warnings = append(warnings, "could not parse logger format "+options.Format)
		options.Format = "text"
		handler = slog.NewTextHandler(output, &opts)
	}

	logger := slog.New(handler).With("service", service)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if fileErr != nil {
		logger.Warn("could not open logger file", "err", fileErr)
	}
	return logger, closer
}
