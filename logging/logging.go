// Package logging builds the slog logger described by config.LoggingConfig.
//
// Text output looks like
//
//	2024-01-02 15:04:05 INFO s3browser[4242]: uploaded file to bucket key=sample.txt
//
// and goes either to stdout or to a daily file under the configured
// directory. JSON output carries the same fields as attributes.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/sagarc03/s3browser/config"
)

// TimeFormat is the timestamp layout of text output.
const TimeFormat = "2006-01-02 15:04:05"

// LevelCritical sits above slog.LevelError for failures that end the run.
const LevelCritical = slog.LevelError + 4

// ErrUnknownLevel is returned by ParseLevel for names outside the level table.
var ErrUnknownLevel = errors.New("unknown log level")

var levels = map[string]slog.Level{
	"DEBUG":    slog.LevelDebug,
	"INFO":     slog.LevelInfo,
	"WARN":     slog.LevelWarn,
	"WARNING":  slog.LevelWarn,
	"ERROR":    slog.LevelError,
	"CRITICAL": LevelCritical,
}

// ParseLevel maps a severity name to a level. Names are case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	level, ok := levels[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return level, nil
}

func levelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Options controls NewHandler.
type Options struct {
	Level slog.Level
	// JSON selects the slog JSON handler instead of the text handler.
	JSON bool
	// UTC renders timestamps in UTC instead of local time.
	UTC bool
	// App and PID are rendered as "app[pid]:" in front of text messages.
	App     string
	PID     int
	NoColor bool
}

// NewHandler returns the handler writing to w.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	if opts.JSON {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: opts.Level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) > 0 {
					return a
				}
				switch a.Key {
				case slog.TimeKey:
					if opts.UTC {
						return slog.Time(slog.TimeKey, a.Value.Time().UTC())
					}
				case slog.LevelKey:
					if l, ok := a.Value.Any().(slog.Level); ok {
						return slog.String(slog.LevelKey, levelName(l))
					}
				}
				return a
			},
		})
		return h.WithAttrs([]slog.Attr{
			slog.String("app", opts.App),
			slog.Int("pid", opts.PID),
		})
	}

	prefix := fmt.Sprintf("%s[%d]: ", opts.App, opts.PID)
	return tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: TimeFormat,
		NoColor:    opts.NoColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				if opts.UTC {
					return slog.Time(slog.TimeKey, a.Value.Time().UTC())
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					return slog.String(slog.LevelKey, levelName(l))
				}
			case slog.MessageKey:
				return slog.String(slog.MessageKey, prefix+a.Value.String())
			}
			return a
		},
	})
}

// New builds the logger for cfg. Output goes to stdout unless cfg selects
// the daily log file. The returned close function releases the file.
func New(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	opts := Options{
		Level: level,
		JSON:  cfg.Format == "json",
		UTC:   cfg.UTCDatetime,
		App:   filepath.Base(os.Args[0]),
		PID:   os.Getpid(),
	}

	w := stdout
	closeFn := func() error { return nil }
	if cfg.ToFile() {
		now := time.Now
		if cfg.UTCDatetime {
			now = func() time.Time { return time.Now().UTC() }
		}
		file := NewDailyFile(cfg.Dir, now)
		w, closeFn = file, file.Close
		opts.NoColor = true
	} else {
		opts.NoColor = !isTerminal(stdout)
	}

	return slog.New(NewHandler(w, opts)), closeFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
