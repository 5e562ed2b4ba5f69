// Package logging builds the zap logger. Logs always go to a rotated file
// so the full-screen panels never draw over them; verbose runs also write
// colorized lines to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file inside the config directory.
const FileName = "bnbpanel.log"

// Options configures New.
type Options struct {
	Dir     string // directory for FileName; empty disables the file sink
	Level   string // debug, info, warn, error
	Verbose bool   // also log to stderr

	// Console overrides the verbose sink, for tests.
	Console io.Writer
}

// ParseLevel maps a config string to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func encoderConfig() zapcore.EncoderConfig {
	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.RFC3339TimeEncoder
	return pe
}

// New returns a logger writing to the configured sinks. With no sinks it
// returns a no-op logger.
func New(o Options) (*zap.Logger, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(o.Dir, FileName),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(file), level))
	}
	if o.Verbose {
		out := o.Console
		if out == nil {
			out = colorable.NewColorableStderr()
		}
		ec := encoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(out), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
