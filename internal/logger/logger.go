// Package logger builds the process-wide logrus instance.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls level and output of the logger.
type Options struct {
	// Debug enables debug-level logging.
	Debug bool
	// FilePath, when set, sends log output to a rotated file instead of
	// stderr only.
	FilePath string
}

// New builds a configured logrus logger. With a file path the output rotates
// via lumberjack; in debug mode it also mirrors to stderr.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	log.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, err
		}

		rotated := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}

		if opts.Debug {
			log.SetOutput(io.MultiWriter(os.Stderr, rotated))
		} else {
			log.SetOutput(rotated)
		}
	}

	return log, nil
}
