package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// logger is shared by the console and every Device it creates. Output goes
// to stderr so it never interleaves with responses on stdout.
var logger = logrus.New()

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// configureLogging applies the configured level and format.
func configureLogging(cfg *Config, w io.Writer) error {
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	if w != nil {
		logger.SetOutput(w)
	}
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	}
	return nil
}

// deviceLogger returns the entry a Device logs through.
func deviceLogger() *logrus.Entry {
	return logger.WithField("component", "amcp")
}
