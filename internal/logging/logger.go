// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
}

// Setup configures logrus. The returned closer flushes the log file, if any.
func Setup(params SetupParams) (io.Closer, error) {
	level, err := ParseLevel(params.LogLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if params.LogFileName == "" {
		logrus.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	file := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	if params.LogToStdout {
		logrus.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		logrus.SetOutput(file)
	}
	logrus.WithField("file", params.LogFileName).Debug("Logging to file")
	return file, nil
}

// ParseLevel maps a configured level name to a logrus level. Empty means info.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "trace":
		return logrus.TraceLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	}
	return logrus.InfoLevel, fmt.Errorf("unknown log level %q", level)
}
