package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir      = "logs"
	logFileName = "voidterm.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging returns a logger that never touches stdout or stderr
// With debug off everything is discarded and the returned file is nil
func setupLogging(debug bool) (*logrus.Logger, *os.File) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	if !debug {
		logger.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
		log.SetOutput(io.Discard)
		return logger, nil
	}

	f, err := openLogFile()
	if err != nil {
		logger.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
		log.SetOutput(io.Discard)
		return logger, nil
	}

	logger.SetOutput(f)
	logger.SetLevel(logrus.DebugLevel)
	logrus.SetOutput(f)
	log.SetOutput(f)
	return logger, f
}

// openLogFile rotates an oversized log aside and opens the current one for append
func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("voidterm-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(path, rotated); err != nil {
			return nil, err
		}
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
