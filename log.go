package main

import (
	"io"
	"os"

	logging "github.com/op/go-logging"
)

var logger = logging.MustGetLogger("TagAlign")

var logFormat = logging.MustStringFormatter(
	`%{time:2006/01/02 15:04:05} %{level:.4s} %{message}`,
)

// setLogBackend sends log records to stderr and, if given, to logFile.
func setLogBackend(logFile io.Writer) {
	var backends = []logging.Backend{
		logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormat),
	}
	if logFile != nil {
		backends = append(backends, logging.NewBackendFormatter(logging.NewLogBackend(logFile, "", 0), logFormat))
	}
	logging.SetBackend(backends...)
}
