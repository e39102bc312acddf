package main

import (
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// setupLogging configures the package logger. With a logFile, output goes to
// a daily file "<logFile>.YYYYMMDD" and logFile is a symlink to the newest.
func setupLogging(level, logFile string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	formatter := &log.TextFormatter{FullTimestamp: true}
	if logFile != "" {
		logf, err := rotatelogs.New(
			logFile+".%Y%m%d",
			rotatelogs.WithLinkName(logFile),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return err
		}
		log.SetOutput(logf)
		formatter.DisableColors = true
	} else {
		log.SetOutput(os.Stderr)
		fd := os.Stderr.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			formatter.ForceColors = true
		} else {
			formatter.DisableColors = true
		}
	}
	log.SetFormatter(formatter)

	return nil
}
