package main

import (
	"io"
	"os"
	"strings"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/sirupsen/logrus"
)

// Journal records every submitted program and every raised interrupt
// in two separated log files. A nil *Journal records nothing.
type Journal struct {
	commands   *logrus.Logger
	interrupts *logrus.Logger
	closers    []io.Closer
}

func newJournalLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

func newJournal(commands, interrupts io.Writer) *Journal {
	return &Journal{
		commands:   newJournalLogger(commands),
		interrupts: newJournalLogger(interrupts),
	}
}

// OpenJournal creates new commands and interrupts files in dir. Files
// of previous runs are never overwritten.
func OpenJournal(dir string) (j *Journal, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var files []io.Closer
	defer func() {
		if err == nil {
			return
		}
		for _, f := range files {
			f.Close()
		}
	}()

	commands, err := naiad.CreateJournalFile(dir, "commands")
	if err != nil {
		return nil, err
	}
	files = append(files, commands)
	interrupts, err := naiad.CreateJournalFile(dir, "interrupts")
	if err != nil {
		return nil, err
	}
	files = append(files, interrupts)

	j = newJournal(commands, interrupts)
	j.closers = files
	return j, nil
}

// Program journals a submitted program and its outcome.
func (j *Journal) Program(program string, commands []naiad.Command, err error) {
	if j == nil {
		return
	}
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name())
	}
	entry := j.commands.WithFields(logrus.Fields{
		"program":  strings.TrimSpace(program),
		"commands": strings.Join(names, ","),
	})
	if err != nil {
		entry.WithError(err).Error("program rejected")
		return
	}
	entry.Info("program applied")
}

// Interrupt journals a raised interrupt.
func (j *Journal) Interrupt(e naiad.InterruptEvent, err error) {
	if j == nil {
		return
	}
	entry := j.interrupts.WithFields(logrus.Fields{
		"code":       int(e.Code),
		"identifier": e.Identifier,
	})
	if e.Zone != 0 {
		entry = entry.WithField("zone", e.Zone)
	}
	if err != nil {
		entry.WithError(err).Error(e.Description)
		return
	}
	if e.Flags&naiad.Emergency != 0 {
		entry.Warn(e.Description)
		return
	}
	entry.Info(e.Description)
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	var first error
	for _, c := range j.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
