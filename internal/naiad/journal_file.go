package naiad

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// journalFileName returns <stream>.log for the first run, then
// <stream>.<run>.log.
func journalFileName(stream string, run int) string {
	if run == 0 {
		return stream + ".log"
	}
	return fmt.Sprintf("%s.%d.log", stream, run)
}

// CreateJournalFile creates a new journal file for stream in dir. The
// file of a previous run is never reused.
func CreateJournalFile(dir, stream string) (*os.File, error) {
	for run := 0; ; run++ {
		path := filepath.Join(dir, journalFileName(stream, run))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return f, err
	}
}
