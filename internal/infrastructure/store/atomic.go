package store

import (
	"encoding/csv"
	"fmt"
	"os"
)

// writeCSVAtomic writes a CSV file through a temporary sibling and renames
// it into place, so an interrupted write never leaves a truncated file and
// the prior version stays valid until the new one is complete.
func writeCSVAtomic(path string, header []string, records [][]string) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write records: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", tmp, err)
	}

	return nil
}
