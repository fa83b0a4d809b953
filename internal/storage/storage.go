// Package storage moves sheets between memory and disk: the native sheet
// file, CSV, and a snapshot database.
package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
	"termsheet/internal/sheet"
)

// Save writes the sheet to filename in the native format. The file is
// replaced only once the whole sheet has been written.
func Save(s *sheet.Sheet, filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".termsheet-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	// keep the permissions of the file being replaced
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(filename); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}

	w := bufio.NewWriter(tmp)
	if err := s.Serialize(w); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing sheet: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": filename, "cells": s.Len()}).Info("saved sheet")
	return nil
}

// Load reads a sheet saved by Save.
func Load(filename string) (*sheet.Sheet, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := sheet.Deserialize(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", filename, err)
	}
	log.WithFields(log.Fields{"file": filename, "cells": s.Len()}).Info("loaded sheet")
	return s, nil
}

// MaxExportCells bounds the rectangle ExportCSV will write.
const MaxExportCells = 1 << 22

// ExportCSV writes the evaluated text of every cell from A1 to the sheet's
// bounds. Cells that fail to evaluate get their error placeholder.
func ExportCSV(s *sheet.Sheet, filename string) error {
	cols, rows := s.Bounds()
	if int64(cols)*int64(rows) > MaxExportCells {
		return errs.InvalidArgumentf("sheet spans %dx%d cells, CSV export is limited to %d", cols, rows, MaxExportCells)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := make([]string, cols)
	for r := range rows {
		for c := range cols {
			addr, err := grid.New(c+1, r+1)
			if err != nil {
				return err
			}
			text, err := s.Get(addr).EvaluatedText()
			if err != nil {
				text = errs.Placeholder(err)
			}
			row[c] = text
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	log.WithFields(log.Fields{"file": filename, "rows": rows, "cols": cols}).Info("exported CSV")
	return f.Close()
}

// ImportCSV builds a sheet from a CSV file, one string cell per non-empty
// field. Fields starting with '=' are read as string formulas.
func ImportCSV(filename string) (*sheet.Sheet, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	s := sheet.New()
	for rIdx, row := range records {
		for cIdx, val := range row {
			if val == "" {
				continue
			}
			addr, err := grid.New(cIdx+1, rIdx+1)
			if err != nil {
				return nil, err
			}
			if err := s.SetContent(addr, val); err != nil {
				return nil, fmt.Errorf("%s: %w", addr, err)
			}
		}
	}
	log.WithFields(log.Fields{"file": filename, "cells": s.Len()}).Info("imported CSV")
	return s, nil
}
