package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"termsheet/internal/calc"
	"termsheet/internal/sheet"
	"termsheet/internal/storage"
)

var errNoSnapshots = errors.New("no snapshot database is open")

// ExecuteCommand runs one line typed at the ':' prompt.
func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	arg := ""
	if len(parts) >= 2 {
		arg = parts[1]
	}
	// "w file csv" and "o file csv" force CSV whatever the extension
	csvMode := filepath.Ext(arg) == ".csv" || (len(parts) >= 3 && parts[2] == "csv")

	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "cw":
		if v, ok := atoiMin(arg, 4); ok {
			clear(a.ColWidths)
			a.DefaultWidth = v
		}
	case "rh":
		if v, ok := atoiMin(arg, 1); ok {
			clear(a.RowHeights)
			a.DefaultHeight = v
		}
	case "w", "write":
		if csvMode {
			a.exportCSV(csvName(arg))
		} else {
			a.write(arg)
		}
	case "l", "load", "o", "open":
		if csvMode {
			a.importCSV(csvName(arg))
		} else {
			a.load(arg)
		}
	case "export":
		a.exportCSV(arg)
	case "import":
		a.importCSV(arg)
	case "type":
		a.setType(arg)
	case "snap":
		a.snapshot(arg)
	case "restore":
		a.restore(arg)
	default:
		a.Status = "unknown command: " + parts[0]
	}
}

func csvName(name string) string {
	if filepath.Ext(name) != ".csv" {
		name += ".csv"
	}
	return name
}

func (a *App) write(filename string) {
	if filename == "" {
		filename = a.File
	}
	if filename == "" {
		a.Status = "write: no file name"
		return
	}
	if a.runSafe("write "+filename, func() error { return storage.Save(a.Sheet, filename) }) {
		a.File = filename
		a.watchFile()
		a.Status = fmt.Sprintf("wrote %d cell(s) to %s", a.Sheet.Len(), filename)
	}
}

func (a *App) load(filename string) {
	if filename == "" {
		a.Status = "load: no file name"
		return
	}
	var s *sheet.Sheet
	if a.runSafe("load "+filename, func() (err error) {
		s, err = storage.Load(filename)
		return err
	}) {
		a.Open(s, filename)
		a.Status = fmt.Sprintf("loaded %d cell(s) from %s", s.Len(), filename)
	}
}

func (a *App) exportCSV(filename string) {
	if filename == "" {
		a.Status = "export: no file name"
		return
	}
	if a.runSafe("export "+filename, func() error { return storage.ExportCSV(a.Sheet, filename) }) {
		a.Status = "exported " + filename
	}
}

func (a *App) importCSV(filename string) {
	if filename == "" {
		a.Status = "import: no file name"
		return
	}
	var s *sheet.Sheet
	if a.runSafe("import "+filename, func() (err error) {
		s, err = storage.ImportCSV(filename)
		return err
	}) {
		// an imported sheet is saved under a name of its own
		a.File = ""
		a.Open(s, "")
		a.Status = fmt.Sprintf("imported %d cell(s) from %s", s.Len(), filename)
	}
}

// setType converts the active cell, e.g. ":type int".
func (a *App) setType(name string) {
	addr := a.CursorAddr()
	if a.runSafe("type "+addr.String(), func() error {
		t, err := calc.ParseType(name)
		if err != nil {
			return err
		}
		return a.Sheet.SetType(addr, t)
	}) {
		a.Status = fmt.Sprintf("%s is now %s, %d cell(s) changed", addr, name, a.Changed)
	}
}

func (a *App) snapshot(name string) {
	if a.runSafe("snap "+name, func() error {
		if a.Snapshots == nil {
			return errNoSnapshots
		}
		return a.Snapshots.Put(name, a.Sheet)
	}) {
		a.Status = "stored snapshot " + name
	}
}

func (a *App) restore(name string) {
	var s *sheet.Sheet
	if a.runSafe("restore "+name, func() (err error) {
		if a.Snapshots == nil {
			return errNoSnapshots
		}
		s, err = a.Snapshots.Get(name)
		return err
	}) {
		a.bindSheet(s)
		a.Status = "restored snapshot " + name
	}
}
