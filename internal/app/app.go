package app

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"termsheet/internal/config"
	"termsheet/internal/grid"
	"termsheet/internal/sheet"
	"termsheet/internal/storage"
)

const (
	ModeNormal = "normal"
	ModeInsert = "insert"
	ModePrompt = "prompt"
)

type App struct {
	// layout
	LeftGutter    int
	StatusLines   int
	DefaultWidth  int
	DefaultHeight int

	CellPadding int

	// grid extent shown so far; widths and heights not overridden use
	// the defaults
	Cols, Rows int
	ColWidths  map[int]int
	RowHeights map[int]int

	// document
	Sheet     *sheet.Sheet
	File      string
	Snapshots *storage.Snapshots

	// cursor / view, zero-based
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	// UI state
	Mode        string
	InputBuf    string
	Prompt      *Prompt
	Status      string
	Changed     int // cells notified by the last change
	Quit        bool
	HelpVisible bool

	// editing behavior options
	EnterStartsEdit     bool
	PrintableStartsEdit bool
	MoveAfterEnter      bool
	SelectAllOnEdit     bool
	ReplaceOnNextRune   bool

	watch     bool
	watched   string
	stopWatch context.CancelFunc
	ctx       context.Context
	screen    tcell.Screen
}

func NewApp(cfg *config.Config) *App {
	l, e := cfg.Layout, cfg.Edit
	a := &App{
		LeftGutter:          l.LeftGutter,
		StatusLines:         l.StatusLines,
		DefaultWidth:        l.DefaultWidth,
		DefaultHeight:       l.DefaultHeight,
		CellPadding:         l.CellPadding,
		Mode:                ModeNormal,
		EnterStartsEdit:     e.EnterStartsEdit,
		PrintableStartsEdit: e.PrintableStartsEdit,
		MoveAfterEnter:      e.MoveAfterEnter,
		SelectAllOnEdit:     e.SelectAllOnEdit,
		ColWidths:           map[int]int{},
		RowHeights:          map[int]int{},
		watch:               cfg.Storage.Watch,
		ctx:                 context.Background(),
	}
	a.EnsureColExists(l.Cols - 1)
	a.EnsureRowExists(l.Rows - 1)
	a.bindSheet(sheet.New())
	return a
}

// bindSheet makes s the edited sheet and grows the layout to cover it.
func (a *App) bindSheet(s *sheet.Sheet) {
	s.OnCellChanged(a.cellChanged)
	a.Sheet = s
	cols, rows := s.Bounds()
	a.EnsureColExists(cols - 1)
	a.EnsureRowExists(rows - 1)
}

// Open replaces the sheet with one read from disk and moves the cursor home.
func (a *App) Open(s *sheet.Sheet, file string) {
	a.bindSheet(s)
	if file != "" {
		a.File = file
		a.watchFile()
	}
	a.CurRow, a.CurCol, a.ViewRow, a.ViewCol = 0, 0, 0, 0
}

func (a *App) cellChanged(c *sheet.Cell) {
	a.Changed++
	log.WithField("cell", c.Address().String()).Debug("cell changed")
}

// Run draws and dispatches events until the user quits or ctx is done.
func (a *App) Run(ctx context.Context, s tcell.Screen) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx, a.screen = ctx, s
	a.watchFile()

	go func() {
		<-ctx.Done()
		s.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for !a.Quit {
		a.EnsureCursorVisible(s)
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventResize:
			s.Sync()
		case *fileEvent:
			a.reload(ev.path)
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	if a.Mode == ModePrompt && a.Prompt != nil {
		done, ok := a.Prompt.HandleKey(ev)
		if done {
			p := a.Prompt
			a.Prompt = nil
			a.Mode = ModeNormal
			if ok {
				p.onDone(p.Value())
			}
		}
		return
	}

	if a.Mode == ModeInsert {
		mod := ev.Modifiers()
		switch ev.Key() {
		case tcell.KeyEsc:
			a.Mode = ModeNormal
			a.InputBuf = ""
			a.ReplaceOnNextRune = false
		case tcell.KeyEnter:
			// Shift+Enter or Alt+Enter -> newline inside a string cell
			if mod&tcell.ModShift != 0 || mod&tcell.ModAlt != 0 {
				a.InputBuf += "\n"
				return
			}
			// a rejected edit stays open so it can be fixed
			if !a.commit(a.InputBuf) {
				return
			}
			a.Mode = ModeNormal
			a.InputBuf = ""
			a.ReplaceOnNextRune = false
			if mod&tcell.ModCtrl == 0 && a.MoveAfterEnter {
				a.CurRow++
				a.EnsureRowExists(a.CurRow)
			}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if r := []rune(a.InputBuf); len(r) > 0 {
				a.InputBuf = string(r[:len(r)-1])
			}
			a.ReplaceOnNextRune = false
		default:
			r := ev.Rune()
			if r != 0 {
				if a.ReplaceOnNextRune {
					a.InputBuf = string(r)
					a.ReplaceOnNextRune = false
				} else {
					a.InputBuf += string(r)
				}
			}
		}
		return
	}

	// help popup swallows everything but Esc and '?'
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	mod := ev.Modifiers()
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Status = ""
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		if mod&tcell.ModCtrl != 0 {
			if h := a.RowHeight(a.CurRow); h > 1 {
				a.RowHeights[a.CurRow] = h - 1
			}
		} else if a.CurRow > 0 {
			a.CurRow--
		}
	case tcell.KeyDown:
		if mod&tcell.ModCtrl != 0 {
			a.RowHeights[a.CurRow] = a.RowHeight(a.CurRow) + 1
		} else {
			a.CurRow++
			a.EnsureRowExists(a.CurRow)
		}
	case tcell.KeyLeft:
		if mod&tcell.ModCtrl != 0 {
			if w := a.ColWidth(a.CurCol); w > 4 {
				a.ColWidths[a.CurCol] = w - 1
			}
		} else if a.CurCol > 0 {
			a.CurCol--
		}
	case tcell.KeyRight:
		if mod&tcell.ModCtrl != 0 {
			a.ColWidths[a.CurCol] = a.ColWidth(a.CurCol) + 1
		} else {
			a.CurCol++
			a.EnsureColExists(a.CurCol)
		}
	case tcell.KeyPgUp:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow = max(0, a.ViewRow-vr)
		a.CurRow = max(0, a.CurRow-vr)
	case tcell.KeyPgDn:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow += vr
		a.CurRow += vr
		a.EnsureRowExists(a.CurRow)
	case tcell.KeyHome:
		a.CurRow, a.CurCol, a.ViewRow, a.ViewCol = 0, 0, 0, 0
	case tcell.KeyEnd:
		cols, rows := a.Sheet.Bounds()
		a.CurCol, a.CurRow = max(0, cols-1), max(0, rows-1)
	case tcell.KeyDelete:
		a.commit("")
	case tcell.KeyEnter:
		if a.EnterStartsEdit {
			a.startEdit()
		}
	default:
		r := ev.Rune()
		switch r {
		case 0:
		case 'q':
			a.Quit = true
		case 'i':
			a.startEdit()
		case ':':
			a.openPrompt(":", "", a.ExecuteCommand)
		case '=':
			a.openPrompt("", "=", func(v string) { a.commit(v) })
		case '?':
			a.HelpVisible = true
		default:
			if a.PrintableStartsEdit {
				a.Mode = ModeInsert
				a.InputBuf = string(r)
				a.ReplaceOnNextRune = false
			}
		}
	}
}

// startEdit opens the active cell's source for editing.
func (a *App) startEdit() {
	a.Mode = ModeInsert
	a.InputBuf = a.Sheet.Get(a.CursorAddr()).Source()
	a.ReplaceOnNextRune = a.SelectAllOnEdit
}

func (a *App) openPrompt(label, initial string, onDone func(string)) {
	a.Prompt = NewPrompt(label, initial, onDone)
	a.Mode = ModePrompt
}

// CursorAddr is the sheet address under the cursor.
func (a *App) CursorAddr() grid.Address {
	return cellAddr(a.CurRow, a.CurCol)
}

func cellAddr(r, c int) grid.Address {
	addr, err := grid.New(c+1, r+1)
	if err != nil {
		log.WithError(err).Error("cursor outside the grid")
	}
	return addr
}

// runSafe runs an engine or storage call and reports a failure in the status
// line instead of letting it reach the event loop.
func (a *App) runSafe(what string, fn func() error) bool {
	a.Changed = 0
	if err := fn(); err != nil {
		a.Status = what + ": " + err.Error()
		log.WithError(err).Warn(what)
		return false
	}
	return true
}

// commit stores text in the active cell.
func (a *App) commit(text string) bool {
	addr := a.CursorAddr()
	ok := a.runSafe("edit "+addr.String(), func() error {
		return a.Sheet.SetContent(addr, text)
	})
	if ok {
		a.Status = fmt.Sprintf("%s updated, %d cell(s) changed", addr, a.Changed)
	}
	return ok
}

// ----------------------------- Files -----------------------------

// fileEvent is posted by the watcher when the open file changes on disk.
type fileEvent struct {
	tcell.EventTime
	path string
}

func newFileEvent(path string) *fileEvent {
	ev := &fileEvent{path: path}
	ev.SetEventNow()
	return ev
}

func (a *App) watchFile() {
	if !a.watch || a.File == "" || a.screen == nil || a.watched == a.File {
		return
	}
	if a.stopWatch != nil {
		a.stopWatch()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	path, s := a.File, a.screen
	if err := storage.Watch(ctx, path, func() { s.PostEvent(newFileEvent(path)) }); err != nil {
		cancel()
		log.WithError(err).Warnf("cannot watch %s", path)
		return
	}
	a.watched, a.stopWatch = path, cancel
}

// reload picks up outside changes to the open file, keeping the cursor.
func (a *App) reload(path string) {
	if path != a.File {
		return
	}
	s, err := storage.Load(path)
	if err != nil {
		// editors often write in several steps; the next event brings the rest
		log.WithError(err).Debugf("skipping reload of %s", path)
		return
	}
	if sameSheet(s, a.Sheet) {
		return
	}
	a.bindSheet(s)
	a.Status = "reloaded " + path
	log.WithField("file", path).Info("reloaded changed file")
}

func sameSheet(x, y *sheet.Sheet) bool {
	var bx, by bytes.Buffer
	if x.Serialize(&bx) != nil || y.Serialize(&by) != nil {
		return false
	}
	return bytes.Equal(bx.Bytes(), by.Bytes())
}

// ----------------------------- Helpers -----------------------------

// EnsureColExists extends the grid so that column idx is shown.
func (a *App) EnsureColExists(idx int) {
	a.Cols = max(a.Cols, idx+1)
}

func (a *App) EnsureRowExists(idx int) {
	a.Rows = max(a.Rows, idx+1)
}

func (a *App) ColWidth(c int) int {
	if w, ok := a.ColWidths[c]; ok {
		return w
	}
	return a.DefaultWidth
}

func (a *App) RowHeight(r int) int {
	if h, ok := a.RowHeights[r]; ok {
		return h
	}
	return a.DefaultHeight
}

func atoiMin(s string, lo int) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < lo {
		return 0, false
	}
	return v, true
}

func splitLines(text string, maxLines int) []string {
	if maxLines <= 0 {
		return []string{}
	}
	out := make([]string, maxLines)
	copy(out, strings.Split(text, "\n"))
	return out
}

// ----------------------------- Viewport / Geometry -----------------------------

func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	w, h := s.Size()
	usableW := max(1, w-a.LeftGutter)
	usableH := max(1, h-a.StatusLines-1)

	sumW := 0
	for c := a.ViewCol; c < a.Cols; c++ {
		if sumW+a.ColWidth(c) > usableW {
			break
		}
		sumW += a.ColWidth(c)
		visibleCols++
	}
	sumH := 0
	for r := a.ViewRow; r < a.Rows; r++ {
		if sumH+a.RowHeight(r) > usableH {
			break
		}
		sumH += a.RowHeight(r)
		visibleRows++
	}
	return max(1, visibleRows), max(1, visibleCols)
}

func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	a.EnsureColExists(a.CurCol)
	a.EnsureRowExists(a.CurRow)
	visibleRows, visibleCols := a.ComputeVisible(s)

	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else if a.CurCol >= a.ViewCol+visibleCols {
		a.ViewCol = a.CurCol - visibleCols + 1
	}
	a.ViewCol = min(max(a.ViewCol, 0), max(0, a.Cols-1))

	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
	} else if a.CurRow >= a.ViewRow+visibleRows {
		a.ViewRow = a.CurRow - visibleRows + 1
	}
	a.ViewRow = min(max(a.ViewRow, 0), max(0, a.Rows-1))
}
