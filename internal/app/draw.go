package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
	"termsheet/internal/textutil"
)

const helpText = "\n i / Enter - edit \n Ctrl+Enter - save&stay \n Shift/Alt+Enter - newline \n Del - clear cell \n : - command \n = - formula \n Ctrl←/Ctrl→ - col width \n Ctrl↑/Ctrl↓ - row height \n PgUp/PgDn/Home/End - move \n :w [file] | :o file | :w file.csv \n :type int|double|string \n :snap name | :restore name \n "

var (
	headerStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	activeStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	selectedStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
	errorStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	statusStyle   = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
)

// DisplayText is what the grid shows for a cell: its evaluated text, or an
// error placeholder. numeric reports whether it should be right-aligned.
func (a *App) DisplayText(r, c int) (text string, numeric bool, err error) {
	cell := a.Sheet.Get(cellAddr(r, c))
	text, err = cell.EvaluatedText()
	if err != nil {
		return errs.Placeholder(err), false, err
	}
	return text, cell.Type().Arithmetic(), nil
}

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	// header row: column names
	x := a.LeftGutter
	for c := a.ViewCol; c < a.Cols && x < w; c++ {
		wc := a.ColWidth(c)
		style := headerStyle
		if c == a.CurCol {
			style = activeStyle
		}
		printText(s, x, 0, textutil.PadCenter(grid.ColName(c+1), wc), style, wc)
		x += wc
	}

	// rows
	y := 1
	for r := a.ViewRow; r < a.Rows && y < h-a.StatusLines; r++ {
		gutter := headerStyle
		if r == a.CurRow {
			gutter = activeStyle
		}
		printText(s, 0, y, textutil.PadLeft(strconv.Itoa(r+1), a.LeftGutter-1), gutter, a.LeftGutter-1)

		x = a.LeftGutter
		hh := a.RowHeight(r)
		for c := a.ViewCol; c < a.Cols && x < w; c++ {
			wc := a.ColWidth(c)
			text, numeric, err := a.DisplayText(r, c)
			editing := a.Mode == ModeInsert && r == a.CurRow && c == a.CurCol
			if editing {
				text, numeric = a.InputBuf, false
			}

			style := tcell.StyleDefault
			switch {
			case r == a.CurRow && c == a.CurCol:
				style = selectedStyle
			case err != nil:
				style = errorStyle
			}

			innerX, innerW := x+a.CellPadding, wc-2*a.CellPadding
			if innerW <= 0 {
				innerX, innerW = x, wc
			}
			for dy, line := range splitLines(text, hh) {
				if y+dy >= h-a.StatusLines {
					break
				}
				printText(s, x, y+dy, "", style, wc)
				if numeric {
					line = textutil.PadLeft(line, innerW)
				}
				printText(s, innerX, y+dy, line, style, innerW)
			}
			x += wc
		}
		y += hh
	}

	a.drawStatus(s)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}

	s.HideCursor()
	if a.Mode == ModeInsert {
		a.drawEditCursor(s)
	}
	if a.Prompt != nil {
		a.Prompt.Draw(s)
	}
	s.Show()
}

func (a *App) drawStatus(s tcell.Screen) {
	w, h := s.Size()
	statusY := max(0, h-a.StatusLines)

	addr := a.CursorAddr()
	cell := a.Sheet.Get(addr)
	left := fmt.Sprintf("Mode:%s  Cell:%s [%s]  cw=%d rh=%d  View:%s  changed:%d",
		a.Mode, addr, cell.Type(), a.ColWidth(a.CurCol), a.RowHeight(a.CurRow),
		cellAddr(a.ViewRow, a.ViewCol), a.Changed)
	if a.File != "" {
		left += "  " + a.File
	}
	printText(s, 0, statusY, left, statusStyle, w)
	if a.StatusLines < 2 {
		return
	}

	var line string
	switch {
	case a.Mode == ModeInsert:
		line = "EDIT: " + a.InputBuf
	case a.Status != "":
		line = a.Status
	default:
		line = cell.Source()
	}
	printText(s, 0, statusY+1, strings.ReplaceAll(line, "\n", "⏎"), statusStyle, w)
}

// drawEditCursor marks the insertion point inside the cell being edited.
func (a *App) drawEditCursor(s tcell.Screen) {
	w, h := s.Size()
	if a.CurCol < a.ViewCol || a.CurRow < a.ViewRow {
		return
	}
	cellX := a.LeftGutter
	for cc := a.ViewCol; cc < a.CurCol && cellX < w; cc++ {
		cellX += a.ColWidth(cc)
	}
	cellY := 1
	for rr := a.ViewRow; rr < a.CurRow && cellY < h; rr++ {
		cellY += a.RowHeight(rr)
	}
	if cellX >= w || cellY >= h-a.StatusLines {
		return
	}

	lines := strings.Split(a.InputBuf, "\n")
	last := len(lines) - 1
	colW, rowH := a.ColWidth(a.CurCol), a.RowHeight(a.CurRow)

	innerX, innerW := cellX+a.CellPadding, colW-2*a.CellPadding
	if innerW < 1 {
		innerX, innerW = cellX, colW
	}
	cx := innerX + min(textutil.Width(lines[last]), max(0, innerW-1))
	cy := cellY + min(last, max(0, rowH-1))
	if cx < w && cy < h {
		s.SetContent(cx, cy, '▏', nil, tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorLightGray))
	}
}

// printText writes str into exactly width columns at x, y, padding with
// spaces and cutting at the last whole character.
func printText(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	if y < 0 {
		return
	}
	for _, r := range textutil.Fit(str, width) {
		if x >= 0 {
			s.SetContent(x, y, r, nil, style)
		}
		x += max(1, runewidth.RuneWidth(r))
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	maxPW := w - 6
	maxPH := h - 6

	innerW := min(maxPW-padding*2, 50)
	if innerW < 30 {
		innerW = min(30, maxPW-padding*2)
	}

	lines := wrapText(help, innerW)
	if avail := maxPH - padding*2; avail > 0 && len(lines) > avail {
		lines = lines[:avail]
	}
	innerH := max(3, len(lines))

	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	border := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	bg := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)

	for yy := 0; yy < ph; yy++ {
		printText(s, left, top+yy, "", bg, pw)
	}
	s.SetContent(left, top, '┌', nil, border)
	s.SetContent(left+pw-1, top, '┐', nil, border)
	s.SetContent(left, top+ph-1, '└', nil, border)
	s.SetContent(left+pw-1, top+ph-1, '┘', nil, border)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, '─', nil, border)
		s.SetContent(left+xx, top+ph-1, '─', nil, border)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, '│', nil, border)
		s.SetContent(left+pw-1, top+yy, '│', nil, border)
	}

	vOffset := (ph - padding*2 - len(lines)) / 2
	for i, ln := range lines {
		printText(s, left+padding, top+padding+vOffset+i, ln, bg, innerW)
	}
}

// wrapText breaks s into lines of at most max columns, one leading space of
// indent each, keeping blank lines between paragraphs.
func wrapText(s string, max int) []string {
	if max <= 2 {
		return []string{s}
	}

	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := " "
		for _, word := range words {
			for _, chunk := range chunkString(word, max-1) {
				switch {
				case textutil.Width(cur) == 1:
					cur += chunk
				case textutil.Width(cur)+1+textutil.Width(chunk) <= max:
					cur += " " + chunk
				default:
					result = append(result, cur)
					cur = " " + chunk
				}
			}
		}
		result = append(result, cur)
	}
	return result
}

// chunkString cuts s into pieces no wider than size columns.
func chunkString(s string, size int) []string {
	var out []string
	var cur strings.Builder
	w := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > size && w > 0 {
			out = append(out, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteRune(r)
		w += rw
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
