package app

import (
	"github.com/gdamore/tcell/v2"
)

// maxPromptLen caps the prompt buffer in runes.
const maxPromptLen = 4096

// Prompt is a one-line modal input box drawn over the grid.
type Prompt struct {
	Label  string
	buf    []rune
	pos    int
	onDone func(string)
}

func NewPrompt(label, initial string, onDone func(string)) *Prompt {
	buf := []rune(initial)
	return &Prompt{Label: label, buf: buf, pos: len(buf), onDone: onDone}
}

func (p *Prompt) Value() string { return string(p.buf) }

// HandleKey edits the buffer. done is set once the prompt closes, ok when it
// closed with Enter rather than Esc.
func (p *Prompt) HandleKey(ev *tcell.EventKey) (done, ok bool) {
	switch ev.Key() {
	case tcell.KeyEsc:
		return true, false
	case tcell.KeyEnter:
		return true, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.pos > 0 {
			p.buf = append(p.buf[:p.pos-1], p.buf[p.pos:]...)
			p.pos--
		}
	case tcell.KeyDelete:
		if p.pos < len(p.buf) {
			p.buf = append(p.buf[:p.pos], p.buf[p.pos+1:]...)
		}
	case tcell.KeyLeft:
		if p.pos > 0 {
			p.pos--
		}
	case tcell.KeyRight:
		if p.pos < len(p.buf) {
			p.pos++
		}
	case tcell.KeyHome:
		p.pos = 0
	case tcell.KeyEnd:
		p.pos = len(p.buf)
	default:
		if r := ev.Rune(); r != 0 && len(p.buf) < maxPromptLen {
			p.buf = append(p.buf[:p.pos], append([]rune{r}, p.buf[p.pos:]...)...)
			p.pos++
		}
	}
	return false, false
}

// Draw paints the box centered on s and places the terminal cursor in it.
func (p *Prompt) Draw(s tcell.Screen) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)
	label := []rune(p.Label)

	w, h := s.Size()
	contentW := max(20, len(label)+len(p.buf)+2)
	contentW = min(contentW, w-4)
	boxW := contentW + 4
	boxH := 3
	left := (w - boxW) / 2
	top := (h - boxH) / 2

	for y := top; y < top+boxH; y++ {
		for x := left; x < left+boxW; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
	for x := left; x < left+boxW; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.SetContent(x, top+boxH-1, tcell.RuneHLine, nil, style)
	}
	for y := top; y < top+boxH; y++ {
		s.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.SetContent(left+boxW-1, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+boxW-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+boxH-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+boxW-1, top+boxH-1, tcell.RuneLRCorner, nil, style)

	x := left + 2
	y := top + 1
	for i, r := range label {
		s.SetContent(x+i, y, r, nil, style)
	}
	x += len(label) + 1

	// scroll the field so the cursor stays inside the box
	maxField := max(1, boxW-4-len(label))
	shown := p.buf
	start := 0
	if len(shown) > maxField {
		if p.pos > maxField {
			start = p.pos - maxField
		}
		shown = shown[start:min(len(shown), start+maxField)]
	}
	for i := 0; i < maxField; i++ {
		r := ' '
		if i < len(shown) {
			r = shown[i]
		}
		s.SetContent(x+i, y, r, nil, style)
	}
	s.ShowCursor(max(left+1, x+p.pos-start), y)
}
