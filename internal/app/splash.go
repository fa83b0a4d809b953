package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

var splashTitle = []struct {
	char  rune
	color tcell.Color
}{
	{'T', tcell.ColorWhite},
	{'E', tcell.ColorWhite},
	{'R', tcell.ColorWhite},
	{'M', tcell.ColorWhite},
	{':', tcell.ColorYellow},
	{'S', tcell.ColorYellow},
	{'H', tcell.ColorYellow},
	{'E', tcell.ColorYellow},
	{'E', tcell.ColorYellow},
	{'T', tcell.ColorYellow},
}

const splashHint = "Press any key to enter the application"

// drawSplash shows the first reveal letters of the title.
func drawSplash(s tcell.Screen, reveal int) {
	s.Clear()
	width, height := s.Size()
	startX := (width - len(splashTitle)) / 2
	y := height / 2

	for i := 0; i < reveal && i < len(splashTitle); i++ {
		style := tcell.StyleDefault.Foreground(splashTitle[i].color).Bold(true)
		s.SetContent(startX+i, y, splashTitle[i].char, nil, style)
	}
	printText(s, (width-len(splashHint))/2, y+2, splashHint, tcell.StyleDefault.Foreground(tcell.ColorYellow), len(splashHint))
	s.Show()
}

// Splash animates the title and waits for a key.
func Splash(s tcell.Screen) {
	for reveal := 1; reveal <= len(splashTitle); reveal++ {
		drawSplash(s, reveal)
		time.Sleep(100 * time.Millisecond)
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey, nil:
			return
		case *tcell.EventResize:
			s.Sync()
			drawSplash(s, len(splashTitle))
		}
	}
}
