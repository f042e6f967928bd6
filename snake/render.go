package snake

import (
	"strconv"
	"strings"
)

// Glyphs are two columns wide so board cells come out roughly square
const (
	glyphHead  = "██"
	glyphBody  = "▓▓"
	glyphFood  = "◆ "
	glyphEmpty = "  "

	controlHint = "WASD/arrows to move, Q to quit"
)

// palette holds the SGR prefixes for each cell kind; the zero value renders plain text
type palette struct {
	border, head, body, food, status, alert, reset string
}

var colorPalette = palette{
	border: "\x1b[90m",
	head:   "\x1b[1;92m",
	body:   "\x1b[32m",
	food:   "\x1b[1;91m",
	status: "\x1b[36m",
	alert:  "\x1b[1;31m",
	reset:  "\x1b[0m",
}

func paletteFor(colored bool) palette {
	if colored {
		return colorPalette
	}
	return palette{}
}

// Render draws the bordered board and the status line, a pure function of s
func Render(s *State, colored bool) string {
	p := paletteFor(colored)
	var b strings.Builder
	b.Grow((s.Width*2 + 16) * (s.Height + 4))

	rule := strings.Repeat("═", s.Width*2)
	b.WriteString(p.border + "╔" + rule + "╗" + p.reset + "\n")

	head := s.Head()
	for y := 0; y < s.Height; y++ {
		b.WriteString(p.border + "║" + p.reset)
		for x := 0; x < s.Width; x++ {
			c := Point{X: x, Y: y}
			switch {
			case c == head:
				b.WriteString(p.head + glyphHead + p.reset)
			case s.Occupied(c):
				b.WriteString(p.body + glyphBody + p.reset)
			case c == s.Food && !s.Won:
				b.WriteString(p.food + glyphFood + p.reset)
			default:
				b.WriteString(glyphEmpty)
			}
		}
		b.WriteString(p.border + "║" + p.reset + "\n")
	}

	b.WriteString(p.border + "╚" + rule + "╝" + p.reset + "\n")
	b.WriteString(p.status + "Score: " + strconv.Itoa(s.Score) + p.reset + "\n")
	b.WriteString(controlHint + "\n")
	return b.String()
}

// RenderSummary draws the final game over screen
func RenderSummary(score int, note string, colored bool) string {
	p := paletteFor(colored)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(p.alert + "  G A M E   O V E R" + p.reset + "\n")
	b.WriteString("\n")
	b.WriteString(p.status + "  Final score: " + strconv.Itoa(score) + p.reset + "\n")
	if note != "" {
		b.WriteString("\n  " + note + "\n")
	}
	return b.String()
}
