package quest

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/survey"
)

// Visual characters for rendering
const (
	GroundChar = '▀'
	DirtChar   = '░'
	CoinChar   = '●'
)

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	g.drawGround(dst)
	if g.locked || g.session.IsComplete() {
		g.party.render(dst)
		g.drawPlayer(dst)
		g.drawEndBox(dst)
		return
	}

	g.drawPanel(dst)
	g.drawZone(dst)
	g.drawBlocks(dst)
	for _, m := range g.goombas {
		r := m.box.Cells()
		feet := "▟▙"
		if m.bob%20 >= 10 {
			feet = "▙▟"
		}
		dst.DrawTextColor(r.X, r.Y, feet, core.ColorBrown)
	}
	g.drawPlayer(dst)

	if g.paused {
		g.drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

func (g *Game) drawGround(dst *core.Screen) {
	dst.DrawHLine(0, g.groundY, dst.Width(), GroundChar, core.ColorGreen)
	for y := g.groundY + 1; y < dst.Height(); y++ {
		dst.DrawHLine(0, y, dst.Width(), DirtChar, core.ColorBrown)
	}
}

// drawPanel shows the section, progress, wrapped question text and a hint.
func (g *Game) drawPanel(dst *core.Screen) {
	q, ok := g.session.Current()
	if !ok {
		return
	}
	w := dst.Width()
	box := core.NewRect(1, 0, w-2, panelH)
	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorCyan)

	if q.Section != "" {
		dst.DrawTextColor(3, 1, q.Section, core.ColorBrightCyan)
	}
	progress := fmt.Sprintf("%d/%d", g.session.Index()+1, g.session.Len())
	dst.DrawTextColor(w-3-len(progress), 1, progress, core.ColorGray)

	lines := core.WrapText(q.Text, w-6)
	if len(lines) > 3 {
		lines = lines[:3]
		last := []rune(lines[2])
		if len(last) > w-7 {
			last = last[:w-7]
		}
		lines[2] = string(last) + "…"
	}
	for i, line := range lines {
		dst.DrawTextColor(3, 2+i, line, core.ColorWhite)
	}

	dst.DrawTextColor(3, panelH-2, g.hint(q), core.ColorGray)
}

func (g *Game) hint(q survey.Question) string {
	back := ""
	if g.session.Index() > 0 && g.session.Questions()[g.session.Index()-1].Kind == survey.KindScale {
		back = "  B: back"
	}
	if q.Kind == survey.KindText {
		return "Walk to the centre to type your answer." + back
	}
	switch g.trigger {
	case TriggerLand:
		return "Jump onto a numbered block to answer." + back
	case TriggerClick:
		return "Click a numbered block to answer." + back
	default:
		return "Jump and strike a numbered block from below." + back
	}
}

// drawZone marks the prompt zone under the avatar's feet during text questions.
func (g *Game) drawZone(dst *core.Screen) {
	q, ok := g.session.Current()
	if !ok || q.Kind != survey.KindText {
		return
	}
	w := float64(dst.Width())
	left := int(math.Ceil(w * g.cfg.Zone.Left))
	right := int(w * g.cfg.Zone.Right)
	color := core.ColorCyan
	if g.dismissed {
		color = core.ColorGray
	}
	dst.DrawHLine(left, g.groundY, right-left+1, '▔', color)
	if g.groundY+1 < dst.Height() {
		label := "type here"
		dst.DrawTextColor((left+right-len(label))/2, g.groundY+1, label, color)
	}
}

func (g *Game) drawBlocks(dst *core.Screen) {
	for _, b := range g.blocks {
		r := b.drawRect()
		color := core.ColorYellow
		if g.session.Marked(b.value) {
			color = core.ColorGray
		}
		dst.DrawRect(r, ' ', color)
		dst.DrawBox(r, color)
		label := fmt.Sprint(b.value)
		dst.DrawTextColor(r.X+(r.W-len(label))/2, r.Y+1, label, core.ColorWhite)

		faceColor := core.ColorGreen
		switch b.face {
		case ":)":
			faceColor = core.ColorYellow
		case ":|":
			faceColor = core.ColorOrange
		}
		dst.DrawTextColor(r.X+(r.W-len(b.face))/2, r.Y-1, b.face, faceColor)
	}
	for _, c := range g.coins {
		dst.SetColor(c.x, int(math.Round(c.y)), CoinChar, core.ColorBrightYellow)
	}
}

// drawPlayer renders the avatar; legs alternate while running.
func (g *Game) drawPlayer(dst *core.Screen) {
	r := g.player.Cells()
	head := "▗█▖"
	legs := "▞ ▚"
	if !g.grounded {
		legs = "▚ ▞"
	} else if g.runTicks > 0 && g.walk%8 >= 4 {
		legs = "▌ ▐"
	}
	dst.DrawTextColor(r.X, r.Y, fit(head, r.W), core.ColorRed)
	for y := r.Y + 1; y < r.Bottom(); y++ {
		dst.DrawTextColor(r.X, y, fit(legs, r.W), core.ColorBlue)
	}
}

// fit pads or trims a sprite row to w cells.
func fit(s string, w int) string {
	runes := []rune(s)
	if len(runes) >= w {
		return string(runes[:w])
	}
	return s + strings.Repeat(" ", w-len(runes))
}

func (g *Game) drawEndBox(dst *core.Screen) {
	if g.locked {
		g.drawCenteredMessage(dst, "You have already completed this survey.", "Thank you!  |  Q to quit")
		return
	}
	g.drawCenteredMessage(dst, "Thank you! Your responses have been recorded.", "R: start over  |  Q: quit")
}

// drawCenteredMessage draws a message box in the center of the screen.
func (g *Game) drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	box := core.NewRect((w-boxW)/2, (h-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorBrightYellow)
	dst.DrawTextCentered(box.Y+1, title, core.ColorWhite)
	dst.DrawTextCentered(box.Y+3, subtitle, core.ColorGray)
}
