package quest

import (
	"math"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/survey"
)

// block is one answer block of the active scale question.
type block struct {
	value int
	rect  core.Rect
	face  string
	shake int
}

type coin struct {
	x     int
	y, vy float64
	life  int
}

// layoutBlocks lays out one block per scale value for the active question,
// centred on the stage and numbered from the highest value on the left.
func (g *Game) layoutBlocks() {
	g.layout = g.session.Index()
	g.blocks = g.blocks[:0]
	g.zoneTicks = 0
	g.dismissed = false

	q, ok := g.session.Current()
	if !ok || q.Kind != survey.KindScale {
		g.support = -1
		return
	}

	n := q.Span()
	width, gap := g.cfg.Blocks.Width, g.cfg.Blocks.Gap
	for gap > 0 && n*width+(n-1)*gap > g.runtime.ScreenW-2 {
		gap--
	}
	total := n*width + (n-1)*gap
	startX := (g.runtime.ScreenW - total) / 2
	y := g.groundY - g.cfg.Blocks.Above - blockH

	for i := 0; i < n; i++ {
		v := q.Max - i
		g.blocks = append(g.blocks, block{
			value: v,
			rect:  core.NewRect(startX+i*(width+gap), y, width, blockH),
			face:  mood(v-q.Min+1, n),
		})
	}

	g.support = g.blockUnderPlayer()
}

// mood picks the face shown above a block: rank counts from 1 at the low end
// of an n-value scale.
func mood(rank, n int) string {
	switch {
	case rank >= int(math.Ceil(float64(n)*0.8)):
		return ":D"
	case rank >= int(math.Ceil(float64(n)*0.5)):
		return ":)"
	default:
		return ":|"
	}
}

// hit shows feedback for block i and marks its value. A commit is scheduled
// only when the session issues a ticket for it.
func (g *Game) hit(i int) {
	b := &g.blocks[i]
	if g.session.Marked(b.value) {
		return
	}
	ticket, ok, err := g.session.MarkSelected(b.value)
	if err != nil {
		return
	}

	b.shake = shakeLen
	cx, _ := b.rect.Center()
	g.coins = append(g.coins, coin{x: cx, y: float64(b.rect.Y - 1), vy: -0.6})

	if ok {
		g.pending = append(g.pending, pendingCommit{ticket: ticket, due: g.tick + g.commitTicks})
	}
}

// handleClicks triggers the first block under each click.
func (g *Game) handleClicks(clicks []core.Click) {
	for _, c := range clicks {
		for i, b := range g.blocks {
			if b.drawRect().Contains(c.X, c.Y) {
				g.hit(i)
				break
			}
		}
	}
}

// drawRect returns where the block is drawn this frame, including shake.
func (b block) drawRect() core.Rect {
	r := b.rect
	if b.shake > 0 && b.shake%4 >= 2 {
		r.Y--
	}
	return r
}

// stepEffects advances block shakes and coin pops.
func (g *Game) stepEffects() {
	for i := range g.blocks {
		if g.blocks[i].shake > 0 {
			g.blocks[i].shake--
		}
	}

	kept := g.coins[:0]
	for _, c := range g.coins {
		c.y += c.vy
		c.vy += 0.06
		c.life++
		if c.life < coinLife {
			kept = append(kept, c)
		}
	}
	g.coins = kept
}
