package quest

import (
	"math"

	"github.com/vovakirdan/quest/internal/core"
)

type goomba struct {
	box core.Box
	dir float64
	spd float64
	bob int
}

// respawn puts the avatar on the ground at its start column.
func (g *Game) respawn() {
	p := g.cfg.Player
	g.player = core.Box{
		X: float64(p.X),
		Y: float64(g.groundY - p.Height),
		W: float64(p.Width),
		H: float64(p.Height),
	}
	g.vy = 0
	g.grounded = true
	g.support = -1
	g.runTicks = 0
}

// stepPlayer applies input and physics to the avatar and fires strike or
// land triggers along the way.
func (g *Game) stepPlayer(in core.InputFrame) {
	phys := g.cfg.Physics

	// Terminals report key repeats rather than key releases, so each
	// direction press keeps the avatar running for a short hold window.
	if in.Has(core.ActionLeft) {
		g.runDir, g.runTicks = -1, phys.RunHoldTicks
	}
	if in.Has(core.ActionRight) {
		g.runDir, g.runTicks = 1, phys.RunHoldTicks
	}
	if g.runTicks > 0 {
		g.player.X += g.runDir * phys.RunSpeed
		g.runTicks--
		g.walk++
	}
	maxX := float64(g.runtime.ScreenW) - g.player.W - 1
	g.player.X = core.ClampF(g.player.X, 1, math.Max(1, maxX))

	if in.Has(core.ActionJump) && g.grounded {
		g.vy = phys.JumpImpulse
		g.grounded = false
		g.support = -1
	}

	prevTop, prevBottom := g.player.Y, g.player.Bottom()
	g.fall()

	switch {
	case g.trigger == TriggerStrike && g.vy < 0:
		g.checkStrike(prevTop)
	case g.trigger == TriggerLand && g.vy >= 0:
		g.checkLanding(prevBottom)
	}

	g.landOnGround()
}

// fall integrates gravity for one tick.
func (g *Game) fall() {
	phys := g.cfg.Physics
	g.vy += phys.Gravity
	if g.vy > phys.MaxFallSpeed {
		g.vy = phys.MaxFallSpeed
	}
	g.player.Y += g.vy
	g.grounded = false
}

// landOnGround stops the avatar on the ground line.
func (g *Game) landOnGround() {
	if g.grounded {
		return
	}
	ground := float64(g.groundY)
	if g.player.Bottom() >= ground {
		g.player.Y = ground - g.player.H
		g.vy = 0
		g.grounded = true
		g.support = -1
	}
}

// checkStrike fires the first unmarked block whose underside the avatar's
// head crossed this tick. The avatar bonks and starts falling.
func (g *Game) checkStrike(prevTop float64) {
	for i, b := range g.blocks {
		if g.session.Marked(b.value) {
			continue
		}
		bottom := float64(b.rect.Bottom())
		if prevTop > bottom && g.player.Y <= bottom && g.player.OverlapsX(b.rect, 0.12) {
			g.player.Y = bottom
			g.vy = 0
			g.hit(i)
			return
		}
	}
}

// checkLanding puts the avatar on top of a block it fell onto. Only the first
// touch after arriving on a block triggers it.
func (g *Game) checkLanding(prevBottom float64) {
	for i, b := range g.blocks {
		top := float64(b.rect.Y)
		if prevBottom <= top && g.player.Bottom() >= top && g.player.OverlapsX(b.rect, 0.12) {
			g.player.Y = top - g.player.H
			g.vy = 0
			g.grounded = true
			if g.support != i {
				g.support = i
				g.hit(i)
			}
			return
		}
	}
	g.support = -1
}

// blockUnderPlayer returns the block the avatar is standing on, or -1.
func (g *Game) blockUnderPlayer() int {
	for i, b := range g.blocks {
		if math.Abs(g.player.Bottom()-float64(b.rect.Y)) < 0.01 && g.player.OverlapsX(b.rect, 0.12) {
			return i
		}
	}
	return -1
}

// spawnGoombas places the ground patrols across the right side of the stage.
func (g *Game) spawnGoombas() {
	n := g.cfg.Goombas.Count
	g.goombas = g.goombas[:0]
	w := float64(g.runtime.ScreenW)
	for i := 0; i < n; i++ {
		frac := 0.45 + 0.3*float64(i)/math.Max(1, float64(n-1))
		dir := 1.0
		if i%2 == 1 {
			dir = -1
		}
		g.goombas = append(g.goombas, goomba{
			box: core.Box{
				X: math.Round(w * frac),
				Y: float64(g.groundY - goombaH),
				W: goombaW,
				H: goombaH,
			},
			dir: dir,
			spd: g.cfg.Goombas.Speed * (1 + 0.1*float64(i%3)),
		})
	}
}

// stepGoombas walks the patrols back and forth; touching one sends the
// avatar back to the start.
func (g *Game) stepGoombas() {
	maxX := float64(g.runtime.ScreenW) - 1
	for i := range g.goombas {
		m := &g.goombas[i]
		m.box.X += m.dir * m.spd
		if m.box.X <= 1 || m.box.Right() >= maxX {
			m.dir = -m.dir
			m.box.X = core.ClampF(m.box.X, 1, maxX-m.box.W)
		}
		m.bob++
		if m.box.Intersects(g.player) {
			g.respawn()
		}
	}
}
