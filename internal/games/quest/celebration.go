package quest

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/quest/internal/core"
)

const (
	maxParticles  = 400
	sparkLife     = 26
	fireworkEvery = 45
	balloonEvery  = 30
	partyJumpTick = 28
)

type particle struct {
	x, y, vx, vy float64
	life         int
	color        core.Color
	balloon      bool
}

// celebration is the end-screen show of balloons and fireworks.
type celebration struct {
	running   bool
	ticks     int
	particles []particle
	rng       *rand.Rand
	w, h      int
}

func (c *celebration) start(rng *rand.Rand, w, h int) {
	*c = celebration{running: true, rng: rng, w: w, h: h}
	for i := 0; i < 6; i++ {
		c.spawnBalloon()
	}
	for i := 0; i < 3; i++ {
		c.spawnFirework()
	}
}

func (c *celebration) spawnBalloon() {
	c.add(particle{
		x:       c.rng.Float64() * float64(c.w),
		y:       float64(c.h) + c.rng.Float64()*4,
		vx:      (c.rng.Float64() - 0.5) * 0.1,
		vy:      -0.12 - c.rng.Float64()*0.15,
		color:   core.Palette[c.rng.Intn(len(core.Palette))],
		balloon: true,
	})
}

func (c *celebration) spawnFirework() {
	x := 6 + c.rng.Float64()*math.Max(1, float64(c.w-12))
	y := 2 + c.rng.Float64()*math.Max(1, float64(c.h)/2-2)
	count := 12 + c.rng.Intn(16)
	for i := 0; i < count; i++ {
		ang := c.rng.Float64() * 2 * math.Pi
		spd := 0.3 + c.rng.Float64()*0.5
		c.add(particle{
			x:     x,
			y:     y,
			vx:    math.Cos(ang) * spd,
			vy:    math.Sin(ang) * spd * 0.5, // cells are about twice as tall as wide
			color: core.Palette[c.rng.Intn(len(core.Palette))],
		})
	}
}

func (c *celebration) add(p particle) {
	if len(c.particles) < maxParticles {
		c.particles = append(c.particles, p)
	}
}

func (c *celebration) step() {
	if !c.running {
		return
	}
	c.ticks++
	if c.ticks%fireworkEvery == 0 {
		c.spawnFirework()
	}
	if c.ticks%balloonEvery == 0 {
		c.spawnBalloon()
	}

	kept := c.particles[:0]
	for _, p := range c.particles {
		p.x += p.vx
		p.y += p.vy
		p.life++
		if p.balloon {
			p.vy -= 0.002
			if p.y > -2 {
				kept = append(kept, p)
			}
			continue
		}
		p.vy += 0.02
		if p.life < sparkLife {
			kept = append(kept, p)
		}
	}
	c.particles = kept
}

func (c *celebration) render(dst *core.Screen) {
	for _, p := range c.particles {
		x, y := int(math.Round(p.x)), int(math.Round(p.y))
		if p.balloon {
			dst.SetColor(x, y, 'O', p.color)
			dst.SetColor(x, y+1, '│', core.ColorGray)
			continue
		}
		r := '*'
		switch {
		case p.life > sparkLife*2/3:
			r = '.'
		case p.life > sparkLife/3:
			r = '+'
		}
		dst.SetColor(x, y, r, p.color)
	}
}

// stepCelebration keeps the avatar jumping for joy while the show runs.
func (g *Game) stepCelebration() {
	g.party.step()
	if g.grounded && g.party.ticks%partyJumpTick == 0 {
		g.vy = g.cfg.Physics.JumpImpulse * 0.8
	}
	g.player.X += math.Sin(float64(g.party.ticks)*0.08) * 0.3
	maxX := float64(g.runtime.ScreenW) - g.player.W - 1
	g.player.X = core.ClampF(g.player.X, 1, math.Max(1, maxX))
	g.fall()
	g.landOnGround()
}
