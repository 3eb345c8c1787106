package renderer

import "github.com/go-gl/mathgl/mgl32"

// Pulse animates the red channel of a colour back and forth across [0, 1].
// The direction flips only once red has left the range, so it overshoots by
// up to one step before turning around.
type Pulse struct {
	color mgl32.Vec4
	step  float32
	inc   float32
}

// NewPulse starts at base and moves red by step per frame.
func NewPulse(base mgl32.Vec4, step float32) *Pulse {
	return &Pulse{color: base, step: step, inc: step}
}

// Color returns the colour for the current frame.
func (p *Pulse) Color() mgl32.Vec4 { return p.color }

// Advance moves to the next frame.
func (p *Pulse) Advance() {
	if p.color[0] > 1 {
		p.inc = -p.step
	} else if p.color[0] < 0 {
		p.inc = p.step
	}
	p.color[0] += p.inc
}
