package capture

import "time"

// Pacer switches the pipeline between an idle and an active frame rate.
// Motion makes it active; IdleTimeout without motion makes it idle again.
type Pacer struct {
	IdleInterval   time.Duration
	ActiveInterval time.Duration
	IdleTimeout    time.Duration

	active     bool
	lastMotion time.Time
	now        func() time.Time
}

// NewPacer creates a pacer that starts idle.
func NewPacer(idle, active, timeout time.Duration) *Pacer {
	return &Pacer{
		IdleInterval:   idle,
		ActiveInterval: active,
		IdleTimeout:    timeout,
		now:            time.Now,
	}
}

// Observe records whether the last frame had motion. It returns whether the
// pacer is active and whether that changed with this observation.
func (p *Pacer) Observe(motion bool) (active, changed bool) {
	now := p.now()
	if motion {
		p.lastMotion = now
		if !p.active {
			p.active = true
			return true, true
		}
		return true, false
	}
	if p.active && now.Sub(p.lastMotion) > p.IdleTimeout {
		p.active = false
		return false, true
	}
	return p.active, false
}

// Active reports the current mode.
func (p *Pacer) Active() bool {
	return p.active
}

// Interval returns the frame interval for the current mode.
func (p *Pacer) Interval() time.Duration {
	if p.active {
		return p.ActiveInterval
	}
	return p.IdleInterval
}

// FPS converts Interval to whole frames per second for the camera.
func (p *Pacer) FPS() int {
	iv := p.Interval()
	if iv <= 0 {
		return DefaultFPS
	}
	fps := int(time.Second / iv)
	if fps < 1 {
		fps = 1
	}
	return fps
}
