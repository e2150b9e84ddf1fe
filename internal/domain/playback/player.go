package playback

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"snowviz/internal/domain/frames"
)

var (
	ErrNoFrames     = errors.New("no frames to play")
	ErrStepRange    = errors.New("step out of range")
	ErrInvalidSpeed = errors.New("invalid playback speed")
)

const (
	DefaultSpeed = 1.0
	MaxSpeed     = 10.0
)

// Player is a cursor over an immutable frame array. The cursor is fractional
// so speeds below one still advance; FrameIndex floors it.
type Player struct {
	mu       sync.RWMutex
	frames   []frames.Frame
	substeps int
	maxSpeed float64
	cursor   float64
	speed    float64
	playing  bool
}

type Option func(*Player)

func WithMaxSpeed(max float64) Option {
	return func(p *Player) {
		if max > 0 {
			p.maxSpeed = max
		}
	}
}

func New(fs []frames.Frame, substeps int, opts ...Option) (*Player, error) {
	if len(fs) == 0 {
		return nil, ErrNoFrames
	}
	if substeps <= 0 {
		substeps = frames.DefaultSubsteps
	}
	p := &Player{frames: fs, substeps: substeps, speed: DefaultSpeed, maxSpeed: MaxSpeed}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// State is a consistent view of the cursor.
type State struct {
	FrameIndex  int     `json:"frame_index"`
	StepIndex   int     `json:"step_index"`
	StepCount   int     `json:"step_count"`
	ActionIndex int     `json:"action_index"`
	FrameCount  int     `json:"frame_count"`
	Playing     bool    `json:"playing"`
	Speed       float64 `json:"speed"`
}

func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx := p.index()
	return State{
		FrameIndex:  idx,
		StepIndex:   idx / p.substeps,
		StepCount:   p.stepCount(),
		ActionIndex: int(p.frames[idx].Time),
		FrameCount:  len(p.frames),
		Playing:     p.playing,
		Speed:       p.speed,
	}
}

func (p *Player) Current() frames.Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frames[p.index()]
}

func (p *Player) FrameIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index()
}

// StepIndex is floor(frameIndex / substeps), the scrubber position.
func (p *Player) StepIndex() int {
	return p.FrameIndex() / p.substeps
}

func (p *Player) StepCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stepCount()
}

func (p *Player) Playing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing
}

func (p *Player) Speed() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.speed
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index() >= len(p.frames)-1 {
		p.cursor = 0
	}
	p.playing = true
}

func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *Player) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || speed <= 0 || speed > p.maxSpeed {
		return fmt.Errorf("%w: %v (max %v)", ErrInvalidSpeed, speed, p.maxSpeed)
	}
	p.mu.Lock()
	p.speed = speed
	p.mu.Unlock()
	return nil
}

// Seek jumps to the first frame of step.
func (p *Player) Seek(step int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if step < 0 || step >= p.stepCount() {
		return fmt.Errorf("%w: %d of %d", ErrStepRange, step, p.stepCount())
	}
	p.cursor = float64(step * p.substeps)
	return nil
}

func (p *Player) NextStep() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.index() >= len(p.frames)-p.substeps {
		return false
	}
	p.cursor = float64(min(p.index()+p.substeps, len(p.frames)-1))
	return true
}

func (p *Player) PrevStep() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.index() < p.substeps {
		return false
	}
	p.cursor = float64(p.index() - p.substeps)
	return true
}

// Tick advances a playing cursor by the speed multiplier, clamping at the
// last frame where playback stops. It reports whether the frame changed.
func (p *Player) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false
	}
	before := p.index()
	last := float64(len(p.frames) - 1)
	p.cursor += p.speed
	if p.cursor >= last {
		p.cursor = last
		p.playing = false
	}
	return p.index() != before
}

func (p *Player) index() int {
	return int(p.cursor)
}

func (p *Player) stepCount() int {
	return max(1, len(p.frames)/p.substeps)
}
