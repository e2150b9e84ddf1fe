package frames

import (
	"encoding/json"

	"snowviz/internal/domain/snowman"
)

type Kind string

const (
	KindInitial    Kind = "initial"
	KindMove       Kind = "move"
	KindMoveToBall Kind = "move_to_ball"
	KindMoveBall   Kind = "move_ball"
	KindGoal       Kind = "goal"
	KindStatic     Kind = "static"
	KindError      Kind = "error"
)

// Motion is the variant payload of a frame. The concrete types are Initial,
// Move, MoveToBall, MoveBall, Goal, Static and Failed.
type Motion interface {
	Kind() Kind
}

type Initial struct{}

// Move walks the character from Start to End.
type Move struct {
	Start     snowman.Coordinate
	End       snowman.Coordinate
	Direction snowman.Direction
}

// MoveToBall walks the character to the cell of the ball it is about to push.
type MoveToBall struct {
	Start     snowman.Coordinate
	End       snowman.Coordinate
	Direction snowman.Direction
}

type MoveBall struct {
	Ball      string
	Start     snowman.Coordinate
	End       snowman.Coordinate
	Direction snowman.Direction
}

type Goal struct{}

type Static struct{}

// Failed marks the frames substituted for an action that could not be applied.
type Failed struct{}

func (Initial) Kind() Kind    { return KindInitial }
func (Move) Kind() Kind       { return KindMove }
func (MoveToBall) Kind() Kind { return KindMoveToBall }
func (MoveBall) Kind() Kind   { return KindMoveBall }
func (Goal) Kind() Kind       { return KindGoal }
func (Static) Kind() Kind     { return KindStatic }
func (Failed) Kind() Kind     { return KindError }

// Frame is one immutable, time-indexed world snapshot. Frames of the same
// action share their State maps, so State must never be written to.
type Frame struct {
	Time   float64
	Alpha  float64
	State  snowman.Snapshot
	Motion Motion
}

func (f Frame) Kind() Kind {
	if f.Motion == nil {
		return KindInitial
	}
	return f.Motion.Kind()
}

type frameJSON struct {
	Type      Kind                `json:"type"`
	Time      float64             `json:"time"`
	Alpha     float64             `json:"alpha"`
	Snapshot  snowman.Snapshot    `json:"snapshot"`
	Start     *snowman.Coordinate `json:"start,omitempty"`
	End       *snowman.Coordinate `json:"end,omitempty"`
	Ball      string              `json:"ball,omitempty"`
	Direction snowman.Direction   `json:"direction,omitempty"`
}

func (f Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{Type: f.Kind(), Time: f.Time, Alpha: f.Alpha, Snapshot: f.State}
	switch m := f.Motion.(type) {
	case Move:
		out.Start, out.End, out.Direction = &m.Start, &m.End, m.Direction
	case MoveToBall:
		out.Start, out.End, out.Direction = &m.Start, &m.End, m.Direction
	case MoveBall:
		out.Start, out.End, out.Direction = &m.Start, &m.End, m.Direction
		out.Ball = m.Ball
	case nil, Initial, Goal, Static, Failed:
	}
	return json.Marshal(out)
}
