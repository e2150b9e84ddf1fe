package snowman

import "sort"

// GoalCoordinate is the cell where the snowman has to be assembled.
var GoalCoordinate = Coordinate{Row: 2, Col: 0}

type StackedBall struct {
	Ball string   `json:"ball"`
	Size BallSize `json:"size"`
	// Offset is the height of the ball's lowest point above the ground.
	Offset float64 `json:"offset"`
}

// Center is the height of the ball's center.
func (b StackedBall) Center() float64 {
	return b.Offset + b.Size.Radius()
}

// GoalStack orders the balls on the goal cell from the bottom (largest) up.
// Balls of equal size are ordered by id.
func GoalStack(balls map[string]Coordinate, sizes map[string]BallSize) []StackedBall {
	out := make([]StackedBall, 0, 3)
	for id, pos := range balls {
		if pos != GoalCoordinate {
			continue
		}
		out = append(out, StackedBall{Ball: id, Size: sizes[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Ball < out[j].Ball
	})
	height := 0.0
	for i := range out {
		out[i].Offset = height
		height += 2 * out[i].Size.Radius()
	}
	return out
}

// SnowmanComplete holds when exactly one small, one medium and one large ball
// share the goal cell.
func SnowmanComplete(balls map[string]Coordinate, sizes map[string]BallSize) bool {
	stack := GoalStack(balls, sizes)
	if len(stack) != 3 {
		return false
	}
	seen := [3]bool{}
	for _, b := range stack {
		if !b.Size.Valid() || seen[b.Size] {
			return false
		}
		seen[b.Size] = true
	}
	return true
}

func (s Snapshot) GoalStack() []StackedBall {
	return GoalStack(s.Balls, s.BallSize)
}

func (s Snapshot) SnowmanComplete() bool {
	return SnowmanComplete(s.Balls, s.BallSize)
}
