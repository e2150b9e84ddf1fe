package frames

import (
	"errors"
	"fmt"

	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/snowman"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrOutOfBounds   = errors.New("location outside grid")
)

// ActionError describes an action that was replaced by error frames. Index is
// the action's position in the plan.
type ActionError struct {
	Index   int    `json:"index"`
	Action  string `json:"action"`
	Message string `json:"message"`
	cause   error
}

func (e ActionError) Error() string {
	return fmt.Sprintf("%s at step %d (%q): %s", ErrInvalidAction.Error(), e.Index, e.Action, e.Message)
}

func (e ActionError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidAction}
	}
	return []error{ErrInvalidAction, e.cause}
}

type phase struct {
	motion Motion
	state  snowman.Snapshot
}

// outcome is what applying one action would do: the frame phases to emit and
// the mutation to commit once they have been emitted.
type outcome struct {
	kind   plan.Kind
	phases []phase
	commit func(*snowman.Snapshot)
	grew   bool
}

// resolve computes the outcome of an action against the state entering it.
// It never mutates st.
func resolve(st *worldState, line string) (outcome, error) {
	action, err := plan.Classify(line)
	if err != nil {
		return outcome{}, err
	}
	before := st.freeze()

	switch a := action.(type) {
	case plan.Move:
		start, err := locate(a.From, before.GridSize)
		if err != nil {
			return outcome{}, err
		}
		end, err := locate(a.To, before.GridSize)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			kind:   plan.KindMove,
			phases: []phase{{motion: Move{Start: start, End: end, Direction: snowman.ParseDirection(a.Direction)}, state: before}},
			commit: func(s *snowman.Snapshot) { s.Character = end },
		}, nil

	case plan.PushBall:
		from, err := locate(a.From, before.GridSize)
		if err != nil {
			return outcome{}, err
		}
		to, err := locate(a.To, before.GridSize)
		if err != nil {
			return outcome{}, err
		}
		dir := snowman.ParseDirection(a.Direction)
		atBall := before
		atBall.Character = from

		size, known := before.BallSize[a.Ball]
		if !known {
			size = snowman.BallSmall
		}
		grows := before.Snow[to]
		if grows {
			size = size.Grow()
		}
		return outcome{
			kind: plan.KindPushBall,
			phases: []phase{
				{motion: MoveToBall{Start: before.Character, End: from, Direction: dir}, state: before},
				{motion: MoveBall{Ball: a.Ball, Start: from, End: to, Direction: dir}, state: atBall},
			},
			commit: func(s *snowman.Snapshot) {
				s.Character = from
				s.Balls[a.Ball] = to
				s.BallSize[a.Ball] = size
				if grows {
					s.Snow[to] = false
				}
			},
			grew: grows,
		}, nil

	case plan.Goal:
		return outcome{kind: plan.KindGoal, phases: []phase{{motion: Goal{}, state: before}}}, nil

	default:
		return outcome{kind: plan.KindOther, phases: []phase{{motion: Static{}, state: before}}}, nil
	}
}

func locate(token string, gridSize int) (snowman.Coordinate, error) {
	c, err := snowman.ParseLocation(token)
	if err != nil {
		return snowman.Coordinate{}, err
	}
	if !c.InBounds(gridSize) {
		return snowman.Coordinate{}, fmt.Errorf("%w: %s in %dx%d grid", ErrOutOfBounds, token, gridSize, gridSize)
	}
	return c, nil
}
