package frames

import (
	"errors"

	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/snowman"
)

const DefaultSubsteps = 10

// Synthesizer turns a world model and an ordered action list into a frame
// sequence. It holds no state between runs.
type Synthesizer struct {
	Substeps int
}

func NewSynthesizer(substeps int) Synthesizer {
	return Synthesizer{Substeps: substeps}
}

type Result struct {
	Frames   []Frame       `json:"frames"`
	Errors   []ActionError `json:"errors"`
	Summary  Summary       `json:"summary"`
	Substeps int           `json:"substeps"`
}

func (s Synthesizer) substeps() int {
	if s.Substeps <= 0 {
		return DefaultSubsteps
	}
	return s.Substeps
}

// Run replays actions against world. The first frame is the initial state at
// time 0; each action then contributes Substeps frames per motion phase. An
// action that cannot be applied yields Substeps error frames holding the state
// before it and leaves the state untouched. Run never fails as a whole.
func (s Synthesizer) Run(world snowman.WorldModel, actions []string) Result {
	k := s.substeps()
	st := newWorldState(world)
	res := Result{
		Frames:   make([]Frame, 0, 1+k*len(actions)),
		Errors:   []ActionError{},
		Substeps: k,
	}
	res.Frames = append(res.Frames, Frame{State: st.freeze(), Motion: Initial{}})

	for step, line := range actions {
		res.Summary.PlanLength++
		out, err := resolve(st, line)
		if err != nil {
			res.Errors = append(res.Errors, newActionError(step, line, err))
			res.Summary.ErrorCount++
			res.Frames = emit(res.Frames, step, k, Failed{}, st.freeze())
			continue
		}
		for _, ph := range out.phases {
			res.Frames = emit(res.Frames, step, k, ph.motion, ph.state)
		}
		if out.commit != nil {
			st.mutate(out.commit)
		}
		switch out.kind {
		case plan.KindMove:
			res.Summary.MoveCharacterCount++
		case plan.KindPushBall:
			res.Summary.MoveBallCount++
			if out.grew {
				res.Summary.BallGrowthCount++
			}
		case plan.KindGoal:
			res.Summary.GoalCount++
		default:
			res.Summary.StaticCount++
		}
	}

	res.Summary.finish(st.freeze())
	return res
}

func emit(frames []Frame, step, k int, motion Motion, state snowman.Snapshot) []Frame {
	for i := 0; i < k; i++ {
		alpha := 0.0
		if k > 1 {
			alpha = float64(i) / float64(k-1)
		}
		frames = append(frames, Frame{
			Time:   float64(step) + float64(i)/float64(k),
			Alpha:  alpha,
			State:  state,
			Motion: motion,
		})
	}
	return frames
}

func newActionError(index int, line string, cause error) ActionError {
	return ActionError{Index: index, Action: line, Message: cause.Error(), cause: cause}
}

// Synthesize is a convenience wrapper around a default Synthesizer.
func Synthesize(world snowman.WorldModel, actions []string) Result {
	return Synthesizer{}.Run(world, actions)
}

// IsActionError reports whether err came from an action replaced by error
// frames.
func IsActionError(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}
