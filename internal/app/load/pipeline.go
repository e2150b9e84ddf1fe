package load

import (
	"errors"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/problem"
	"snowviz/internal/domain/snowman"
)

// ParsePlan accepts either a plain plan or a planner log containing a
// "found plan:" block.
func ParsePlan(text string) ([]string, *plan.SearchMetrics, error) {
	if plan.IsPlannerOutput(text) {
		actions, metrics, err := plan.ParsePlannerOutput(text)
		if err != nil {
			return nil, nil, err
		}
		return actions, &metrics, nil
	}
	actions, err := plan.Parse(text)
	if err != nil {
		return nil, nil, err
	}
	return actions, nil, nil
}

// Synthesize parses both texts and runs the synthesizer. Parse failures are
// fatal; per-action failures are reported in the result.
func Synthesize(problemText, planText string, substeps int) (Output, error) {
	world, err := problem.Parse(problemText)
	if err != nil {
		return Output{}, err
	}
	actions, search, err := ParsePlan(planText)
	if err != nil {
		return Output{}, err
	}
	return Output{
		World:   world,
		Actions: actions,
		Result:  frames.NewSynthesizer(substeps).Run(world, actions),
		Search:  search,
	}, nil
}

// FailureCode maps a load error onto a stable snake_case code.
func FailureCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, problem.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, plan.ErrEmptyPlan):
		return "empty_plan"
	case errors.Is(err, plan.ErrNoValidActions):
		return "no_valid_actions"
	case errors.Is(err, problem.ErrMissingCharacter):
		return "missing_character"
	case errors.Is(err, problem.ErrInvalidBallSize):
		return "invalid_ball_size"
	case errors.Is(err, snowman.ErrMalformedLocation):
		return "malformed_location"
	case errors.Is(err, problem.ErrConflictingCharacter):
		return "conflicting_character"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "bad_request"
	default:
		return "internal_error"
	}
}
