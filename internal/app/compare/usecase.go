package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"snowviz/internal/app/load"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/problem"
)

var ErrInvalidRequest = errors.New("invalid compare request")

// MaxPlanActions bounds the action count of each compared plan.
const MaxPlanActions = 10000

// Request compares two plans. ProblemText is optional; without it only the
// action lists are diffed.
type Request struct {
	ProblemText string
	PlanA       string
	PlanB       string
}

type PlanReport struct {
	Actions     []string            `json:"actions"`
	ActionCount int                 `json:"action_count"`
	Search      *plan.SearchMetrics `json:"search,omitempty"`
	Summary     *frames.Summary     `json:"summary,omitempty"`
	ErrorCount  int                 `json:"error_count"`
}

type Response struct {
	A    PlanReport `json:"a"`
	B    PlanReport `json:"b"`
	Diff []DiffLine `json:"diff"`
	// SameLength is true when both plans have the same number of actions.
	SameLength bool `json:"same_length"`
}

type UseCase struct {
	Substeps int
}

func (u UseCase) Execute(_ context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.PlanA) == "" && strings.TrimSpace(req.PlanB) == "" {
		return Response{}, ErrInvalidRequest
	}
	a, err := u.report(req.ProblemText, req.PlanA)
	if err != nil {
		return Response{}, fmt.Errorf("plan a: %w", err)
	}
	b, err := u.report(req.ProblemText, req.PlanB)
	if err != nil {
		return Response{}, fmt.Errorf("plan b: %w", err)
	}
	return Response{
		A:          a,
		B:          b,
		Diff:       Diff(a.Actions, b.Actions),
		SameLength: a.ActionCount == b.ActionCount,
	}, nil
}

func (u UseCase) report(problemText, planText string) (PlanReport, error) {
	actions, search, err := load.ParsePlan(planText)
	if err != nil {
		return PlanReport{}, err
	}
	if len(actions) > MaxPlanActions {
		return PlanReport{}, fmt.Errorf("%w: %d actions exceeds limit %d", ErrInvalidRequest, len(actions), MaxPlanActions)
	}
	rep := PlanReport{Actions: actions, ActionCount: len(actions), Search: search}
	if strings.TrimSpace(problemText) == "" {
		return rep, nil
	}
	world, err := problem.Parse(problemText)
	if err != nil {
		return PlanReport{}, err
	}
	res := frames.NewSynthesizer(u.Substeps).Run(world, actions)
	rep.Summary = &res.Summary
	rep.ErrorCount = len(res.Errors)
	return rep, nil
}
