package load

import (
	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/snowman"
)

type Request struct {
	Name        string
	ProblemText string
	PlanText    string
}

// LibraryRequest loads a run from two files of the plan library.
type LibraryRequest struct {
	Name        string
	ProblemPath string
	PlanPath    string
}

type Response struct {
	Run    ports.RunRecord
	Errors []frames.ActionError
	Output Output
}

// Output is everything one pass over a problem/plan pair produces.
type Output struct {
	World   snowman.WorldModel
	Actions []string
	Result  frames.Result
	// Search is set when the plan text was raw planner output.
	Search *plan.SearchMetrics
}
