package compare

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/problem"
)

const testProblem = `(:domain snowman_basic)
(character_at loc_1_1)
(ball_at b1 loc_2_2)
(snow loc_3_2)`

func TestDiff_AlignsOnCommonActions(t *testing.T) {
	a := []string{"move a b", "push b1 x y z", "goal"}
	b := []string{"move a b", "move b c", "push b1 x y z"}

	got := Diff(a, b)
	want := []DiffLine{
		{Op: DiffEqual, Action: "move a b", IndexA: 0, IndexB: 0},
		{Op: DiffInsert, Action: "move b c", IndexA: -1, IndexB: 1},
		{Op: DiffEqual, Action: "push b1 x y z", IndexA: 1, IndexB: 2},
		{Op: DiffDelete, Action: "goal", IndexA: 2, IndexB: -1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("diff mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestDiff_EmptySides(t *testing.T) {
	if got := Diff(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty diff, got %+v", got)
	}
	got := Diff(nil, []string{"goal"})
	if len(got) != 1 || got[0].Op != DiffInsert {
		t.Fatalf("expected single insert, got %+v", got)
	}
}

func TestUseCase_ComparesPlainAndPlannerPlans(t *testing.T) {
	planA := "move loc_1_1 loc_1_2\npush b1 loc_2_2 to loc_3_2 down\ngoal"
	planB := `found plan:
0.000: (move loc_1_1 loc_1_2)
1.000: (push b1 loc_2_2 to loc_3_2 down)
plan-length:2
expanded nodes:42`

	out, err := UseCase{Substeps: 2}.Execute(context.Background(), Request{ProblemText: testProblem, PlanA: planA, PlanB: planB})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.A.ActionCount != 3 || out.B.ActionCount != 2 || out.SameLength {
		t.Fatalf("unexpected counts a=%d b=%d", out.A.ActionCount, out.B.ActionCount)
	}
	if out.A.Search != nil {
		t.Fatalf("plain plan must not carry search metrics")
	}
	if out.B.Search == nil || out.B.Search.ExpandedNodes != 42 {
		t.Fatalf("unexpected search metrics: %+v", out.B.Search)
	}
	if out.A.Summary == nil || out.A.Summary.BallGrowthCount != 1 || out.A.Summary.TotalCost != 3 {
		t.Fatalf("unexpected summary a: %+v", out.A.Summary)
	}
	if out.B.Summary.FinalBallSizes["b1"] != "medium" {
		t.Fatalf("unexpected sizes b: %+v", out.B.Summary.FinalBallSizes)
	}
	last := out.Diff[len(out.Diff)-1]
	if last.Op != DiffDelete || last.Action != "goal" {
		t.Fatalf("expected trailing goal deletion, got %+v", last)
	}
}

func TestUseCase_WithoutProblemSkipsSynthesis(t *testing.T) {
	out, err := UseCase{}.Execute(context.Background(), Request{PlanA: "goal", PlanB: "goal"})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.A.Summary != nil || out.B.Summary != nil {
		t.Fatalf("summaries require a problem")
	}
	if len(out.Diff) != 1 || out.Diff[0].Op != DiffEqual {
		t.Fatalf("unexpected diff: %+v", out.Diff)
	}
}

func TestUseCase_Errors(t *testing.T) {
	uc := UseCase{}
	if _, err := uc.Execute(context.Background(), Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{PlanA: "goal", PlanB: "fly"}); !errors.Is(err, plan.ErrNoValidActions) {
		t.Fatalf("expected no valid actions, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), Request{ProblemText: "(snow loc_1_1)", PlanA: "goal", PlanB: "goal"}); !errors.Is(err, problem.ErrMissingCharacter) {
		t.Fatalf("expected missing character, got %v", err)
	}
}

func TestDiff_ReplacedRangeSplitsIntoDeleteAndInsert(t *testing.T) {
	got := Diff([]string{"move a b", "goal"}, []string{"move a c", "goal"})
	want := []DiffLine{
		{Op: DiffDelete, Action: "move a b", IndexA: 0, IndexB: -1},
		{Op: DiffInsert, Action: "move a c", IndexA: -1, IndexB: 0},
		{Op: DiffEqual, Action: "goal", IndexA: 1, IndexB: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("diff mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestDiff_LongPlansWithRepeatedActions(t *testing.T) {
	a := make([]string, 0, 1000)
	for i := 0; i < 500; i++ {
		a = append(a, "move loc_1_1 loc_1_2", "move loc_1_2 loc_1_1")
	}
	b := append(append([]string{}, a...), "goal")

	got := Diff(a, b)
	if len(got) != len(b) {
		t.Fatalf("expected %d diff lines, got %d", len(b), len(got))
	}
	for _, d := range got[:len(a)] {
		if d.Op != DiffEqual {
			t.Fatalf("expected shared prefix to be equal, got %+v", d)
		}
	}
	if last := got[len(got)-1]; last.Op != DiffInsert || last.IndexB != len(a) {
		t.Fatalf("expected trailing goal insert, got %+v", last)
	}
}

func TestUseCase_RejectsOversizedPlans(t *testing.T) {
	big := strings.Repeat("goal\n", MaxPlanActions+1)
	_, err := UseCase{}.Execute(context.Background(), Request{PlanA: big, PlanB: "goal"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
