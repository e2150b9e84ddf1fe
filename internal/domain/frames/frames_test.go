package frames

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/snowman"
)

func scenarioWorld() snowman.WorldModel {
	snow := map[snowman.Coordinate]bool{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			snow[snowman.Coordinate{Row: r, Col: c}] = false
		}
	}
	snow[snowman.Coordinate{Row: 0, Col: 0}] = true
	return snowman.WorldModel{
		GridSize:  3,
		Snow:      snow,
		Balls:     map[string]snowman.Coordinate{"b1": {Row: 1, Col: 0}},
		BallSize:  map[string]snowman.BallSize{"b1": snowman.BallSmall},
		Character: snowman.Coordinate{Row: 1, Col: 1},
		Domain:    "snowman_basic_adl",
	}
}

func TestRun_PushOntoSnowGrowsBall(t *testing.T) {
	const k = 10
	res := NewSynthesizer(k).Run(scenarioWorld(), []string{"push b1 loc_2_1 to loc_1_1"})

	require.Len(t, res.Frames, 1+2*k)
	assert.Empty(t, res.Errors)

	initial := res.Frames[0]
	assert.Equal(t, KindInitial, initial.Kind())
	assert.Equal(t, 0.0, initial.Time)
	assert.Equal(t, 0.0, initial.Alpha)

	toBall := res.Frames[1]
	require.Equal(t, KindMoveToBall, toBall.Kind())
	m := toBall.Motion.(MoveToBall)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 1}, m.Start)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 0}, m.End)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 1}, toBall.State.Character)

	rolling := res.Frames[1+k]
	require.Equal(t, KindMoveBall, rolling.Kind())
	mb := rolling.Motion.(MoveBall)
	assert.Equal(t, "b1", mb.Ball)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 0}, mb.Start)
	assert.Equal(t, snowman.Coordinate{Row: 0, Col: 0}, mb.End)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 0}, rolling.State.Character)
	assert.Equal(t, snowman.BallSmall, rolling.State.BallSize["b1"])
	assert.True(t, rolling.State.Snow[snowman.Coordinate{Row: 0, Col: 0}])

	sum := res.Summary
	assert.Equal(t, 1, sum.PlanLength)
	assert.Equal(t, 1, sum.MoveBallCount)
	assert.Equal(t, 1, sum.BallGrowthCount)
	assert.Equal(t, 1, sum.TotalCost)
	assert.Equal(t, "loc_1_1", sum.FinalBallLocations["b1"])
	assert.Equal(t, "medium", sum.FinalBallSizes["b1"])
	assert.False(t, sum.SnowmanComplete)
}

func TestRun_GrowthCommittedAfterEmission(t *testing.T) {
	res := NewSynthesizer(2).Run(scenarioWorld(), []string{
		"push b1 loc_2_1 to loc_1_1",
		"goal",
	})
	require.Len(t, res.Frames, 1+2*2+2)

	after := res.Frames[len(res.Frames)-1].State
	assert.Equal(t, snowman.BallMedium, after.BallSize["b1"])
	assert.Equal(t, snowman.Coordinate{Row: 0, Col: 0}, after.Balls["b1"])
	assert.False(t, after.Snow[snowman.Coordinate{Row: 0, Col: 0}])
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 0}, after.Character)

	// frames emitted before the commit keep the pre-push world
	assert.Equal(t, snowman.BallSmall, res.Frames[0].State.BallSize["b1"])
	assert.True(t, res.Frames[0].State.Snow[snowman.Coordinate{Row: 0, Col: 0}])
}

func TestRun_SizeCapsAtLarge(t *testing.T) {
	world := scenarioWorld()
	world.BallSize["b1"] = snowman.BallLarge
	res := NewSynthesizer(1).Run(world, []string{"push b1 loc_2_1 to loc_1_1"})

	assert.Equal(t, "large", res.Summary.FinalBallSizes["b1"])
}

func TestRun_MoveTimingAndAlpha(t *testing.T) {
	const k = 4
	actions := []string{"move loc_2_2 loc_2_3 right", "move loc_2_3 loc_3_3 down"}
	res := NewSynthesizer(k).Run(scenarioWorld(), actions)

	require.Len(t, res.Frames, 1+k*len(actions))
	for a := range actions {
		prev := -1.0
		for i := 0; i < k; i++ {
			f := res.Frames[1+a*k+i]
			assert.InDelta(t, float64(a)+float64(i)/k, f.Time, 1e-9)
			assert.GreaterOrEqual(t, f.Alpha, prev)
			prev = f.Alpha
		}
		assert.Equal(t, 0.0, res.Frames[1+a*k].Alpha)
		assert.Equal(t, 1.0, res.Frames[a*k+k].Alpha)
	}

	first := res.Frames[1].Motion.(Move)
	assert.Equal(t, snowman.DirectionRight, first.Direction)
	second := res.Frames[1+k].Motion.(Move)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 2}, second.Start)
	assert.Equal(t, snowman.Coordinate{Row: 1, Col: 2}, res.Frames[1+k].State.Character)
	assert.Equal(t, 2, res.Summary.MoveCharacterCount)
}

func TestRun_SingleSubstepAlphaIsZero(t *testing.T) {
	res := NewSynthesizer(1).Run(scenarioWorld(), []string{"move loc_2_2 loc_2_3"})

	require.Len(t, res.Frames, 2)
	assert.Equal(t, 0.0, res.Frames[1].Alpha)
	assert.Equal(t, 0.0, res.Frames[1].Time)
	assert.Equal(t, snowman.DirectionNone, res.Frames[1].Motion.(Move).Direction)
}

func TestRun_DefaultSubsteps(t *testing.T) {
	res := Synthesize(scenarioWorld(), []string{"goal"})

	assert.Equal(t, DefaultSubsteps, res.Substeps)
	assert.Len(t, res.Frames, 1+DefaultSubsteps)
}

func TestRun_MalformedActionRecovers(t *testing.T) {
	const k = 3
	actions := []string{
		"move loc_2_2 loc_2_3",
		"move loc_1_1",
		"move loc_2_3 loc_9_9",
		"move loc_2_3 loc_x_1",
		"move loc_2_3 loc_1_3",
	}
	res := NewSynthesizer(k).Run(scenarioWorld(), actions)

	require.Len(t, res.Frames, 1+k*len(actions))
	require.Len(t, res.Errors, 3)
	assert.Equal(t, 3, res.Summary.ErrorCount)
	assert.Equal(t, 5, res.Summary.PlanLength)

	wantIndex := []int{1, 2, 3}
	for i, e := range res.Errors {
		assert.Equal(t, wantIndex[i], e.Index)
		assert.Equal(t, actions[wantIndex[i]], e.Action)
		assert.True(t, errors.Is(e, ErrInvalidAction))
		assert.True(t, IsActionError(e))
	}
	assert.True(t, errors.Is(res.Errors[0], plan.ErrInsufficientTokens))
	assert.True(t, errors.Is(res.Errors[1], ErrOutOfBounds))
	assert.True(t, errors.Is(res.Errors[2], snowman.ErrMalformedLocation))

	entering := res.Frames[k].State.Clone()
	entering.Character = snowman.Coordinate{Row: 1, Col: 2}
	for i := 0; i < k; i++ {
		f := res.Frames[1+k+i]
		assert.Equal(t, KindError, f.Kind())
		assert.Equal(t, entering, f.State)
		assert.InDelta(t, 1+float64(i)/k, f.Time, 1e-9)
	}

	last := res.Frames[1+4*k]
	assert.Equal(t, KindMove, last.Kind())
	assert.InDelta(t, 4.0, last.Time, 1e-9)
	assert.Equal(t, "loc_1_3", last.Motion.(Move).End.Location())
	assert.Equal(t, "loc_2_3", last.State.Character.Location())
}

func TestRun_GoalAndStaticKeepState(t *testing.T) {
	res := NewSynthesizer(2).Run(scenarioWorld(), []string{"goal", "move_character_loop"})

	require.Len(t, res.Frames, 5)
	assert.Equal(t, KindGoal, res.Frames[1].Kind())
	assert.Equal(t, KindStatic, res.Frames[3].Kind())
	for _, f := range res.Frames[1:] {
		assert.Equal(t, res.Frames[0].State, f.State)
	}
	assert.Equal(t, 1, res.Summary.GoalCount)
	assert.Equal(t, 1, res.Summary.StaticCount)
	assert.Equal(t, 1, res.Summary.TotalCost)
}

func TestRun_Deterministic(t *testing.T) {
	actions := []string{
		"move loc_2_2 loc_2_3 left",
		"push b1 loc_2_1 to loc_1_1 up",
		"move loc_1_1",
		"goal",
	}
	a := NewSynthesizer(5).Run(scenarioWorld(), actions)
	b := NewSynthesizer(5).Run(scenarioWorld(), actions)

	assert.True(t, reflect.DeepEqual(a, b))
}

func TestRun_DoesNotMutateWorld(t *testing.T) {
	world := scenarioWorld()
	NewSynthesizer(2).Run(world, []string{"push b1 loc_2_1 to loc_1_1"})

	assert.Equal(t, scenarioWorld(), world)
}

func TestRun_SnowmanCompleteSummary(t *testing.T) {
	world := scenarioWorld()
	world.Balls = map[string]snowman.Coordinate{
		"b0": {Row: 2, Col: 0},
		"b1": {Row: 2, Col: 0},
		"b2": {Row: 2, Col: 1},
	}
	world.BallSize = map[string]snowman.BallSize{
		"b0": snowman.BallLarge,
		"b1": snowman.BallMedium,
		"b2": snowman.BallSmall,
	}
	res := NewSynthesizer(1).Run(world, []string{"push b2 loc_3_2 to loc_3_1 left"})

	assert.True(t, res.Summary.SnowmanComplete)
	assert.Equal(t, []string{"b0", "b1", "b2"}, res.Summary.BallsAtGoal)
}

func TestFrame_MarshalJSON(t *testing.T) {
	res := NewSynthesizer(2).Run(scenarioWorld(), []string{"push b1 loc_2_1 to loc_1_1 up", "goal"})

	raw, err := json.Marshal(res.Frames[3])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "move_ball", got["type"])
	assert.Equal(t, "b1", got["ball"])
	assert.Equal(t, "up", got["direction"])
	assert.Equal(t, "1,0", got["start"])
	assert.Equal(t, "0,0", got["end"])
	snap := got["snapshot"].(map[string]any)
	assert.Equal(t, float64(3), snap["grid_size"])
	assert.Equal(t, "1,0", snap["character"])

	raw, err = json.Marshal(res.Frames[len(res.Frames)-1])
	require.NoError(t, err)
	got = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "goal", got["type"])
	assert.NotContains(t, got, "start")
	assert.NotContains(t, got, "ball")
	assert.NotContains(t, got, "direction")
}
