package frames

import (
	"sort"

	"snowviz/internal/domain/snowman"
)

// Summary aggregates the counters of one synthesis pass and describes its
// final state.
type Summary struct {
	PlanLength         int               `json:"plan_length"`
	MoveCharacterCount int               `json:"move_character_count"`
	MoveBallCount      int               `json:"move_ball_count"`
	GoalCount          int               `json:"goal_count"`
	BallGrowthCount    int               `json:"ball_growth_count"`
	StaticCount        int               `json:"static_count"`
	ErrorCount         int               `json:"error_count"`
	TotalCost          int               `json:"total_cost"`
	FinalBallLocations map[string]string `json:"final_ball_locations"`
	FinalBallSizes     map[string]string `json:"final_ball_sizes"`
	BallsAtGoal        []string          `json:"balls_at_goal"`
	SnowmanComplete    bool              `json:"snowman_complete"`
}

func (s *Summary) finish(final snowman.Snapshot) {
	s.TotalCost = s.MoveCharacterCount + s.MoveBallCount + s.GoalCount
	s.FinalBallLocations = make(map[string]string, len(final.Balls))
	s.FinalBallSizes = make(map[string]string, len(final.Balls))
	s.BallsAtGoal = []string{}
	for id, pos := range final.Balls {
		s.FinalBallLocations[id] = pos.Location()
		s.FinalBallSizes[id] = final.BallSize[id].String()
		if pos == snowman.GoalCoordinate {
			s.BallsAtGoal = append(s.BallsAtGoal, id)
		}
	}
	sort.Strings(s.BallsAtGoal)
	s.SnowmanComplete = final.SnowmanComplete()
}
