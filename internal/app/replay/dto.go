package replay

import (
	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/snowman"
)

// Request selects the frames of steps FromStep..ToStep inclusive. A negative
// ToStep means the last step.
type Request struct {
	RunID    string
	FromStep int
	ToStep   int
}

type Response struct {
	Run        ports.RunRecord
	Errors     []frames.ActionError
	StepCount  int
	FrameCount int
	Frames     []IndexedFrame
	Truncated  bool
}

type StepRequest struct {
	RunID string
	Step  int
}

type StepResponse struct {
	Run       ports.RunRecord
	StepCount int
	Frame     IndexedFrame
}

// IndexedFrame is a frame together with its position and the goal-cell
// stack derived from it.
type IndexedFrame struct {
	FrameIndex      int                   `json:"frame_index"`
	StepIndex       int                   `json:"step_index"`
	Frame           frames.Frame          `json:"frame"`
	GoalStack       []snowman.StackedBall `json:"goal_stack"`
	SnowmanComplete bool                  `json:"snowman_complete"`
}

func Annotate(f frames.Frame, index, substeps int) IndexedFrame {
	return IndexedFrame{
		FrameIndex:      index,
		StepIndex:       index / substeps,
		Frame:           f,
		GoalStack:       f.State.GoalStack(),
		SnowmanComplete: f.State.SnowmanComplete(),
	}
}
