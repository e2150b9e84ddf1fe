package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"snowviz/internal/app/load"
	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/playback"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const DefaultMaxFrames = 5000

type UseCase struct {
	Runs      ports.RunRepository
	Errors    ports.ActionErrorRepository
	MaxFrames int
	MaxSpeed  float64
}

// Execute re-synthesizes the run and returns a window of its frames.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.FromStep < 0 || (req.ToStep >= 0 && req.ToStep < req.FromStep) {
		return Response{}, ErrInvalidRequest
	}
	run, fs, err := u.Frames(ctx, req.RunID)
	if err != nil {
		return Response{}, err
	}
	k := run.Substeps
	stepCount := max(1, len(fs)/k)

	var actionErrs []frames.ActionError
	if u.Errors != nil {
		actionErrs, err = u.Errors.ListByRunID(ctx, run.ID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Response{}, err
		}
	}

	resp := Response{Run: run, Errors: actionErrs, StepCount: stepCount, FrameCount: len(fs)}
	if req.FromStep >= stepCount {
		resp.Frames = []IndexedFrame{}
		return resp, nil
	}
	start := req.FromStep * k
	end := len(fs)
	if req.ToStep >= 0 && req.ToStep < stepCount-1 {
		end = (req.ToStep + 1) * k
	}
	if limit := u.maxFrames(); end-start > limit {
		end = start + limit
		resp.Truncated = true
	}
	resp.Frames = make([]IndexedFrame, 0, end-start)
	for i := start; i < end; i++ {
		resp.Frames = append(resp.Frames, Annotate(fs[i], i, k))
	}
	return resp, nil
}

// Step seeks a player to the first frame of the step.
func (u UseCase) Step(ctx context.Context, req StepRequest) (StepResponse, error) {
	run, player, err := u.Player(ctx, req.RunID)
	if err != nil {
		return StepResponse{}, err
	}
	if err := player.Seek(req.Step); err != nil {
		return StepResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return StepResponse{
		Run:       run,
		StepCount: player.StepCount(),
		Frame:     Annotate(player.Current(), player.FrameIndex(), run.Substeps),
	}, nil
}

// Player returns a fresh player positioned at the first frame of the run.
func (u UseCase) Player(ctx context.Context, runID string) (ports.RunRecord, *playback.Player, error) {
	run, fs, err := u.Frames(ctx, runID)
	if err != nil {
		return ports.RunRecord{}, nil, err
	}
	p, err := playback.New(fs, run.Substeps, playback.WithMaxSpeed(u.MaxSpeed))
	if err != nil {
		return ports.RunRecord{}, nil, err
	}
	return run, p, nil
}

// Frames loads the stored run and synthesizes its full frame array.
func (u UseCase) Frames(ctx context.Context, runID string) (ports.RunRecord, []frames.Frame, error) {
	if strings.TrimSpace(runID) == "" {
		return ports.RunRecord{}, nil, ErrInvalidRequest
	}
	run, err := u.Runs.Get(ctx, runID)
	if err != nil {
		return ports.RunRecord{}, nil, err
	}
	out, err := load.Synthesize(run.ProblemText, run.PlanText, run.Substeps)
	if err != nil {
		return ports.RunRecord{}, nil, fmt.Errorf("replay run %s: %w", run.ID, err)
	}
	run.Substeps = out.Result.Substeps
	return run, out.Result.Frames, nil
}

func (u UseCase) maxFrames() int {
	if u.MaxFrames <= 0 {
		return DefaultMaxFrames
	}
	return u.MaxFrames
}
