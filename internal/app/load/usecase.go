package load

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
)

var ErrInvalidRequest = errors.New("invalid load request")

type UseCase struct {
	TxManager ports.TxManager
	Runs      ports.RunRepository
	Errors    ports.ActionErrorRepository
	Library   ports.LibraryProvider
	Metrics   ports.LoadMetrics
	Logger    *zap.Logger
	Substeps  int
	Now       func() time.Time
	NewID     func() string
}

// Execute parses, synthesizes and stores one run. A new load never reuses
// anything from a previous one.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	out, err := Synthesize(req.ProblemText, req.PlanText, u.Substeps)
	if err != nil {
		u.recordFailure(err)
		u.logger().Info("load rejected", zap.String("code", FailureCode(err)), zap.Error(err))
		return Response{}, err
	}

	res := out.Result
	run := ports.RunRecord{
		ID:          u.newID(),
		Name:        strings.TrimSpace(req.Name),
		Domain:      out.World.Domain,
		Numeric:     out.World.Numeric(),
		GridSize:    out.World.GridSize,
		Substeps:    res.Substeps,
		ActionCount: len(out.Actions),
		FrameCount:  len(res.Frames),
		ErrorCount:  len(res.Errors),
		Summary:     res.Summary,
		ProblemText: req.ProblemText,
		PlanText:    req.PlanText,
		CreatedAt:   u.now(),
	}
	if run.Name == "" {
		run.Name = run.ID
	}

	if err := u.save(ctx, run, res.Errors); err != nil {
		u.recordFailure(err)
		return Response{}, fmt.Errorf("save run: %w", err)
	}

	log := u.logger().With(zap.String("run_id", run.ID))
	for _, ae := range res.Errors {
		log.Warn("action replaced by error frames",
			zap.Int("index", ae.Index),
			zap.String("action", ae.Action),
			zap.String("message", ae.Message),
		)
	}
	log.Info("run loaded",
		zap.String("domain", run.Domain),
		zap.Int("actions", run.ActionCount),
		zap.Int("frames", run.FrameCount),
		zap.Int("action_errors", run.ErrorCount),
	)
	if u.Metrics != nil {
		u.Metrics.RecordLoad(run.Domain, run.FrameCount)
		if run.ErrorCount > 0 {
			u.Metrics.RecordActionErrors(run.ErrorCount)
		}
	}
	return Response{Run: run, Errors: res.Errors, Output: out}, nil
}

// ExecuteFromLibrary reads both files concurrently and loads them once both
// reads have completed.
func (u UseCase) ExecuteFromLibrary(ctx context.Context, req LibraryRequest) (Response, error) {
	if u.Library == nil || strings.TrimSpace(req.ProblemPath) == "" || strings.TrimSpace(req.PlanPath) == "" {
		u.recordFailure(ErrInvalidRequest)
		return Response{}, ErrInvalidRequest
	}

	var problemText, planText []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := u.Library.File(gctx, req.ProblemPath)
		if err != nil {
			return fmt.Errorf("read problem %s: %w", req.ProblemPath, err)
		}
		problemText = b
		return nil
	})
	g.Go(func() error {
		b, err := u.Library.File(gctx, req.PlanPath)
		if err != nil {
			return fmt.Errorf("read plan %s: %w", req.PlanPath, err)
		}
		planText = b
		return nil
	})
	if err := g.Wait(); err != nil {
		u.recordFailure(err)
		return Response{}, err
	}

	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(path.Base(req.PlanPath), path.Ext(req.PlanPath))
	}
	return u.Execute(ctx, Request{Name: name, ProblemText: string(problemText), PlanText: string(planText)})
}

func (u UseCase) save(ctx context.Context, run ports.RunRecord, errs []frames.ActionError) error {
	write := func(ctx context.Context) error {
		if err := u.Runs.Save(ctx, run); err != nil {
			return err
		}
		if u.Errors == nil || len(errs) == 0 {
			return nil
		}
		return u.Errors.Append(ctx, run.ID, errs)
	}
	if u.TxManager == nil {
		return write(ctx)
	}
	return u.TxManager.RunInTx(ctx, write)
}

func (u UseCase) recordFailure(err error) {
	if u.Metrics != nil {
		u.Metrics.RecordFailure(FailureCode(err))
	}
}

func (u UseCase) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now().UTC()
	}
	return u.Now()
}

func (u UseCase) newID() string {
	if u.NewID == nil {
		return uuid.NewString()
	}
	return u.NewID()
}
