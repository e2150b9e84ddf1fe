package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"snowviz/internal/adapter/repo/gorm/model"
	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Save(ctx context.Context, run ports.RunRecord) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	m := model.Run{
		ID:          run.ID,
		Name:        run.Name,
		Domain:      run.Domain,
		Numeric:     run.Numeric,
		GridSize:    int32(run.GridSize),
		Substeps:    int32(run.Substeps),
		ActionCount: int32(run.ActionCount),
		FrameCount:  int32(run.FrameCount),
		ErrorCount:  int32(run.ErrorCount),
		Summary:     summary,
		ProblemText: run.ProblemText,
		PlanText:    run.PlanText,
		CreatedAt:   run.CreatedAt,
	}
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r RunRepo) Get(ctx context.Context, id string) (ports.RunRecord, error) {
	var m model.Run
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RunRecord{}, ports.ErrNotFound
		}
		return ports.RunRecord{}, err
	}
	return toRunRecord(m)
}

func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	rows := []model.Run{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "created_at"}, Desc: true},
				{Column: clause.Column{Name: "id"}, Desc: true},
			},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRunRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toRunRecord(m model.Run) (ports.RunRecord, error) {
	var summary frames.Summary
	if len(m.Summary) > 0 {
		if err := json.Unmarshal(m.Summary, &summary); err != nil {
			return ports.RunRecord{}, fmt.Errorf("decode summary of run %s: %w", m.ID, err)
		}
	}
	return ports.RunRecord{
		ID:          m.ID,
		Name:        m.Name,
		Domain:      m.Domain,
		Numeric:     m.Numeric,
		GridSize:    int(m.GridSize),
		Substeps:    int(m.Substeps),
		ActionCount: int(m.ActionCount),
		FrameCount:  int(m.FrameCount),
		ErrorCount:  int(m.ErrorCount),
		Summary:     summary,
		ProblemText: m.ProblemText,
		PlanText:    m.PlanText,
		CreatedAt:   m.CreatedAt,
	}, nil
}

type ActionErrorRepo struct {
	db *gorm.DB
}

func NewActionErrorRepo(db *gorm.DB) ActionErrorRepo {
	return ActionErrorRepo{db: db}
}

func (r ActionErrorRepo) Append(ctx context.Context, runID string, errs []frames.ActionError) error {
	if len(errs) == 0 {
		return nil
	}
	rows := make([]model.RunActionError, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, model.RunActionError{
			RunID:     runID,
			StepIndex: int32(e.Index),
			Action:    e.Action,
			Message:   e.Message,
		})
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&rows).Error
}

func (r ActionErrorRepo) ListByRunID(ctx context.Context, runID string) ([]frames.ActionError, error) {
	rows := []model.RunActionError{}
	err := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.RunActionError{RunID: runID}).
		Order("step_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]frames.ActionError, 0, len(rows))
	for _, row := range rows {
		out = append(out, frames.ActionError{Index: int(row.StepIndex), Action: row.Action, Message: row.Message})
	}
	return out, nil
}
