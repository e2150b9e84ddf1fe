package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
)

const runColumns = `id,name,domain,numeric,grid_size,substeps,action_count,frame_count,error_count,summary,problem_text,plan_text,created_at`

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Save(ctx context.Context, run ports.RunRecord) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO runs(`+runColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Name, run.Domain, run.Numeric, run.GridSize, run.Substeps,
		run.ActionCount, run.FrameCount, run.ErrorCount, string(summary),
		run.ProblemText, run.PlanText, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r RunRepo) Get(ctx context.Context, id string) (ports.RunRecord, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	return rec, err
}

func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ports.RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (ports.RunRecord, error) {
	var (
		rec     ports.RunRecord
		summary string
		created int64
	)
	err := s.Scan(&rec.ID, &rec.Name, &rec.Domain, &rec.Numeric, &rec.GridSize, &rec.Substeps,
		&rec.ActionCount, &rec.FrameCount, &rec.ErrorCount, &summary,
		&rec.ProblemText, &rec.PlanText, &created)
	if err != nil {
		return ports.RunRecord{}, err
	}
	if summary != "" {
		if err := json.Unmarshal([]byte(summary), &rec.Summary); err != nil {
			return ports.RunRecord{}, fmt.Errorf("decode summary of run %s: %w", rec.ID, err)
		}
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

type ActionErrorRepo struct {
	db *DB
}

func NewActionErrorRepo(db *DB) ActionErrorRepo {
	return ActionErrorRepo{db: db}
}

func (r ActionErrorRepo) Append(ctx context.Context, runID string, errs []frames.ActionError) error {
	q := r.db.conn(ctx)
	for _, e := range errs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO run_action_errors(run_id,step_index,action,message) VALUES(?,?,?,?)`,
			runID, e.Index, e.Action, e.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r ActionErrorRepo) ListByRunID(ctx context.Context, runID string) ([]frames.ActionError, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT step_index,action,message FROM run_action_errors WHERE run_id=? ORDER BY step_index ASC, id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []frames.ActionError{}
	for rows.Next() {
		var e frames.ActionError
		if err := rows.Scan(&e.Index, &e.Action, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
