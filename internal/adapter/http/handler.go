package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"snowviz/internal/adapter/archive"
	staticlibrary "snowviz/internal/adapter/library/static"
	"snowviz/internal/app/compare"
	"snowviz/internal/app/library"
	"snowviz/internal/app/load"
	"snowviz/internal/app/ports"
	"snowviz/internal/app/replay"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/plan"
	"snowviz/internal/domain/playback"
	"snowviz/internal/domain/problem"
	"snowviz/internal/domain/snowman"
)

const defaultRunListLimit = 50

type Handler struct {
	LoadUC    load.UseCase
	ReplayUC  replay.UseCase
	CompareUC compare.UseCase
	LibraryUC library.UseCase
	Runs      ports.RunRepository
	KPI       kpiSnapshotProvider
	Logger    *zap.Logger
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	runs := s.Group("/api/runs")
	runs.POST("", h.createRun)
	runs.POST("/library", h.createRunFromLibrary)
	runs.GET("", h.listRuns)
	runs.GET("/:id", h.getRun)
	runs.GET("/:id/frames", h.runFrames)
	runs.GET("/:id/steps/:step", h.runStep)
	runs.GET("/:id/archive", h.runArchive)

	s.POST("/api/compare", h.compare)
	s.GET("/api/library", h.libraryIndex)
	s.GET("/api/library/*filepath", h.libraryFile)
	s.GET("/ops/kpi", h.kpi)
}

type createRunRequest struct {
	Name    string `json:"name"`
	Problem string `json:"problem"`
	Plan    string `json:"plan"`
}

type libraryRunRequest struct {
	Name        string `json:"name"`
	ProblemPath string `json:"problem_path"`
	PlanPath    string `json:"plan_path"`
}

type compareRequest struct {
	Problem string `json:"problem"`
	PlanA   string `json:"plan_a"`
	PlanB   string `json:"plan_b"`
}

type runView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Domain      string         `json:"domain"`
	Numeric     bool           `json:"numeric"`
	GridSize    int            `json:"grid_size"`
	Substeps    int            `json:"substeps"`
	ActionCount int            `json:"action_count"`
	FrameCount  int            `json:"frame_count"`
	StepCount   int            `json:"step_count"`
	ErrorCount  int            `json:"error_count"`
	Summary     frames.Summary `json:"summary"`
	CreatedAt   time.Time      `json:"created_at"`
}

type runDetailView struct {
	Run         runView              `json:"run"`
	Errors      []frames.ActionError `json:"errors"`
	ProblemText string               `json:"problem_text"`
	PlanText    string               `json:"plan_text"`
}

type loadView struct {
	Run     runView              `json:"run"`
	Errors  []frames.ActionError `json:"errors"`
	World   snowman.WorldModel   `json:"world"`
	Actions []string             `json:"actions"`
	Search  *plan.SearchMetrics  `json:"search,omitempty"`
}

type framesView struct {
	Run        runView               `json:"run"`
	Errors     []frames.ActionError  `json:"errors"`
	StepCount  int                   `json:"step_count"`
	FrameCount int                   `json:"frame_count"`
	Truncated  bool                  `json:"truncated"`
	Frames     []replay.IndexedFrame `json:"frames"`
}

type stepView struct {
	RunID     string              `json:"run_id"`
	StepCount int                 `json:"step_count"`
	Frame     replay.IndexedFrame `json:"frame"`
}

func newRunView(r ports.RunRecord) runView {
	stepCount := 1
	if r.Substeps > 0 {
		stepCount = max(1, r.FrameCount/r.Substeps)
	}
	return runView{
		ID:          r.ID,
		Name:        r.Name,
		Domain:      r.Domain,
		Numeric:     r.Numeric,
		GridSize:    r.GridSize,
		Substeps:    r.Substeps,
		ActionCount: r.ActionCount,
		FrameCount:  r.FrameCount,
		StepCount:   stepCount,
		ErrorCount:  r.ErrorCount,
		Summary:     r.Summary,
		CreatedAt:   r.CreatedAt,
	}
}

func newLoadView(resp load.Response) loadView {
	return loadView{
		Run:     newRunView(resp.Run),
		Errors:  nonNilErrors(resp.Errors),
		World:   resp.Output.World,
		Actions: resp.Output.Actions,
		Search:  resp.Output.Search,
	}
}

func nonNilErrors(errs []frames.ActionError) []frames.ActionError {
	if errs == nil {
		return []frames.ActionError{}
	}
	return errs
}

func (h Handler) createRun(c context.Context, ctx *app.RequestContext) {
	var body createRunRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LoadUC.Execute(c, load.Request{Name: body.Name, ProblemText: body.Problem, PlanText: body.Plan})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, newLoadView(resp))
}

func (h Handler) createRunFromLibrary(c context.Context, ctx *app.RequestContext) {
	var body libraryRunRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LoadUC.ExecuteFromLibrary(c, load.LibraryRequest{
		Name:        body.Name,
		ProblemPath: body.ProblemPath,
		PlanPath:    body.PlanPath,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, newLoadView(resp))
}

func (h Handler) listRuns(c context.Context, ctx *app.RequestContext) {
	limit, err := queryInt(ctx, "limit", defaultRunListLimit)
	if err != nil || limit < 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid limit")
		return
	}
	runs, err := h.Runs.List(c, limit)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	out := make([]runView, 0, len(runs))
	for _, r := range runs {
		out = append(out, newRunView(r))
	}
	ctx.JSON(consts.StatusOK, map[string]any{"runs": out})
}

func (h Handler) getRun(c context.Context, ctx *app.RequestContext) {
	run, err := h.Runs.Get(c, ctx.Param("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	var errs []frames.ActionError
	if h.ReplayUC.Errors != nil {
		errs, err = h.ReplayUC.Errors.ListByRunID(c, run.ID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			h.fail(ctx, err)
			return
		}
	}
	ctx.JSON(consts.StatusOK, runDetailView{
		Run:         newRunView(run),
		Errors:      nonNilErrors(errs),
		ProblemText: run.ProblemText,
		PlanText:    run.PlanText,
	})
}

func (h Handler) runFrames(c context.Context, ctx *app.RequestContext) {
	from, err := queryInt(ctx, "from_step", 0)
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid from_step")
		return
	}
	to, err := queryInt(ctx, "to_step", -1)
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid to_step")
		return
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{RunID: ctx.Param("id"), FromStep: from, ToStep: to})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, framesView{
		Run:        newRunView(resp.Run),
		Errors:     nonNilErrors(resp.Errors),
		StepCount:  resp.StepCount,
		FrameCount: resp.FrameCount,
		Truncated:  resp.Truncated,
		Frames:     resp.Frames,
	})
}

func (h Handler) runStep(c context.Context, ctx *app.RequestContext) {
	step, err := strconv.Atoi(ctx.Param("step"))
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "invalid step")
		return
	}
	resp, err := h.ReplayUC.Step(c, replay.StepRequest{RunID: ctx.Param("id"), Step: step})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, stepView{RunID: resp.Run.ID, StepCount: resp.StepCount, Frame: resp.Frame})
}

func (h Handler) runArchive(c context.Context, ctx *app.RequestContext) {
	run, fs, err := h.ReplayUC.Frames(c, ctx.Param("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	var buf bytes.Buffer
	if _, err := archive.Encode(&buf, archive.Header{
		RunID:       run.ID,
		Name:        run.Name,
		Domain:      run.Domain,
		GridSize:    run.GridSize,
		Substeps:    run.Substeps,
		ActionCount: run.ActionCount,
	}, fs); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+run.ID+`.frames.jsonl.zst"`)
	ctx.Data(consts.StatusOK, "application/zstd", buf.Bytes())
}

func (h Handler) compare(c context.Context, ctx *app.RequestContext) {
	var body compareRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.CompareUC.Execute(c, compare.Request{ProblemText: body.Problem, PlanA: body.PlanA, PlanB: body.PlanB})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) libraryIndex(c context.Context, ctx *app.RequestContext) {
	entries, err := h.LibraryUC.Index(c)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if entries == nil {
		entries = []ports.LibraryEntry{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"entries": entries})
}

func (h Handler) libraryFile(c context.Context, ctx *app.RequestContext) {
	path := strings.TrimPrefix(ctx.Param("filepath"), "/")
	if path == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", "invalid filepath")
		return
	}

	b, err := h.LibraryUC.File(c, path)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; charset=utf-8", b)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func queryInt(ctx *app.RequestContext, key string, def int) (int, error) {
	raw := strings.TrimSpace(string(ctx.Query(key)))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (h Handler) fail(ctx *app.RequestContext, err error) {
	if status := writeError(ctx, err); status >= consts.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
	}
}

// writeError maps err onto a status and error body and returns the status.
func writeError(ctx *app.RequestContext, err error) int {
	if code := load.FailureCode(err); isParseCode(code) {
		writeErrorDetails(ctx, consts.StatusBadRequest, code, err.Error(), parseDetails(err))
		return consts.StatusBadRequest
	}
	status, code, message := consts.StatusInternalServerError, "internal_error", "internal error"
	switch {
	case errors.Is(err, staticlibrary.ErrInvalidLibraryPath):
		status, code, message = consts.StatusBadRequest, "invalid_filepath", err.Error()
	case errors.Is(err, load.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, compare.ErrInvalidRequest),
		errors.Is(err, playback.ErrStepRange),
		errors.Is(err, playback.ErrInvalidSpeed):
		status, code, message = consts.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, ports.ErrNotFound):
		status, code, message = consts.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, ports.ErrConflict):
		status, code, message = consts.StatusConflict, "conflict", err.Error()
	}
	writeErrorBody(ctx, status, code, message)
	return status
}

func isParseCode(code string) bool {
	switch code {
	case "empty_input", "empty_plan", "no_valid_actions", "missing_character",
		"invalid_ball_size", "malformed_location", "conflicting_character":
		return true
	}
	return false
}

func parseDetails(err error) map[string]any {
	details := map[string]any{}
	var declErr *problem.DeclarationError
	if errors.As(err, &declErr) && declErr != nil {
		if declErr.Declaration != "" {
			details["declaration"] = declErr.Declaration
		}
		details["offset"] = declErr.Offset
	}
	var locErr *snowman.LocationError
	if errors.As(err, &locErr) && locErr != nil {
		details["token"] = locErr.Token
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeErrorDetails(ctx *app.RequestContext, status int, code, message string, details map[string]any) {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	ctx.JSON(status, map[string]any{"error": body})
}
