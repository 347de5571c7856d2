package attendancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"timekeeper/internal/domain/attendance"
	"timekeeper/internal/domain/audit"
	"timekeeper/internal/domain/auth"
	"timekeeper/internal/domain/holidays"
	"timekeeper/internal/domain/worktime"
	"timekeeper/internal/platform/jobs"
	"timekeeper/internal/requestctx"
	"timekeeper/internal/transport/http/api"
	"timekeeper/internal/transport/http/middleware"
	"timekeeper/internal/transport/http/shared"
)

const maxPunchesPerRequest = 5000

type Service interface {
	ImportPunches(ctx context.Context, tenantID string, punches []attendance.RawPunch) (int, error)
	RunCorrection(ctx context.Context, tenantID string, req attendance.CorrectionRequest) (attendance.CorrectionReport, error)
	ListRecords(ctx context.Context, tenantID, view string, filter attendance.RecordFilter) ([]attendance.Record, error)
	SaveOverrides(ctx context.Context, tenantID string, punches []attendance.RawPunch) ([]attendance.Record, error)
	UpdateRecord(ctx context.Context, tenantID, stream, id string, edit attendance.RecordEdit) (attendance.Record, []attendance.FieldChange, error)
	RecordHistory(ctx context.Context, tenantID, id string, limit, offset int) ([]audit.Event, error)
	Summaries(ctx context.Context, tenantID, period string, filter attendance.RecordFilter) ([]attendance.Summary, error)
	ExportSummaryPDF(ctx context.Context, tenantID, period string, filter attendance.RecordFilter, w io.Writer) error
	ListPolicies(ctx context.Context, tenantID string) ([]worktime.PolicyInput, error)
	CreatePolicy(ctx context.Context, tenantID string, in worktime.PolicyInput) (string, error)
	ListHolidays(ctx context.Context, tenantID string) ([]holidays.Holiday, error)
	CreateHoliday(ctx context.Context, tenantID string, h holidays.Holiday) (string, error)
	DeleteHoliday(ctx context.Context, tenantID, id string) error
}

type JobRunner interface {
	Enqueue(ctx context.Context, jobType, tenantID string, run jobs.RunFunc) (string, error)
	RunNow(ctx context.Context, jobType, tenantID string, run jobs.RunFunc) (any, error)
	Get(ctx context.Context, tenantID, id string) (jobs.Run, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Jobs        JobRunner
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service Service, perms middleware.PermissionStore, jobsSvc JobRunner, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Jobs: jobsSvc, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)
	write := middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)
	correct := middleware.RequirePermission(auth.PermAttendanceCorrect, h.Perms)
	settings := middleware.RequirePermission(auth.PermSettingsWrite, h.Perms)

	r.Route("/attendance", func(r chi.Router) {
		r.With(read).Get("/policies", h.handleListPolicies)
		r.With(settings).Post("/policies", h.handleCreatePolicy)
		r.With(read).Get("/holidays", h.handleListHolidays)
		r.With(settings).Post("/holidays", h.handleCreateHoliday)
		r.With(settings).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)

		r.With(write, middleware.Idempotent(h.Idempotency, "attendance.punches")).Post("/punches", h.handleImportPunches)
		r.With(correct, middleware.Idempotent(h.Idempotency, "attendance.corrections")).Post("/corrections", h.handleRunCorrection)
		r.With(read).Get("/corrections/jobs/{jobID}", h.handleGetCorrectionJob)

		r.With(read).Get("/records", h.handleListRecords)
		r.With(write).Patch("/records/{recordID}", h.handleUpdateRecord)
		r.With(read).Get("/records/{recordID}/changes", h.handleRecordChanges)
		r.With(write).Post("/overrides", h.handleSaveOverrides)

		r.With(read).Get("/summaries", h.handleSummaries)
		r.With(read).Get("/summaries/export.pdf", h.handleExportSummaries)
	})
}

type punchesPayload struct {
	Punches []attendance.RawPunch `json:"punches"`
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	policies, err := h.Service.ListPolicies(r.Context(), actor.TenantID)
	if err != nil {
		writeError(w, r, err, "policy_list_failed", "failed to list policies")
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var payload worktime.PolicyInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Date("effectiveDate", payload.EffectiveDate)
	v.Clock("standardStartTime", payload.StandardStart)
	v.Clock("standardEndTime", payload.StandardEnd)
	v.Clock("clockInCutoffTime", payload.ClockInCutoff)
	v.Clock("clockOutCutoffTime", payload.ClockOutCutoff)
	v.NonNegative("lateClockInGraceMinutes", payload.LateGraceMinutes)
	v.NonNegative("breakTime4hDeduction", payload.BreakTime4hDeduction)
	v.NonNegative("breakTime8hDeduction", payload.BreakTime8hDeduction)
	v.NonNegative("breakTimeMinutes", payload.BreakTimeMinutes)
	v.NonNegative("maxWeeklyOvertimeMinutes", payload.MaxWeeklyOvertimeMinutes)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreatePolicy(r.Context(), actor.TenantID, payload)
	if err != nil {
		writeError(w, r, err, "policy_create_failed", "failed to create policy")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListHolidays(r.Context(), actor.TenantID)
	if err != nil {
		writeError(w, r, err, "holiday_list_failed", "failed to list holidays")
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var payload holidays.Holiday
	if !decodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Date("date", payload.Date)
	v.Required("name", payload.Name, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), actor.TenantID, payload)
	if err != nil {
		writeError(w, r, err, "holiday_create_failed", "failed to create holiday")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteHoliday(r.Context(), actor.TenantID, chi.URLParam(r, "holidayID")); err != nil {
		writeError(w, r, err, "holiday_delete_failed", "failed to delete holiday")
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleImportPunches(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	payload, ok := decodePunches(w, r)
	if !ok {
		return
	}
	saved, err := h.Service.ImportPunches(r.Context(), actor.TenantID, payload.Punches)
	if err != nil {
		writeError(w, r, err, "punch_import_failed", "failed to import punches")
		return
	}
	api.Created(w, map[string]int{"imported": saved}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunCorrection(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var payload attendance.CorrectionRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	from, fromOK := v.Date("from", payload.From)
	to, toOK := v.Date("to", payload.To)
	if fromOK && toOK && to < from {
		v.Add("to", "must be on or after from")
	}
	if v.Reject(w, reqID) {
		return
	}

	run := func(ctx context.Context) (any, error) {
		ctx = requestctx.WithActor(requestctx.WithRequestID(ctx, reqID), actor)
		return h.Service.RunCorrection(ctx, actor.TenantID, payload)
	}

	if r.URL.Query().Get("async") == "true" {
		jobID, err := h.Jobs.Enqueue(context.WithoutCancel(r.Context()), jobs.JobCorrection, actor.TenantID, run)
		if err != nil {
			writeError(w, r, err, "correction_enqueue_failed", "failed to queue correction")
			return
		}
		api.Accepted(w, map[string]string{"jobId": jobID, "status": jobs.StatusQueued}, reqID)
		return
	}

	report, err := h.Jobs.RunNow(r.Context(), jobs.JobCorrection, actor.TenantID, run)
	if err != nil {
		writeError(w, r, err, "correction_failed", "failed to run correction")
		return
	}
	api.Success(w, report, reqID)
}

func (h *Handler) handleGetCorrectionJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	run, err := h.Jobs.Get(r.Context(), actor.TenantID, chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, r, err, "job_lookup_failed", "failed to load job")
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	records, err := h.Service.ListRecords(r.Context(), actor.TenantID, r.URL.Query().Get("view"), filter)
	if err != nil {
		writeError(w, r, err, "record_list_failed", "failed to list records")
		return
	}
	api.SuccessWithMeta(w, records, map[string]int{"total": len(records)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var edit attendance.RecordEdit
	if !decodeJSON(w, r, &edit) {
		return
	}
	v := shared.NewValidator()
	if edit.StartDisplay != nil {
		v.Clock("startTimeDisplay", *edit.StartDisplay)
	}
	if edit.EndDisplay != nil {
		v.Clock("endTimeDisplay", *edit.EndDisplay)
	}
	if edit.LogStatus != nil {
		v.Enum("logStatus", *edit.LogStatus, attendance.LogStatuses(), "must be a known log status")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	stream := r.URL.Query().Get("stream")
	record, changes, err := h.Service.UpdateRecord(r.Context(), actor.TenantID, stream, chi.URLParam(r, "recordID"), edit)
	if err != nil {
		writeError(w, r, err, "record_update_failed", "failed to update record")
		return
	}
	api.Success(w, map[string]any{"record": record, "changes": changes}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecordChanges(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	events, err := h.Service.RecordHistory(r.Context(), actor.TenantID, chi.URLParam(r, "recordID"), page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err, "record_history_failed", "failed to load record history")
		return
	}
	api.SuccessWithMeta(w, events, api.Page{Limit: page.Limit, Offset: page.Offset, Total: len(events)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveOverrides(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	payload, ok := decodePunches(w, r)
	if !ok {
		return
	}
	records, err := h.Service.SaveOverrides(r.Context(), actor.TenantID, payload.Punches)
	if err != nil {
		writeError(w, r, err, "override_save_failed", "failed to save overrides")
		return
	}
	api.Created(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummaries(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	summaries, err := h.Service.Summaries(r.Context(), actor.TenantID, r.URL.Query().Get("period"), filter)
	if err != nil {
		writeError(w, r, err, "summary_failed", "failed to build summaries")
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportSummaries(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Service.ExportSummaryPDF(r.Context(), actor.TenantID, r.URL.Query().Get("period"), filter, &buf); err != nil {
		writeError(w, r, err, "summary_export_failed", "failed to export summaries")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=attendance-summary.pdf")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("summary pdf write failed", "err", err)
	}
}

func requireActor(w http.ResponseWriter, r *http.Request) (requestctx.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return requestctx.Actor{}, false
	}
	return actor, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func decodePunches(w http.ResponseWriter, r *http.Request) (punchesPayload, bool) {
	var payload punchesPayload
	if !decodeJSON(w, r, &payload) {
		return payload, false
	}
	v := shared.NewValidator()
	if len(payload.Punches) == 0 {
		v.Add("punches", "must not be empty")
	}
	if len(payload.Punches) > maxPunchesPerRequest {
		v.Add("punches", "too many punches in one request")
	}
	for i, p := range payload.Punches {
		field := "punches[" + strconv.Itoa(i) + "]"
		v.Required(field+".employeeId", p.EmployeeID, "is required")
		v.Date(field+".date", p.Date)
		v.Enum(field+".logStatus", p.LogStatus, attendance.LogStatuses(), "must be a known log status")
		if len(v.Issues()) >= 20 {
			break
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, false
	}
	return payload, true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (attendance.RecordFilter, bool) {
	v := shared.NewValidator()
	from, to := shared.DateRange(r, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return attendance.RecordFilter{}, false
	}
	return attendance.RecordFilter{
		From:       from,
		To:         to,
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "record_not_found", "record not found", reqID)
	case errors.Is(err, holidays.ErrHolidayNotFound):
		api.Fail(w, http.StatusNotFound, "holiday_not_found", "holiday not found", reqID)
	case errors.Is(err, jobs.ErrJobNotFound):
		api.Fail(w, http.StatusNotFound, "job_not_found", "job not found", reqID)
	case errors.Is(err, attendance.ErrNoPunches):
		api.Fail(w, http.StatusNotFound, "no_punches", "no punches in the requested range", reqID)
	case errors.Is(err, jobs.ErrQueueFull):
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "correction queue is full, retry later", reqID)
	case errors.Is(err, attendance.ErrInvalidPolicy),
		errors.Is(err, attendance.ErrInvalidPunch),
		errors.Is(err, attendance.ErrInvalidRange),
		errors.Is(err, attendance.ErrInvalidEdit),
		errors.Is(err, attendance.ErrInvalidView),
		errors.Is(err, attendance.ErrInvalidPeriod),
		errors.Is(err, holidays.ErrInvalidHoliday):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), reqID)
	default:
		slog.Error(message, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
