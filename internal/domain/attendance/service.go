package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"timekeeper/internal/domain/audit"
	"timekeeper/internal/domain/holidays"
	"timekeeper/internal/domain/worktime"
	"timekeeper/internal/requestctx"
)

type HolidaySource interface {
	List(ctx context.Context, tenantID string) ([]holidays.Holiday, error)
	Create(ctx context.Context, tenantID string, h holidays.Holiday) (string, error)
	Delete(ctx context.Context, tenantID, holidayID string) error
	Calendar(ctx context.Context, tenantID string) (*holidays.Calendar, error)
}

type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID string, before, after any) error
	List(ctx context.Context, tenantID string, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type CorrectionRecorder interface {
	RecordCorrection(records, anomalies, changed int)
}

type Service struct {
	Store    StoreAPI
	Holidays HolidaySource
	Audit    Auditor
	Metrics  CorrectionRecorder
	// Flatten is the tenant-wide default for standard overtime flattening.
	Flatten bool
}

func NewService(store StoreAPI, holidaySource HolidaySource, auditor Auditor, recorder CorrectionRecorder) *Service {
	return &Service{Store: store, Holidays: holidaySource, Audit: auditor, Metrics: recorder}
}

type CorrectionRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	EmployeeID string `json:"employeeId,omitempty"`
	Flatten    *bool  `json:"flattenStandardOvertime,omitempty"`
}

type CorrectionReport struct {
	From      string                   `json:"from"`
	To        string                   `json:"to"`
	Stats     RunStats                 `json:"stats"`
	Changes   map[string][]FieldChange `json:"changes"`
	Summaries []Summary                `json:"summaries"`
}

// RecordEdit is a single-cell style edit; nil fields are left alone.
type RecordEdit struct {
	StartDisplay *string `json:"startTimeDisplay,omitempty"`
	EndDisplay   *string `json:"endTimeDisplay,omitempty"`
	LogStatus    *string `json:"logStatus,omitempty"`
	Note         *string `json:"note,omitempty"`
}

func (s *Service) ImportPunches(ctx context.Context, tenantID string, punches []RawPunch) (int, error) {
	for i, p := range punches {
		if err := ValidatePunch(p); err != nil {
			return 0, fmt.Errorf("punch %d: %w", i, err)
		}
	}
	saved, err := s.Store.SavePunches(ctx, tenantID, punches)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, tenantID, audit.ActionImport, audit.EntityPunches, tenantID, nil, map[string]int{"punches": saved})
	return saved, nil
}

// RunCorrection corrects every stored punch in the range and replaces the
// baseline stream for those days. Punches are loaded for the whole weeks the
// range touches so a week's overtime budget is never split between runs;
// only records inside the range are saved.
func (s *Service) RunCorrection(ctx context.Context, tenantID string, req CorrectionRequest) (CorrectionReport, error) {
	if err := validateRange(req.From, req.To); err != nil {
		return CorrectionReport{}, err
	}
	from, _ := worktime.ParseDate(req.From)
	to, _ := worktime.ParseDate(req.To)
	filter := RecordFilter{
		From:       worktime.WeekStart(from).Format(worktime.DateLayout),
		To:         worktime.WeekStart(to).AddDate(0, 0, 6).Format(worktime.DateLayout),
		EmployeeID: req.EmployeeID,
	}
	punches, err := s.Store.ListPunches(ctx, tenantID, filter)
	if err != nil {
		return CorrectionReport{}, fmt.Errorf("list punches: %w", err)
	}
	if len(punches) == 0 {
		return CorrectionReport{}, ErrNoPunches
	}
	policies, err := s.Store.ListPolicies(ctx, tenantID)
	if err != nil {
		return CorrectionReport{}, fmt.Errorf("list policies: %w", err)
	}
	calendar, err := s.Holidays.Calendar(ctx, tenantID)
	if err != nil {
		return CorrectionReport{}, fmt.Errorf("load holidays: %w", err)
	}

	flatten := s.Flatten
	if req.Flatten != nil {
		flatten = *req.Flatten
	}
	result := Correct(CorrectionInput{
		Punches:  punches,
		Policies: policies,
		Calendar: calendar,
		Options:  CalibrationOptions{FlattenStandardOvertime: flatten},
	})
	result = clipToRange(result, req.From, req.To)
	if len(result.Records) == 0 {
		return CorrectionReport{}, ErrNoPunches
	}
	if err := s.Store.SaveRecords(ctx, tenantID, StreamBaseline, result.Records); err != nil {
		return CorrectionReport{}, fmt.Errorf("save records: %w", err)
	}

	for id, changes := range result.Changes {
		s.audit(ctx, tenantID, audit.ActionCorrect, audit.EntityRecord, id, nil, changes)
	}
	s.audit(ctx, tenantID, audit.ActionCorrect, audit.EntityRun, req.From+".."+req.To, nil, result.Stats)
	if s.Metrics != nil {
		s.Metrics.RecordCorrection(result.Stats.Records, result.Stats.Anomalies, result.Stats.Changed)
	}
	slog.Info("attendance correction finished",
		"tenant", tenantID,
		"from", req.From,
		"to", req.To,
		"records", result.Stats.Records,
		"changed", result.Stats.Changed,
	)

	return CorrectionReport{
		From:      req.From,
		To:        req.To,
		Stats:     result.Stats,
		Changes:   result.Changes,
		Summaries: result.Summaries,
	}, nil
}

// clipToRange keeps the records and changes dated inside [from, to]. Weekly
// summaries are kept whole since they were computed over complete weeks.
func clipToRange(result Result, from, to string) Result {
	records := make([]Record, 0, len(result.Records))
	changes := make(map[string][]FieldChange)
	for _, rec := range result.Records {
		if rec.Date < from || rec.Date > to {
			continue
		}
		records = append(records, rec)
		if fields, ok := result.Changes[rec.ID]; ok {
			changes[rec.ID] = fields
		}
	}
	result.Records = records
	result.Changes = changes
	result.Stats.Records = len(records)
	result.Stats.Changed = len(changes)
	return result
}

func (s *Service) ListRecords(ctx context.Context, tenantID, view string, filter RecordFilter) ([]Record, error) {
	mode, err := parseView(view)
	if err != nil {
		return nil, err
	}
	var baseline, overrides []Record
	if mode != MergeOverrides {
		if baseline, err = s.Store.ListRecords(ctx, tenantID, StreamBaseline, filter); err != nil {
			return nil, err
		}
	}
	if mode != MergeBaseline {
		if overrides, err = s.Store.ListRecords(ctx, tenantID, StreamOverride, filter); err != nil {
			return nil, err
		}
	}
	return Merge(baseline, overrides, mode), nil
}

// SaveOverrides classifies manual entries into the override stream. They are
// never calibrated; the merged view decides whether they win.
func (s *Service) SaveOverrides(ctx context.Context, tenantID string, punches []RawPunch) ([]Record, error) {
	for i, p := range punches {
		if err := ValidatePunch(p); err != nil {
			return nil, fmt.Errorf("override %d: %w", i, err)
		}
	}
	policies, calendar, err := s.policyContext(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(punches))
	for _, p := range punches {
		date, _ := worktime.ParseDate(p.Date)
		records = append(records, Classify(p, policies.ActiveFor(date), calendar))
	}
	if err := s.Store.SaveRecords(ctx, tenantID, StreamOverride, records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		s.audit(ctx, tenantID, audit.ActionOverride, audit.EntityRecord, rec.ID, nil, rec)
	}
	return records, nil
}

// UpdateRecord applies an edit, recomputes the derived fields and logs the
// cells that changed.
func (s *Service) UpdateRecord(ctx context.Context, tenantID, stream, id string, edit RecordEdit) (Record, []FieldChange, error) {
	if stream == "" {
		stream = StreamBaseline
	}
	if stream != StreamBaseline && stream != StreamOverride {
		return Record{}, nil, fmt.Errorf("%w: unknown stream %q", ErrInvalidEdit, stream)
	}
	current, err := s.Store.GetRecord(ctx, tenantID, stream, id)
	if err != nil {
		return Record{}, nil, err
	}

	edited := current
	if edit.StartDisplay != nil {
		if !validClock(*edit.StartDisplay) {
			return Record{}, nil, fmt.Errorf("%w: start %q", ErrInvalidEdit, *edit.StartDisplay)
		}
		edited.StartDisplay = strings.TrimSpace(*edit.StartDisplay)
	}
	if edit.EndDisplay != nil {
		if !validClock(*edit.EndDisplay) {
			return Record{}, nil, fmt.Errorf("%w: end %q", ErrInvalidEdit, *edit.EndDisplay)
		}
		edited.EndDisplay = strings.TrimSpace(*edit.EndDisplay)
	}
	if edit.LogStatus != nil {
		status := strings.ToUpper(strings.TrimSpace(*edit.LogStatus))
		if !ValidLogStatus(status) {
			return Record{}, nil, fmt.Errorf("%w: log status %q", ErrInvalidEdit, *edit.LogStatus)
		}
		edited.LogStatus = status
	}

	policies, calendar, err := s.policyContext(ctx, tenantID)
	if err != nil {
		return Record{}, nil, err
	}
	policy := worktime.DefaultPolicy()
	if date, ok := worktime.ParseDate(edited.Date); ok {
		policy = policies.ActiveFor(date)
	}
	updated := Recalculate(edited, policy, calendar)
	if edit.Note != nil {
		updated.Note = strings.TrimSpace(*edit.Note)
	}

	changes := DiffRecord(current, updated)
	if len(changes) == 0 {
		return current, nil, nil
	}
	if err := s.Store.SaveRecords(ctx, tenantID, stream, []Record{updated}); err != nil {
		return Record{}, nil, err
	}
	s.audit(ctx, tenantID, audit.ActionEdit, audit.EntityRecord, id, current, changes)
	return updated, changes, nil
}

// RecordHistory returns the audit trail of one record, newest first.
func (s *Service) RecordHistory(ctx context.Context, tenantID, id string, limit, offset int) ([]audit.Event, error) {
	return s.Audit.List(ctx, tenantID, audit.Filter{EntityType: audit.EntityRecord, EntityID: id}, limit, offset)
}

func (s *Service) Summaries(ctx context.Context, tenantID, period string, filter RecordFilter) ([]Summary, error) {
	records, err := s.ListRecords(ctx, tenantID, MergeMerged, filter)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", PeriodWeek:
		return SummarizeWeeks(records), nil
	case PeriodMonth:
		calendar, err := s.Holidays.Calendar(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("load holidays: %w", err)
		}
		return SummarizeMonths(records, NewRunCache(calendar)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

func (s *Service) ExportSummaryPDF(ctx context.Context, tenantID, period string, filter RecordFilter, w io.Writer) error {
	summaries, err := s.Summaries(ctx, tenantID, period, filter)
	if err != nil {
		return err
	}
	title := "Attendance compliance"
	if filter.From != "" || filter.To != "" {
		title = fmt.Sprintf("Attendance compliance %s to %s", filter.From, filter.To)
	}
	return WriteSummaryPDF(w, title, summaries)
}

func (s *Service) ListPolicies(ctx context.Context, tenantID string) ([]worktime.PolicyInput, error) {
	return s.Store.ListPolicies(ctx, tenantID)
}

func (s *Service) CreatePolicy(ctx context.Context, tenantID string, in worktime.PolicyInput) (string, error) {
	if err := ValidatePolicy(in); err != nil {
		return "", err
	}
	id, err := s.Store.CreatePolicy(ctx, tenantID, in)
	if err != nil {
		return "", err
	}
	s.audit(ctx, tenantID, audit.ActionPolicy, audit.EntityPolicy, id, nil, in)
	return id, nil
}

func (s *Service) ListHolidays(ctx context.Context, tenantID string) ([]holidays.Holiday, error) {
	return s.Holidays.List(ctx, tenantID)
}

func (s *Service) CreateHoliday(ctx context.Context, tenantID string, h holidays.Holiday) (string, error) {
	return s.Holidays.Create(ctx, tenantID, h)
}

func (s *Service) DeleteHoliday(ctx context.Context, tenantID, id string) error {
	return s.Holidays.Delete(ctx, tenantID, id)
}

func (s *Service) policyContext(ctx context.Context, tenantID string) (worktime.PolicySet, *holidays.Calendar, error) {
	inputs, err := s.Store.ListPolicies(ctx, tenantID)
	if err != nil {
		return worktime.PolicySet{}, nil, fmt.Errorf("list policies: %w", err)
	}
	calendar, err := s.Holidays.Calendar(ctx, tenantID)
	if err != nil {
		return worktime.PolicySet{}, nil, fmt.Errorf("load holidays: %w", err)
	}
	return worktime.NewPolicySet(inputs), calendar, nil
}

func (s *Service) audit(ctx context.Context, tenantID, action, entityType, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	actor, _ := requestctx.GetActor(ctx)
	if err := s.Audit.Record(ctx, tenantID, actor.UserID, action, entityType, entityID, requestctx.GetRequestID(ctx), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func parseView(view string) (string, error) {
	switch mode := strings.ToUpper(strings.TrimSpace(view)); mode {
	case "":
		return MergeMerged, nil
	case MergeMerged, MergeBaseline, MergeOverrides:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, view)
	}
}
