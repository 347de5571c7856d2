package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"timekeeper/internal/domain/worktime"
	"timekeeper/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

func (s *Store) SavePunches(ctx context.Context, tenantID string, punches []RawPunch) (int, error) {
	batch := &pgx.Batch{}
	for _, p := range punches {
		day, ok := worktime.ParseDate(p.Date)
		if !ok {
			return 0, fmt.Errorf("%w: date %q", ErrInvalidPunch, p.Date)
		}
		batch.Queue(`
      INSERT INTO attendance_punches (tenant_id, employee_id, employee_name, title, department, work_date, clock_in, clock_out, log_status)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
      ON CONFLICT (tenant_id, employee_id, work_date) DO UPDATE SET
        employee_name = EXCLUDED.employee_name,
        title = EXCLUDED.title,
        department = EXCLUDED.department,
        clock_in = EXCLUDED.clock_in,
        clock_out = EXCLUDED.clock_out,
        log_status = EXCLUDED.log_status,
        imported_at = now()
    `, tenantID, p.EmployeeID, p.EmployeeName, p.Title, p.Department, day, p.ClockIn, p.ClockOut, p.LogStatus)
	}
	if err := s.sendInTx(ctx, batch); err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

func (s *Store) ListPunches(ctx context.Context, tenantID string, filter RecordFilter) ([]RawPunch, error) {
	query := `
    SELECT employee_id, employee_name, title, department, to_char(work_date, 'YYYY-MM-DD'), clock_in, clock_out, log_status
    FROM attendance_punches
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.From != "" {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND work_date >= $%d::date", len(args))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND work_date <= $%d::date", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY work_date, employee_id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RawPunch
	for rows.Next() {
		var p RawPunch
		if err := rows.Scan(&p.EmployeeID, &p.EmployeeName, &p.Title, &p.Department, &p.Date, &p.ClockIn, &p.ClockOut, &p.LogStatus); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string) ([]worktime.PolicyInput, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, to_char(effective_date, 'YYYY-MM-DD'), standard_start_time, standard_end_time,
           clock_in_cutoff_time, clock_out_cutoff_time, late_clock_in_grace_minutes,
           break_time_4h_deduction, break_time_8h_deduction, break_time_minutes,
           max_weekly_overtime_minutes, disable_snap
    FROM work_policies
    WHERE tenant_id = $1
    ORDER BY effective_date
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []worktime.PolicyInput
	for rows.Next() {
		var p worktime.PolicyInput
		if err := rows.Scan(&p.ID, &p.EffectiveDate, &p.StandardStart, &p.StandardEnd,
			&p.ClockInCutoff, &p.ClockOutCutoff, &p.LateGraceMinutes,
			&p.BreakTime4hDeduction, &p.BreakTime8hDeduction, &p.BreakTimeMinutes,
			&p.MaxWeeklyOvertimeMinutes, &p.DisableSnap); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePolicy(ctx context.Context, tenantID string, in worktime.PolicyInput) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO work_policies (tenant_id, effective_date, standard_start_time, standard_end_time,
      clock_in_cutoff_time, clock_out_cutoff_time, late_clock_in_grace_minutes,
      break_time_4h_deduction, break_time_8h_deduction, break_time_minutes,
      max_weekly_overtime_minutes, disable_snap)
    VALUES ($1,$2::date,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    RETURNING id::text
  `, tenantID, in.EffectiveDate, in.StandardStart, in.StandardEnd,
		in.ClockInCutoff, in.ClockOutCutoff, in.LateGraceMinutes,
		in.BreakTime4hDeduction, in.BreakTime8hDeduction, in.BreakTimeMinutes,
		in.MaxWeeklyOvertimeMinutes, in.DisableSnap).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

const recordColumns = `id, employee_id, employee_name, title, department, work_date,
  start_minutes, end_minutes, start_display, end_display, original_start, original_end,
  total_duration, break_duration, actual_work_duration, overtime_duration,
  special_work_minutes, night_work_minutes, work_type, is_holiday, status, log_status, note`

// SaveRecords upserts one stream's records in a single transaction.
func (s *Store) SaveRecords(ctx context.Context, tenantID, stream string, records []Record) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
      INSERT INTO attendance_records (tenant_id, stream, `+recordColumns+`)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
      ON CONFLICT (tenant_id, stream, id) DO UPDATE SET
        employee_name = EXCLUDED.employee_name,
        title = EXCLUDED.title,
        department = EXCLUDED.department,
        start_minutes = EXCLUDED.start_minutes,
        end_minutes = EXCLUDED.end_minutes,
        start_display = EXCLUDED.start_display,
        end_display = EXCLUDED.end_display,
        original_start = EXCLUDED.original_start,
        original_end = EXCLUDED.original_end,
        total_duration = EXCLUDED.total_duration,
        break_duration = EXCLUDED.break_duration,
        actual_work_duration = EXCLUDED.actual_work_duration,
        overtime_duration = EXCLUDED.overtime_duration,
        special_work_minutes = EXCLUDED.special_work_minutes,
        night_work_minutes = EXCLUDED.night_work_minutes,
        work_type = EXCLUDED.work_type,
        is_holiday = EXCLUDED.is_holiday,
        status = EXCLUDED.status,
        log_status = EXCLUDED.log_status,
        note = EXCLUDED.note,
        updated_at = now()
    `, tenantID, stream, r.ID, r.EmployeeID, r.EmployeeName, r.Title, r.Department, r.Date,
			r.StartTime, r.EndTime, r.StartDisplay, r.EndDisplay, r.OriginalStart, r.OriginalEnd,
			r.TotalDuration, r.BreakDuration, r.ActualWorkDuration, r.OvertimeDuration,
			r.SpecialWorkMinutes, r.NightWorkMinutes, r.WorkType, r.IsHoliday, r.Status, r.LogStatus, r.Note)
	}
	return s.sendInTx(ctx, batch)
}

func (s *Store) ListRecords(ctx context.Context, tenantID, stream string, filter RecordFilter) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance_records WHERE tenant_id = $1 AND stream = $2"
	args := []any{tenantID, stream}
	if filter.From != "" {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND work_date >= $%d", len(args))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND work_date <= $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY work_date, employee_id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRecord(ctx context.Context, tenantID, stream, id string) (Record, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance_records WHERE tenant_id = $1 AND stream = $2 AND id = $3", tenantID, stream, id)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return r, err
}

func (s *Store) Tenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT DISTINCT tenant_id FROM attendance_punches ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.Title, &r.Department, &r.Date,
		&r.StartTime, &r.EndTime, &r.StartDisplay, &r.EndDisplay, &r.OriginalStart, &r.OriginalEnd,
		&r.TotalDuration, &r.BreakDuration, &r.ActualWorkDuration, &r.OvertimeDuration,
		&r.SpecialWorkMinutes, &r.NightWorkMinutes, &r.WorkType, &r.IsHoliday, &r.Status, &r.LogStatus, &r.Note)
	return r, err
}

func (s *Store) sendInTx(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
