package attendance

import (
	"context"

	"timekeeper/internal/domain/worktime"
)

const (
	StreamBaseline = "baseline"
	StreamOverride = "override"
)

// RecordFilter narrows record and punch queries. Empty fields do not filter.
type RecordFilter struct {
	From       string
	To         string
	EmployeeID string
}

type StoreAPI interface {
	SavePunches(ctx context.Context, tenantID string, punches []RawPunch) (int, error)
	ListPunches(ctx context.Context, tenantID string, filter RecordFilter) ([]RawPunch, error)
	ListPolicies(ctx context.Context, tenantID string) ([]worktime.PolicyInput, error)
	CreatePolicy(ctx context.Context, tenantID string, in worktime.PolicyInput) (string, error)
	SaveRecords(ctx context.Context, tenantID, stream string, records []Record) error
	ListRecords(ctx context.Context, tenantID, stream string, filter RecordFilter) ([]Record, error)
	GetRecord(ctx context.Context, tenantID, stream, id string) (Record, error)
	Tenants(ctx context.Context) ([]string, error)
}
