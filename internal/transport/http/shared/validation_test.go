package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("employeeId", " ", "is required")
	v.Clock("clockIn", "9am")
	v.Clock("clockOut", "18:30:15")
	v.Enum("period", "quarter", []string{"week", "month"}, "must be week or month")
	v.Date("date", "2025-02-30")
	negative := -1
	v.NonNegative("breakTimeMinutes", &negative)
	v.NonNegative("maxWeeklyOvertimeMinutes", nil)

	issues := v.Issues()
	want := []string{"breakTimeMinutes", "clockIn", "date", "employeeId", "period"}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), issues)
	}
	for i, field := range want {
		if issues[i].Field != field {
			t.Fatalf("issue %d: got %s, want %s", i, issues[i].Field, field)
		}
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("did not expect rejection without issues")
	}

	v.Add("from", "must be a valid date in YYYY-MM-DD format")
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" || len(body.Error.Details.Fields) != 1 || body.RequestID != "req-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestDateRangeAndPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/records?from=2025-03-09&to=2025-03-03&limit=500&offset=-4", nil)
	v := NewValidator()
	from, to := DateRange(req, v)
	if from != "2025-03-09" || to != "2025-03-03" {
		t.Fatalf("unexpected range %s..%s", from, to)
	}
	if !v.HasIssues() || v.Issues()[0].Field != "to" {
		t.Fatalf("expected inverted range issue, got %+v", v.Issues())
	}

	page := ParsePagination(req, 50, 200)
	if page.Limit != 200 || page.Offset != 0 {
		t.Fatalf("unexpected pagination %+v", page)
	}
}
