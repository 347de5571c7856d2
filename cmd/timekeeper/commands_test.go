package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCorrectCommand(t *testing.T) {
	dir := t.TempDir()
	punches := writeFile(t, dir, "punches.json", `[
  {"employeeId":"e1","employeeName":"Ana","date":"2025-03-03","clockIn":"09:00","clockOut":"18:00"},
  {"employeeId":"e1","employeeName":"Ana","date":"2025-03-04","clockIn":"09:00","clockOut":"18:00"}
]`)
	policies := writeFile(t, dir, "policies.yaml", `policies:
  - effective_date: "2025-01-01"
    standard_start_time: "09:00"
    standard_end_time: "18:00"
`)
	holidayFile := writeFile(t, dir, "holidays.yaml", `holidays:
  - date: "2025-01-01"
    name: New Year
`)

	out, err := execute(t, "correct", "--punches", punches, "--policies", policies, "--holidays", holidayFile, "--summary", "month")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}

	var result correctOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Stats.Punches != 2 || len(result.Records) != 2 {
		t.Fatalf("unexpected stats %+v with %d records", result.Stats, len(result.Records))
	}
	if len(result.Summaries) != 1 {
		t.Fatalf("expected one monthly summary, got %d", len(result.Summaries))
	}
}

func TestCorrectCommandErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[{"employeeId":"e1","date":"2025-03-03","clockIn":"09:00","clockOut":"18:00"}]`)
	missingEmployee := writeFile(t, dir, "bad.json", `[{"date":"2025-03-03","clockIn":"09:00"}]`)
	badPolicy := writeFile(t, dir, "bad.yaml", `policies:
  - effective_date: "2025-01-01"
    standard_start_time: "18:00"
    standard_end_time: "09:00"
`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing flag", args: []string{"correct"}, want: "punches"},
		{name: "unknown file", args: []string{"correct", "--punches", filepath.Join(dir, "nope.json")}, want: "read punches"},
		{name: "invalid punch", args: []string{"correct", "--punches", missingEmployee}, want: "punch 0"},
		{name: "invalid policy", args: []string{"correct", "--punches", good, "--policies", badPolicy}, want: "policy 0"},
		{name: "invalid period", args: []string{"correct", "--punches", good, "--summary", "year"}, want: "summary period"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWeekKeyCommand(t *testing.T) {
	out, err := execute(t, "week-key", "2025-03-03")
	if err != nil {
		t.Fatalf("week-key: %v", err)
	}
	if strings.TrimSpace(out) != "W09 2025-W09" {
		t.Fatalf("unexpected week key output %q", out)
	}

	if _, err := execute(t, "week-key", "03/03/2025"); err == nil {
		t.Fatal("expected invalid date error")
	}
}
