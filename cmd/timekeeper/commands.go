package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"timekeeper/internal/domain/attendance"
	"timekeeper/internal/domain/holidays"
	"timekeeper/internal/domain/worktime"
)

type correctOptions struct {
	punchesPath  string
	policiesPath string
	holidaysPath string
	flatten      bool
	summary      string
}

type policyFile struct {
	Policies []worktime.PolicyInput `yaml:"policies"`
}

type correctOutput struct {
	Stats     attendance.RunStats                 `json:"stats"`
	Records   []attendance.Record                 `json:"records"`
	Changes   map[string][]attendance.FieldChange `json:"changes"`
	Summaries []attendance.Summary                `json:"summaries"`
}

func newCorrectCmd() *cobra.Command {
	opts := &correctOptions{}
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Correct a punch file and print the result as JSON",
		Long:  `Classify every punch, fill missing days, flag anomalies and calibrate weekly overtime. The corrected records, field changes and summaries are printed as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrect(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.punchesPath, "punches", "p", "", "JSON file with raw punches")
	cmd.Flags().StringVar(&opts.policiesPath, "policies", "", "YAML file with work policies")
	cmd.Flags().StringVar(&opts.holidaysPath, "holidays", "", "YAML holiday calendar")
	cmd.Flags().BoolVar(&opts.flatten, "flatten-standard", false, "reset weekday overtime to the standard window")
	cmd.Flags().StringVar(&opts.summary, "summary", attendance.PeriodWeek, "summary period: week or month")
	_ = cmd.MarkFlagRequired("punches")
	return cmd
}

func runCorrect(out io.Writer, opts *correctOptions) error {
	if opts.summary != attendance.PeriodWeek && opts.summary != attendance.PeriodMonth {
		return fmt.Errorf("invalid summary period %q: use week or month", opts.summary)
	}

	punches, err := loadPunches(opts.punchesPath)
	if err != nil {
		return err
	}
	policies, err := loadPolicies(opts.policiesPath)
	if err != nil {
		return err
	}

	var calendar *holidays.Calendar
	if opts.holidaysPath != "" {
		entries, err := holidays.LoadFile(opts.holidaysPath)
		if err != nil {
			return err
		}
		calendar = holidays.NewCalendar(entries)
	}

	result := attendance.Correct(attendance.CorrectionInput{
		Punches:  punches,
		Policies: policies,
		Calendar: calendar,
		Options:  attendance.CalibrationOptions{FlattenStandardOvertime: opts.flatten},
	})

	summaries := result.Summaries
	if opts.summary == attendance.PeriodMonth {
		summaries = attendance.SummarizeMonths(result.Records, result.Cache())
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(correctOutput{
		Stats:     result.Stats,
		Records:   result.Records,
		Changes:   result.Changes,
		Summaries: summaries,
	})
}

func loadPunches(path string) ([]attendance.RawPunch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read punches: %w", err)
	}
	var punches []attendance.RawPunch
	if err := json.Unmarshal(raw, &punches); err != nil {
		return nil, fmt.Errorf("parse punches: %w", err)
	}
	for i, p := range punches {
		if err := attendance.ValidatePunch(p); err != nil {
			return nil, fmt.Errorf("punch %d: %w", i, err)
		}
	}
	return punches, nil
}

func loadPolicies(path string) ([]worktime.PolicyInput, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policies: %w", err)
	}
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse policies: %w", err)
	}
	for i, p := range file.Policies {
		if err := attendance.ValidatePolicy(p); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i, err)
		}
	}
	return file.Policies, nil
}

func newWeekKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week-key DATE",
		Short: "Print the week key for a YYYY-MM-DD date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, ok := worktime.ParseDate(args[0])
			if !ok {
				return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", worktime.WeekKey(date), worktime.WeekID(date))
			return nil
		},
	}
}
