package holidays

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timekeeper/internal/domain/worktime"
)

// Calendar is an immutable set of public holidays.
type Calendar struct {
	days  map[string]Holiday
	dates []string
}

func NewCalendar(entries []Holiday) *Calendar {
	c := &Calendar{days: make(map[string]Holiday, len(entries))}
	for _, entry := range entries {
		day, ok := worktime.ParseDate(strings.TrimSpace(entry.Date))
		if !ok {
			continue
		}
		entry.Date = day.Format(worktime.DateLayout)
		if _, dup := c.days[entry.Date]; !dup {
			c.dates = append(c.dates, entry.Date)
		}
		c.days[entry.Date] = entry
	}
	sort.Strings(c.dates)
	return c
}

func (c *Calendar) IsHoliday(date time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.days[date.UTC().Format(worktime.DateLayout)]
	return ok
}

// Lookup returns the holiday on a YYYY-MM-DD date.
func (c *Calendar) Lookup(date string) (Holiday, bool) {
	if c == nil {
		return Holiday{}, false
	}
	h, ok := c.days[date]
	return h, ok
}

func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.dates)
}

// Holidays lists the calendar in date order.
func (c *Calendar) Holidays() []Holiday {
	if c == nil {
		return nil
	}
	out := make([]Holiday, 0, len(c.dates))
	for _, date := range c.dates {
		out = append(out, c.days[date])
	}
	return out
}

type calendarFile struct {
	Holidays []Holiday `yaml:"holidays"`
}

// ParseYAML reads a holiday file of the form:
//
//	holidays:
//	  - date: 2025-01-01
//	    name: New Year
//
// Entries with unreadable dates are rejected.
func ParseYAML(r io.Reader) ([]Holiday, error) {
	var file calendarFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	for i, entry := range file.Holidays {
		if _, ok := worktime.ParseDate(strings.TrimSpace(entry.Date)); !ok {
			return nil, fmt.Errorf("%w: entry %d has date %q", ErrInvalidHoliday, i, entry.Date)
		}
	}
	return file.Holidays, nil
}

func LoadFile(path string) ([]Holiday, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseYAML(f)
}
