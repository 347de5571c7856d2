package holidays

import "errors"

type Holiday struct {
	ID     string `json:"id,omitempty" yaml:"-"`
	Date   string `json:"date" yaml:"date"`
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrInvalidHoliday  = errors.New("invalid holiday")
)
