package attendance

import "errors"

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidPolicy  = errors.New("invalid work policy")
	ErrInvalidPunch   = errors.New("invalid punch")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrInvalidEdit    = errors.New("invalid record edit")
	ErrInvalidView    = errors.New("invalid record view")
	ErrInvalidPeriod  = errors.New("invalid summary period")
	ErrNoPunches      = errors.New("no punches in range")
)
