package automation

import "errors"

var (
	ErrInvalidScenario = errors.New("automation: invalid scenario")
	ErrInvalidSweep    = errors.New("automation: invalid sweep")
)
