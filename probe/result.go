package probe

import (
	"fmt"
)

type Result struct {
	Source string
	URL    string
	Ok     bool
	Err    error
}

func (r *Result) Error() error {
	return fmt.Errorf("%s: %s: %w",
		r.Source,
		r.URL,
		r.Err,
	)
}

func (r *Result) Outcome() string {
	if r.Ok {
		return OutcomeOk
	}
	return OutcomeNok
}

const (
	SourceCache    = "cache"
	SourceFallback = "fallback"

	OutcomeOk  = "ok"
	OutcomeNok = "nok"
)
