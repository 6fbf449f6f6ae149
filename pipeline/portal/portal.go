package portal

import (
	"context"
	"errors"
	"time"
)

// Portal abstracts the legacy class-search form so the orchestrator
// and tests never touch a live browser session. One implementation
// drives headless Chrome (Driver); tests use fixture-backed fakes.
type Portal interface {
	// NavigateFresh loads the search form from the base URL. Only
	// needed for the first subject of a run.
	NavigateFresh(ctx context.Context) error
	// ModifySearch returns to the form from a results page through
	// the in-place "modify search" affordance, falling back to a
	// fresh navigation when the affordance is missing or stale.
	ModifySearch(ctx context.Context) error
	// ConfigureAndSubmit fills the form controls in their required
	// order and submits the search.
	ConfigureAndSubmit(ctx context.Context, subjectCode string) error
	// AwaitResults polls for the results marker. found is false when
	// the portal explicitly reported an empty result set.
	AwaitResults(ctx context.Context, timeout time.Duration) (found bool, err error)
	// ExpandAll clicks every still-collapsed section group so all
	// meeting rows are present in the page source.
	ExpandAll(ctx context.Context) error
	// PageSource returns the rendered HTML of the current page.
	PageSource(ctx context.Context) (string, error)
}

type State int

const (
	StateInit State = iota
	StateFormReady
	StateSubmitting
	StateResultsReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateFormReady:
		return "form_ready"
	case StateSubmitting:
		return "submitting"
	case StateResultsReady:
		return "results_ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrControlMissing marks a required form control that could not be
// located; the orchestrator treats it as fatal for that subject only.
var ErrControlMissing = errors.New("required form control missing")

// ErrResultsTimeout marks an unresolved wait for the results marker
// where the portal did not report an empty result set either.
var ErrResultsTimeout = errors.New("timed out waiting for search results")
