package portal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spots-backend/lib/textutil"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pipeline/portal")

// DefaultBaseURL is the public class-search entry point of the
// PeopleSoft student portal.
const DefaultBaseURL = "https://csprod-ss.net.ucf.edu/psc/CSPROD/EMPLOYEE/SA/c/COMMUNITY_ACCESS.CLASS_SEARCH.GBL"

// PeopleSoft control ids. The $N suffixes are row indices baked into
// the generated form and stable across terms.
const (
	searchButtonID   = "CLASS_SRCH_WRK2_SSR_PB_CLASS_SRCH"
	modifySearchID   = "CLASS_SRCH_WRK2_SSR_PB_MODIFY"
	verifySearchID   = "FX_CLSSRCH_DER_FLAG"
	subjectFieldID   = "SSR_CLSRCH_WRK_SUBJECT$0"
	careerSelectID   = "SSR_CLSRCH_WRK_ACAD_CAREER$3"
	locationSelectID = "SSR_CLSRCH_WRK_LOCATION$4"
	openOnlyID       = "SSR_CLSRCH_WRK_SSR_OPEN_ONLY$6"
)

var locationMatchers = []string{"main", "orlando"}

type DriverOptions struct {
	BaseURL  string
	Headless bool
}

// Driver drives the live portal through one exclusive headless
// browser session. All calls block; the page is the only async party.
type Driver struct {
	base  string
	state State
	ctx   context.Context
}

// NewDriver starts a browser session owned by ctx. The returned
// cleanup must be called to tear the session down.
func NewDriver(ctx context.Context, opts DriverOptions) (*Driver, func(), error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	d := &Driver{
		base:  opts.BaseURL,
		state: StateInit,
		ctx:   browserCtx,
	}
	cleanup := func() {
		cancelBrowser()
		cancelAlloc()
	}
	return d, cleanup, nil
}

func (d *Driver) State() State {
	return d.state
}

func (d *Driver) NavigateFresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "NavigateFresh")
	defer span.End()

	err := chromedp.Run(d.ctx,
		chromedp.Navigate(d.base),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// the form keeps wiring itself up after readyState settles
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		d.state = StateFailed
		return fmt.Errorf("navigating to search form: %w", err)
	}

	d.state = StateFormReady
	return nil
}

func (d *Driver) ModifySearch(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ModifySearch")
	defer span.End()

	clicked, err := d.clickByID(modifySearchID)
	if err != nil {
		span.RecordError(err)
		d.state = StateFailed
		return err
	}
	if !clicked {
		slog.WarnContext(ctx, "modify search button missing, falling back to fresh navigation")
		return d.NavigateFresh(ctx)
	}

	err = d.waitForElement(subjectFieldID, 15*time.Second)
	if err != nil {
		slog.WarnContext(ctx, "form did not reappear after modify search, falling back to fresh navigation", "err", err)
		return d.NavigateFresh(ctx)
	}
	// small buffer for the form to be ready
	err = chromedp.Run(d.ctx, chromedp.Sleep(time.Second))
	if err != nil {
		d.state = StateFailed
		return err
	}

	d.state = StateFormReady
	return nil
}

func (d *Driver) ConfigureAndSubmit(ctx context.Context, subjectCode string) error {
	ctx, span := tracer.Start(ctx, "ConfigureAndSubmit")
	defer span.End()

	if d.state != StateFormReady {
		return fmt.Errorf("configure from state %s: form is not ready", d.state)
	}

	// locate the required controls before mutating anything
	hasSearch, err := d.elementExists(searchButtonID)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !hasSearch {
		return fmt.Errorf("%w: search button %q", ErrControlMissing, searchButtonID)
	}
	hasSubject, err := d.elementExists(subjectFieldID)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !hasSubject {
		return fmt.Errorf("%w: subject field %q", ErrControlMissing, subjectFieldID)
	}

	ok, err := d.setCheckbox(verifySearchID, true)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "verify search checkbox not found, continuing")
	}

	_, err = d.setInputValue(subjectFieldID, subjectCode)
	if err != nil {
		d.state = StateFailed
		return err
	}

	ok, err = d.selectValue(careerSelectID, "")
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "course career dropdown not found, continuing")
	}

	err = d.selectCampusLocation(ctx)
	if err != nil {
		d.state = StateFailed
		return err
	}

	ok, err = d.setCheckbox(openOnlyID, false)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "open classes only checkbox not found, continuing")
	}

	// the legacy form debounces control mutations
	err = chromedp.Run(d.ctx, chromedp.Sleep(200*time.Millisecond))
	if err != nil {
		d.state = StateFailed
		return err
	}

	clicked, err := d.clickByID(searchButtonID)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if !clicked {
		return fmt.Errorf("%w: search button %q", ErrControlMissing, searchButtonID)
	}

	d.state = StateSubmitting
	return nil
}

func (d *Driver) AwaitResults(ctx context.Context, timeout time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "AwaitResults")
	defer span.End()

	if d.state != StateSubmitting {
		return false, fmt.Errorf("await results from state %s: no search submitted", d.state)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		found, err := d.pageContains("class section")
		if err != nil {
			d.state = StateFailed
			return false, err
		}
		if found {
			d.state = StateResultsReady
			return true, nil
		}

		err = chromedp.Run(d.ctx, chromedp.Sleep(500*time.Millisecond))
		if err != nil {
			d.state = StateFailed
			return false, err
		}
	}

	// distinguish an empty-but-valid result set from a genuine timeout
	for _, marker := range []string{"no classes found", "search returned no results"} {
		empty, err := d.pageContains(marker)
		if err != nil {
			d.state = StateFailed
			return false, err
		}
		if empty {
			d.state = StateResultsReady
			return false, nil
		}
	}

	d.state = StateFailed
	return false, ErrResultsTimeout
}

func (d *Driver) ExpandAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ExpandAll")
	defer span.End()

	if d.state != StateResultsReady {
		return fmt.Errorf("expand from state %s: results are not ready", d.state)
	}

	// anchors titled "Expand section …" are the still-collapsed groups
	var ids []string
	err := chromedp.Run(d.ctx, chromedp.Evaluate(
		`Array.from(document.querySelectorAll('a[title^="Expand section"]')).map(a => a.id)`,
		&ids,
	))
	if err != nil {
		d.state = StateFailed
		return err
	}

	for _, id := range ids {
		clicked, err := d.clickByID(id)
		if err != nil {
			d.state = StateFailed
			return err
		}
		if !clicked {
			continue
		}
		// let the partial page update settle before the next click
		err = chromedp.Run(d.ctx, chromedp.Sleep(300*time.Millisecond))
		if err != nil {
			d.state = StateFailed
			return err
		}
	}

	err = chromedp.Run(d.ctx, chromedp.WaitReady("body", chromedp.ByQuery))
	if err != nil {
		d.state = StateFailed
		return err
	}
	return nil
}

func (d *Driver) PageSource(ctx context.Context) (string, error) {
	var html string
	err := chromedp.Run(d.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		return "", err
	}
	return html, nil
}

// picks the first campus location option matching the main-campus
// matchers; a missing dropdown or no matching option is a warning,
// the portal then searches all locations.
func (d *Driver) selectCampusLocation(ctx context.Context) error {
	var options []string
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const el = document.getElementById(%q);
			if (el === null) return [];
			return Array.from(el.options).map(o => o.text);
		})()`, locationSelectID,
	), &options))
	if err != nil {
		return err
	}
	if len(options) == 0 {
		slog.WarnContext(ctx, "location dropdown not found, continuing")
		return nil
	}

	for i, text := range options {
		if !textutil.MatchName(text, locationMatchers) {
			continue
		}
		var ok bool
		err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
			`(() => {
				const el = document.getElementById(%q);
				if (el === null) return false;
				el.selectedIndex = %d;
				el.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			})()`, locationSelectID, i,
		), &ok))
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "selected campus location", "option", text)
		break
	}

	return chromedp.Run(d.ctx, chromedp.Sleep(300*time.Millisecond))
}

func (d *Driver) elementExists(id string) (bool, error) {
	var exists bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(
		fmt.Sprintf(`document.getElementById(%q) !== null`, id),
		&exists,
	))
	return exists, err
}

func (d *Driver) waitForElement(id string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		exists, err := d.elementExists(id)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		err = chromedp.Run(d.ctx, chromedp.Sleep(250*time.Millisecond))
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("element %q did not appear within %s", id, timeout)
}

func (d *Driver) clickByID(id string) (bool, error) {
	var clicked bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const el = document.getElementById(%q);
			if (el === null) return false;
			el.click();
			return true;
		})()`, id,
	), &clicked))
	return clicked, err
}

func (d *Driver) setInputValue(id, value string) (bool, error) {
	var ok bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const el = document.getElementById(%q);
			if (el === null) return false;
			el.value = %q;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		})()`, id, value,
	), &ok))
	return ok, err
}

func (d *Driver) selectValue(id, value string) (bool, error) {
	var ok bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const el = document.getElementById(%q);
			if (el === null) return false;
			el.value = %q;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		})()`, id, value,
	), &ok))
	return ok, err
}

func (d *Driver) setCheckbox(id string, checked bool) (bool, error) {
	var ok bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const el = document.getElementById(%q);
			if (el === null) return false;
			if (el.checked !== %t) el.click();
			return true;
		})()`, id, checked,
	), &ok))
	return ok, err
}

func (d *Driver) pageContains(marker string) (bool, error) {
	var found bool
	err := chromedp.Run(d.ctx, chromedp.Evaluate(fmt.Sprintf(
		`document.body.innerText.toLowerCase().includes(%q)`, marker,
	), &found))
	return found, err
}
