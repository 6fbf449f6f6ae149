package scrape

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spots-backend/lib/timezone"
	"spots-backend/pipeline/portal"
	"spots-backend/pipeline/schedule"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pipeline/scrape")

type Options struct {
	Portal   portal.Portal
	Subjects []string
	Term     string
	// ResultsTimeout bounds each wait for the results marker.
	ResultsTimeout time.Duration
	// SubjectDelay spaces out searches so the legacy portal is not
	// hammered.
	SubjectDelay time.Duration
	// DebugDir, when set, receives the rendered page source of every
	// subject for offline inspection.
	DebugDir string
}

// Run executes one search per subject code and folds the surviving
// courses into a SubjectDocument. Per-subject failures are logged and
// skipped. When ctx is cancelled mid-run the document built so far is
// returned together with the context error so the caller can still
// persist the partial result.
func Run(ctx context.Context, opts Options) (schedule.SubjectDocument, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if opts.ResultsTimeout == 0 {
		opts.ResultsTimeout = 45 * time.Second
	}
	if opts.SubjectDelay == 0 {
		opts.SubjectDelay = time.Second
	}
	if len(opts.Subjects) == 0 {
		opts.Subjects = DefaultSubjectCodes
	}

	var subjects []schedule.Subject
	totalCourses := 0
	totalSections := 0

	var runErr error
	for i, code := range opts.Subjects {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "scrape interrupted, keeping partial results", "collected", len(subjects))
			runErr = err
			break
		}

		slog.InfoContext(ctx, "scraping subject", "code", code, "index", i+1, "total", len(opts.Subjects))

		subject, err := scrapeSubject(ctx, opts, code, i == 0)
		if err != nil {
			span.RecordError(err)
			slog.WarnContext(ctx, "skipping subject", "code", code, "err", err)
			continue
		}
		if subject != nil {
			subjects = append(subjects, *subject)

			sections := 0
			for _, c := range subject.Courses {
				sections += len(c.Sections)
			}
			totalCourses += len(subject.Courses)
			totalSections += sections
			slog.InfoContext(ctx, "subject collected", "code", code, "courses", len(subject.Courses), "sections", sections)
		}

		select {
		case <-time.After(opts.SubjectDelay):
		case <-ctx.Done():
		}
	}

	span.SetAttributes(
		attribute.Int("subjects", len(subjects)),
		attribute.Int("courses", totalCourses),
		attribute.Int("sections", totalSections),
	)
	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	}

	return schedule.SubjectDocument{
		LastUpdated: timezone.Now().Format(time.RFC3339),
		Term:        opts.Term,
		Subjects:    subjects,
	}, runErr
}

// scrapeSubject runs one full search cycle. A nil subject with a nil
// error means the portal had nothing to offer for this code.
func scrapeSubject(ctx context.Context, opts Options, code string, first bool) (*schedule.Subject, error) {
	var err error
	if first {
		err = opts.Portal.NavigateFresh(ctx)
	} else {
		err = opts.Portal.ModifySearch(ctx)
	}
	if err != nil {
		return nil, err
	}

	err = opts.Portal.ConfigureAndSubmit(ctx, code)
	if err != nil {
		return nil, err
	}

	found, err := opts.Portal.AwaitResults(ctx, opts.ResultsTimeout)
	if err != nil {
		return nil, err
	}
	if !found {
		slog.InfoContext(ctx, "no classes found", "code", code)
		return nil, nil
	}

	// a failed expansion still leaves the already-visible rows worth
	// parsing
	err = opts.Portal.ExpandAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "expanding section groups failed", "code", code, "err", err)
	}

	html, err := opts.Portal.PageSource(ctx)
	if err != nil {
		return nil, err
	}

	if opts.DebugDir != "" {
		dumpDebugPage(ctx, opts.DebugDir, code, html)
	}

	courses, err := portal.ParseResults(html)
	if err != nil {
		return nil, err
	}

	valid := keepLocatedCourses(courses)
	if len(valid) == 0 {
		return nil, nil
	}
	return &schedule.Subject{Code: code, Courses: valid}, nil
}

// keepLocatedCourses drops sections without a resolved location and
// courses left with no sections at all.
func keepLocatedCourses(courses []schedule.Course) []schedule.Course {
	var valid []schedule.Course
	for _, course := range courses {
		var located []schedule.Section
		for _, s := range course.Sections {
			if s.Location != nil {
				located = append(located, s)
			}
		}
		if len(located) == 0 {
			continue
		}
		course.Sections = located
		valid = append(valid, course)
	}
	return valid
}

func dumpDebugPage(ctx context.Context, dir, code, html string) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		slog.WarnContext(ctx, "creating debug dir", "err", err)
		return
	}
	path := filepath.Join(dir, code+"_results.html")
	err = os.WriteFile(path, []byte(html), 0o644)
	if err != nil {
		slog.WarnContext(ctx, "writing debug page", "path", path, "err", err)
	}
}
