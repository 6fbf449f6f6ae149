package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"spots-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const resultsPage = `
<div id="win0divSSR_CLSRSLT_WRK_GROUPBOX2$0">
  <a title="Collapse section %s 1001 - Introductory Topics">header</a>
  <table>
    <tr id="trSSR_CLSRCH_MTG1$0_row1">
      <td><span id="MTG_DAYTIME$0">MoWe 7:30AM - 8:50AM</span></td>
      <td><span id="MTG_ROOM$0">BA1 O107</span></td>
      <td><span id="MTG_TOPIC$0">01/12/2026 - 05/05/2026</span></td>
    </tr>
  </table>
</div>`

const onlineOnlyPage = `
<div id="win0divSSR_CLSRSLT_WRK_GROUPBOX2$0">
  <a title="Collapse section %s 1001 - Introductory Topics">header</a>
  <table>
    <tr id="trSSR_CLSRCH_MTG1$0_row1">
      <td><span id="MTG_DAYTIME$0">TBA</span></td>
      <td><span id="MTG_ROOM$0">WEB ONLINE</span></td>
      <td><span id="MTG_TOPIC$0">01/12/2026 - 05/05/2026</span></td>
    </tr>
  </table>
</div>`

// fakePortal replays canned pages, one per subject code.
type fakePortal struct {
	pages       map[string]string
	submitErrs  map[string]error
	current     string
	freshCalls  int
	modifyCalls int
	onSubmit    func(code string)
}

func (f *fakePortal) NavigateFresh(ctx context.Context) error {
	f.freshCalls++
	return nil
}

func (f *fakePortal) ModifySearch(ctx context.Context) error {
	f.modifyCalls++
	return nil
}

func (f *fakePortal) ConfigureAndSubmit(ctx context.Context, code string) error {
	if f.onSubmit != nil {
		f.onSubmit(code)
	}
	if err := f.submitErrs[code]; err != nil {
		return err
	}
	f.current = code
	return nil
}

func (f *fakePortal) AwaitResults(ctx context.Context, timeout time.Duration) (bool, error) {
	return f.pages[f.current] != "", nil
}

func (f *fakePortal) ExpandAll(ctx context.Context) error {
	return nil
}

func (f *fakePortal) PageSource(ctx context.Context) (string, error) {
	return f.pages[f.current], nil
}

func TestRunCollectsSubjects(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:pipeline/scrape")
	defer cleanup()

	fake := &fakePortal{
		pages: map[string]string{
			"ACG": fmt.Sprintf(resultsPage, "ACG"),
			"ECO": fmt.Sprintf(resultsPage, "ECO"),
		},
		submitErrs: map[string]error{
			"BAD": errors.New("subject field missing"),
		},
	}

	doc, err := Run(context.Background(), Options{
		Portal:       fake,
		Subjects:     []string{"ACG", "BAD", "EMP", "ECO"},
		Term:         "Spring 2026",
		SubjectDelay: time.Millisecond,
	})
	require.NoError(t, err)

	// the failing subject and the empty one are skipped, not fatal
	require.Len(t, doc.Subjects, 2)
	require.Equal(t, "ACG", doc.Subjects[0].Code)
	require.Equal(t, "ECO", doc.Subjects[1].Code)
	require.Equal(t, "Spring 2026", doc.Term)
	require.NotEmpty(t, doc.LastUpdated)

	// only the first subject navigates fresh, the rest modify in place
	require.Equal(t, 1, fake.freshCalls)
	require.Equal(t, 3, fake.modifyCalls)
}

func TestRunDropsUnlocatedCourses(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:pipeline/scrape")
	defer cleanup()

	fake := &fakePortal{
		pages: map[string]string{
			"NUR": fmt.Sprintf(onlineOnlyPage, "NUR"),
		},
	}

	doc, err := Run(context.Background(), Options{
		Portal:       fake,
		Subjects:     []string{"NUR"},
		SubjectDelay: time.Millisecond,
	})
	require.NoError(t, err)
	require.Empty(t, doc.Subjects)
}

func TestRunKeepsPartialResultsOnInterrupt(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:pipeline/scrape")
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakePortal{
		pages: map[string]string{
			"ACG": fmt.Sprintf(resultsPage, "ACG"),
			"ECO": fmt.Sprintf(resultsPage, "ECO"),
		},
	}
	fake.onSubmit = func(code string) {
		if code == "ECO" {
			cancel()
		}
	}

	doc, err := Run(ctx, Options{
		Portal:       fake,
		Subjects:     []string{"ACG", "ECO", "PHY"},
		SubjectDelay: time.Millisecond,
	})
	require.ErrorIs(t, err, context.Canceled)

	// everything collected before the interrupt is still there
	require.Len(t, doc.Subjects, 2)
	require.Equal(t, "ACG", doc.Subjects[0].Code)
	require.Equal(t, "ECO", doc.Subjects[1].Code)
}
