package install

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/infrastructure/winget"
	"github.com/doeshing/installez/internal/pkg/logger"
)

type pmCall struct {
	op  string
	app domain.AppID
}

// fakeManager scripts package manager responses per identifier.
type fakeManager struct {
	search   map[domain.AppID]string
	list     map[domain.AppID]string
	installs map[domain.AppID][]domain.InstallAttempt
	errs     map[string]error // keyed by "op app"
	calls    []pmCall
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		search:   map[domain.AppID]string{},
		list:     map[domain.AppID]string{},
		installs: map[domain.AppID][]domain.InstallAttempt{},
		errs:     map[string]error{},
	}
}

func (f *fakeManager) Name() string { return "fake" }

func (f *fakeManager) Search(_ context.Context, app domain.AppID) (domain.ProcessResult, error) {
	f.calls = append(f.calls, pmCall{"search", app})
	if err := f.errs["search "+string(app)]; err != nil {
		return domain.ProcessResult{}, err
	}
	return domain.ProcessResult{Output: f.search[app]}, nil
}

func (f *fakeManager) List(_ context.Context, app domain.AppID) (domain.ProcessResult, error) {
	f.calls = append(f.calls, pmCall{"list", app})
	if err := f.errs["list "+string(app)]; err != nil {
		return domain.ProcessResult{}, err
	}
	return domain.ProcessResult{Output: f.list[app]}, nil
}

func (f *fakeManager) Install(_ context.Context, app domain.AppID, onLine func(domain.OutputLine)) (domain.InstallAttempt, error) {
	f.calls = append(f.calls, pmCall{"install", app})
	if err := f.errs["install "+string(app)]; err != nil {
		return domain.InstallAttempt{}, err
	}
	queue := f.installs[app]
	if len(queue) == 0 {
		return domain.InstallAttempt{ExitCode: 0}, nil
	}
	attempt := queue[0]
	if len(queue) > 1 {
		f.installs[app] = queue[1:]
	}
	for _, l := range attempt.Lines {
		onLine(l)
	}
	return attempt, nil
}

func (f *fakeManager) count(op string, app domain.AppID) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op && c.app == app {
			n++
		}
	}
	return n
}

type shellEvent struct {
	alert bool
	text  string
}

type recordingShell struct {
	events []shellEvent
}

func (r *recordingShell) Emit(line string)     { r.events = append(r.events, shellEvent{text: line}) }
func (r *recordingShell) Alert(message string) { r.events = append(r.events, shellEvent{alert: true, text: message}) }

func (r *recordingShell) emitted() []string {
	var out []string
	for _, e := range r.events {
		if !e.alert {
			out = append(out, e.text)
		}
	}
	return out
}

func (r *recordingShell) alerts() []string {
	var out []string
	for _, e := range r.events {
		if e.alert {
			out = append(out, e.text)
		}
	}
	return out
}

func (r *recordingShell) last() string {
	out := r.emitted()
	if len(out) == 0 {
		return ""
	}
	return out[len(out)-1]
}

func newService(pm *fakeManager) *Service {
	return &Service{
		PackageManager: pm,
		Classifier:     winget.NewClassifier(domain.PackageManagerSettings{}),
		Logger:         logger.Discard(),
	}
}

func request(ids ...string) domain.InstallRequest {
	return NewRequest(ids)
}

func stdout(text string) domain.OutputLine {
	return domain.OutputLine{Stream: domain.StreamStdout, Text: text}
}

func stderr(text string) domain.OutputLine {
	return domain.OutputLine{Stream: domain.StreamStderr, Text: text}
}

func TestProcessNotFound(t *testing.T) {
	pm := newFakeManager()
	pm.search["X"] = "No package found matching input criteria."
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, domain.OutcomeNotAvailable, res.Results[0].Outcome)
	assert.Equal(t, "The app X was not found in Winget.", shell.last())
	assert.Zero(t, pm.count("list", "X"))
	assert.Zero(t, pm.count("install", "X"))
}

func TestProcessAlreadyInstalled(t *testing.T) {
	pm := newFakeManager()
	pm.search["X"] = "Name Id Version\nApp X 1.0"
	pm.list["X"] = "Name Id Version\nApp X 1.0"
	shell := &recordingShell{}

	_, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, "The app X is already installed.", shell.last())
	assert.Equal(t, 1, pm.count("list", "X"))
	assert.Zero(t, pm.count("install", "X"))
}

func TestProcessInstallsOnFirstAttempt(t *testing.T) {
	pm := newFakeManager()
	pm.installs["X"] = []domain.InstallAttempt{{
		Lines:    []domain.OutputLine{stdout("Downloading"), stdout("Successfully installed")},
		ExitCode: 0,
	}}
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, "Successfully installed X.", shell.last())
	assert.Equal(t, 1, pm.count("install", "X"))
	assert.Equal(t, 1, res.Results[0].Attempts)
}

func TestProcessRetriesOnceOnTermsOfService(t *testing.T) {
	pm := newFakeManager()
	pm.installs["X"] = []domain.InstallAttempt{
		{Lines: []domain.OutputLine{stderr("You must agree to the Terms of Service")}, ExitCode: 1},
		{Lines: []domain.OutputLine{stdout("Successfully installed")}, ExitCode: 0},
	}
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, 2, pm.count("install", "X"))
	assert.Equal(t, 2, res.Results[0].Attempts)
	assert.Equal(t, domain.OutcomeInstalled, res.Results[0].Outcome)
	assert.Equal(t, "Successfully installed X.", shell.last())
}

func TestProcessRetryOutcomeFollowsSecondAttempt(t *testing.T) {
	pm := newFakeManager()
	pm.installs["X"] = []domain.InstallAttempt{
		{Lines: []domain.OutputLine{stdout("Terms of Service must be accepted")}, ExitCode: 0},
		{Lines: []domain.OutputLine{stdout("Terms of Service must be accepted")}, ExitCode: 7},
	}
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	// never more than one retry, even if the marker shows up again
	assert.Equal(t, 2, pm.count("install", "X"))
	assert.Equal(t, 7, res.Results[0].ExitCode)
	assert.Equal(t, "Failed to install X.", shell.last())
}

func TestProcessFailureWithoutRetry(t *testing.T) {
	pm := newFakeManager()
	pm.installs["X"] = []domain.InstallAttempt{{Lines: []domain.OutputLine{stderr("installer failed")}, ExitCode: 2}}
	shell := &recordingShell{}

	_, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, 1, pm.count("install", "X"))
	assert.Equal(t, "Failed to install X.", shell.last())
}

func TestProcessStreamsBeforeSummary(t *testing.T) {
	pm := newFakeManager()
	pm.installs["X"] = []domain.InstallAttempt{{
		Lines:    []domain.OutputLine{stdout("Found X"), stderr("warning: slow mirror"), stdout("Installed")},
		ExitCode: 0,
	}}
	shell := &recordingShell{}

	_, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Found X",
		"Error: warning: slow mirror",
		"Installed",
		"Successfully installed X.",
	}, shell.emitted())
}

func TestProcessPreservesOrderAndDuplicates(t *testing.T) {
	pm := newFakeManager()
	pm.search["missing"] = "No package found"
	pm.list["present"] = "present 1.0"
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("new", "missing", "present", "new"), shell)
	require.NoError(t, err)

	require.Len(t, res.Results, 4)
	assert.Equal(t, strings.Join([]string{
		"Successfully installed new.",
		"The app missing was not found in Winget.",
		"The app present is already installed.",
		"Successfully installed new.",
	}, "\n"), shell.last())
	assert.Equal(t, 2, pm.count("search", "new"))
	assert.Equal(t, 2, pm.count("install", "new"))
}

func TestProcessEmptyBatch(t *testing.T) {
	shell := &recordingShell{}
	res, err := newService(newFakeManager()).Process(context.Background(), request(), shell)
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, []string{""}, shell.emitted())
}

func TestProcessLaunchErrorAlertsAndContinues(t *testing.T) {
	pm := newFakeManager()
	pm.errs["search broken"] = errors.New("exec: \"winget\": executable file not found in %PATH%")
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("broken", "ok"), shell)
	require.NoError(t, err)

	require.Len(t, shell.alerts(), 1)
	assert.Contains(t, shell.alerts()[0], "An error occurred while checking if broken is available")
	assert.Equal(t, domain.OutcomeFailed, res.Results[0].Outcome)
	assert.Error(t, res.Results[0].Err)
	assert.Equal(t, domain.OutcomeInstalled, res.Results[1].Outcome)
	assert.Equal(t, "Failed to install broken.\nSuccessfully installed ok.", shell.last())
	assert.Zero(t, pm.count("list", "broken"))
}

func TestProcessInstallLaunchError(t *testing.T) {
	pm := newFakeManager()
	pm.errs["install X"] = errors.New("pipe closed")
	shell := &recordingShell{}

	res, err := newService(pm).Process(context.Background(), request("X"), shell)
	require.NoError(t, err)

	assert.Equal(t, []string{"An error occurred while installing X: pipe closed"}, shell.alerts())
	assert.Equal(t, 1, res.Results[0].Attempts)
	assert.Equal(t, "Failed to install X.", shell.last())
}

func TestProcessCancelledContextSpawnsNothing(t *testing.T) {
	pm := newFakeManager()
	shell := &recordingShell{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newService(pm).Process(ctx, request("a", "b"), shell)
	require.NoError(t, err)

	assert.Empty(t, pm.calls)
	assert.Empty(t, shell.alerts())
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Failed to install a.\nFailed to install b.", shell.last())
}

func TestProcessMissingDependencies(t *testing.T) {
	_, err := (&Service{}).Process(context.Background(), request("X"), &recordingShell{})
	require.Error(t, err)

	_, err = newService(newFakeManager()).Process(context.Background(), request("X"), nil)
	require.Error(t, err)
}

type memoryHistory struct {
	saved []domain.BatchRecord
}

// Save rejects done contexts the way a database transaction would.
func (m *memoryHistory) Save(ctx context.Context, rec domain.BatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.saved = append(m.saved, rec)
	return nil
}
func (m *memoryHistory) Batches(context.Context, int) ([]domain.BatchRecord, error) { return m.saved, nil }
func (m *memoryHistory) Clear(context.Context) error                              { m.saved = nil; return nil }
func (m *memoryHistory) Path() string                                             { return ":memory:" }

func TestProcessRecordsHistory(t *testing.T) {
	pm := newFakeManager()
	pm.search["gone"] = "No package found"
	hist := &memoryHistory{}
	svc := newService(pm)
	svc.History = hist
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	req := request("gone", "fresh")
	_, err := svc.Process(context.Background(), req, &recordingShell{})
	require.NoError(t, err)

	require.Len(t, hist.saved, 1)
	rec := hist.saved[0]
	assert.Equal(t, req.ID, rec.ID)
	assert.Equal(t, fixed, rec.StartedAt)
	require.Len(t, rec.Apps, 2)
	assert.Equal(t, domain.OutcomeNotAvailable, rec.Apps[0].Outcome)
	assert.Equal(t, domain.OutcomeInstalled, rec.Apps[1].Outcome)
}

type scriptedSource struct {
	items []sourceItem
}

type sourceItem struct {
	req domain.InstallRequest
	err error
}

func (s *scriptedSource) ReceiveBatch(context.Context) (domain.InstallRequest, error) {
	if len(s.items) == 0 {
		return domain.InstallRequest{}, io.EOF
	}
	next := s.items[0]
	s.items = s.items[1:]
	return next.req, next.err
}

func TestServeSkipsMalformedAndStopsOnEOF(t *testing.T) {
	pm := newFakeManager()
	shell := &recordingShell{}
	_, malformed := DecodeRequest([]byte(`{"apps":["X"]}`))
	source := &scriptedSource{items: []sourceItem{
		{err: malformed},
		{req: request("X")},
	}}

	err := newService(pm).Serve(context.Background(), source, shell)
	require.NoError(t, err)
	assert.Equal(t, []string{"Successfully installed X."}, shell.emitted())
}

func TestServeReportsMalformedWhenEnabled(t *testing.T) {
	shell := &recordingShell{}
	_, malformed := DecodeRequest([]byte(`42`))
	source := &scriptedSource{items: []sourceItem{{err: malformed}}}

	svc := newService(newFakeManager())
	svc.ReportMalformed = true
	require.NoError(t, svc.Serve(context.Background(), source, shell))

	require.Len(t, shell.emitted(), 1)
	assert.True(t, strings.HasPrefix(shell.emitted()[0], "Could not read install request:"))
}

func TestServePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("stdin closed unexpectedly")
	source := &scriptedSource{items: []sourceItem{{err: boom}}}

	err := newService(newFakeManager()).Serve(context.Background(), source, &recordingShell{})
	assert.ErrorIs(t, err, boom)
}

type labellingShell struct {
	recordingShell
	summaries []string
}

func (l *labellingShell) EmitSummary(summary string) { l.summaries = append(l.summaries, summary) }

func TestProcessUsesSummaryShellWhenAvailable(t *testing.T) {
	pm := newFakeManager()
	pm.installs["Git.Git"] = []domain.InstallAttempt{{
		Lines: []domain.OutputLine{{Stream: domain.StreamStdout, Text: "Found Git"}},
	}}
	shell := &labellingShell{}

	_, err := newService(pm).Process(context.Background(), request("Git.Git"), shell)
	require.NoError(t, err)
	assert.Equal(t, []string{"Found Git"}, shell.emitted())
	assert.Equal(t, []string{"Successfully installed Git.Git."}, shell.summaries)
}

func TestProcessRecordsCancelledBatch(t *testing.T) {
	hist := &memoryHistory{}
	svc := newService(newFakeManager())
	svc.History = hist
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, request("a", "b"), &recordingShell{})
	require.NoError(t, err)

	require.Len(t, hist.saved, 1)
	require.Len(t, hist.saved[0].Apps, 2)
	assert.Equal(t, domain.OutcomeFailed, hist.saved[0].Apps[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, hist.saved[0].Apps[1].Outcome)
}
