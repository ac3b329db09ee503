package tryon

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProvider counts calls and scripts poll outcomes.
type fakeProvider struct {
	mode        InputMode
	submitCalls int
	pollCalls   int

	submitImage *ImageRef
	submitTask  string
	submitErr   error

	// pollStates is consumed one entry per Poll call; the last entry
	// repeats once exhausted.
	pollStates []PollResult
	pollErr    error
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Mode() InputMode { return f.mode }

func (f *fakeProvider) Submit(ctx context.Context, req Request) (Submission, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return Submission{}, f.submitErr
	}
	return Submission{Image: f.submitImage, TaskID: f.submitTask}, nil
}

func (f *fakeProvider) Poll(ctx context.Context, taskID string) (PollResult, error) {
	f.pollCalls++
	if f.pollErr != nil {
		return PollResult{}, f.pollErr
	}
	i := f.pollCalls - 1
	if i >= len(f.pollStates) {
		i = len(f.pollStates) - 1
	}
	return f.pollStates[i], nil
}

type fakeRecords struct {
	inserts []Record
	err     error
}

func (f *fakeRecords) Insert(ctx context.Context, rec Record) error {
	f.inserts = append(f.inserts, rec)
	return f.err
}

type fakeObjects struct {
	uploads int
	url     string
	err     error
}

func (f *fakeObjects) Upload(ctx context.Context, data []byte, contentType, path string) (string, error) {
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func fastOpts() Options {
	return Options{PollInterval: time.Millisecond, MaxPollAttempts: 60}
}

var (
	testIdentity = Identity{UserID: "user-1"}
	testGarment  = Garment{ID: "item-9", ImageURL: "https://cdn.example.com/catalog/dress.png"}
	testSource   = RemoteImage("https://cdn.example.com/tryon/photo.jpg")
)

func TestRunMissingSourceImage(t *testing.T) {
	p := &fakeProvider{mode: InputURL}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, ImageRef{}, testGarment)

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if p.submitCalls != 0 || p.pollCalls != 0 {
		t.Errorf("expected no provider calls, got submit=%d poll=%d", p.submitCalls, p.pollCalls)
	}
	if len(recs.inserts) != 0 {
		t.Errorf("expected no record inserts, got %d", len(recs.inserts))
	}
}

func TestRunMissingGarment(t *testing.T) {
	p := &fakeProvider{mode: InputURL}
	o := NewOrchestrator(p, nil, nil, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, testSource, Garment{})

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if p.submitCalls != 0 {
		t.Errorf("expected no submit calls, got %d", p.submitCalls)
	}
}

func TestRunMissingIdentity(t *testing.T) {
	p := &fakeProvider{mode: InputURL}
	o := NewOrchestrator(p, nil, nil, fastOpts())

	_, err := o.Run(context.Background(), Identity{}, testSource, testGarment)

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestRunSynchronousProvider(t *testing.T) {
	img := RemoteImage("https://cdn.example.com/results/out.png")
	p := &fakeProvider{mode: InputURL, submitImage: &img}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	got, err := o.Run(context.Background(), testIdentity, testSource, testGarment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL != img.URL {
		t.Errorf("result = %q, want %q", got.URL, img.URL)
	}
	if p.submitCalls != 1 || p.pollCalls != 0 {
		t.Errorf("expected exactly one network call, got submit=%d poll=%d", p.submitCalls, p.pollCalls)
	}
}

func TestRunPollsUntilSuccess(t *testing.T) {
	result := RemoteImage("https://cdn.example.com/results/out.png")
	p := &fakeProvider{
		mode:       InputURL,
		submitTask: "task-123",
		pollStates: []PollResult{
			{State: TaskProcessing},
			{State: TaskProcessing},
			{State: TaskProcessing},
			{State: TaskSucceeded, Image: &result},
		},
	}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	got, err := o.Run(context.Background(), testIdentity, testSource, testGarment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL != result.URL {
		t.Errorf("result = %q, want %q", got.URL, result.URL)
	}
	if p.submitCalls != 1 {
		t.Errorf("submit calls = %d, want 1", p.submitCalls)
	}
	if p.pollCalls != 4 {
		t.Errorf("poll calls = %d, want 4", p.pollCalls)
	}
}

func TestRunPollBudgetExhausted(t *testing.T) {
	p := &fakeProvider{
		mode:       InputURL,
		submitTask: "task-stuck",
		pollStates: []PollResult{{State: TaskProcessing}},
	}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, testSource, testGarment)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if p.pollCalls != 60 {
		t.Errorf("poll calls = %d, want exactly 60", p.pollCalls)
	}
	if len(recs.inserts) != 0 {
		t.Errorf("expected no record inserts on timeout, got %d", len(recs.inserts))
	}
}

func TestRunProviderReportsFailure(t *testing.T) {
	p := &fakeProvider{
		mode:       InputURL,
		submitTask: "task-bad",
		pollStates: []PollResult{{State: TaskFailed, Message: "generation failed"}},
	}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, testSource, testGarment)

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if p.pollCalls != 1 {
		t.Errorf("poll calls = %d, want 1 (no polls after failure)", p.pollCalls)
	}
	if len(recs.inserts) != 0 {
		t.Errorf("expected no record inserts on failure, got %d", len(recs.inserts))
	}
}

func TestRunEmptySuccessIsProviderError(t *testing.T) {
	p := &fakeProvider{
		mode:       InputURL,
		submitTask: "task-empty",
		pollStates: []PollResult{{State: TaskSucceeded}},
	}
	o := NewOrchestrator(p, nil, nil, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, testSource, testGarment)

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError for empty result, got %v", err)
	}
}

func TestRunInsertsExactlyOneRecord(t *testing.T) {
	img := RemoteImage("https://cdn.example.com/results/out.png")
	p := &fakeProvider{mode: InputURL, submitImage: &img}
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	_, err := o.Run(context.Background(), testIdentity, testSource, testGarment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs.inserts) != 1 {
		t.Fatalf("record inserts = %d, want 1", len(recs.inserts))
	}
	rec := recs.inserts[0]
	if rec.UserID != testIdentity.UserID {
		t.Errorf("record user = %q, want %q", rec.UserID, testIdentity.UserID)
	}
	if rec.GarmentItemID != testGarment.ID {
		t.Errorf("record garment = %q, want %q", rec.GarmentItemID, testGarment.ID)
	}
	if rec.ResultImageRef != img.URL {
		t.Errorf("record result = %q, want %q", rec.ResultImageRef, img.URL)
	}
	if rec.SourceImageRef != testSource.URL {
		t.Errorf("record source = %q, want %q", rec.SourceImageRef, testSource.URL)
	}
}

func TestRunRecordInsertFailureDoesNotFailRun(t *testing.T) {
	img := RemoteImage("https://cdn.example.com/results/out.png")
	p := &fakeProvider{mode: InputURL, submitImage: &img}
	recs := &fakeRecords{err: errors.New("db down")}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	got, err := o.Run(context.Background(), testIdentity, testSource, testGarment)
	if err != nil {
		t.Fatalf("expected success despite insert failure, got %v", err)
	}
	if got.URL != img.URL {
		t.Errorf("result = %q, want %q", got.URL, img.URL)
	}
}

func TestRunUploadsInlineSourceForURLProvider(t *testing.T) {
	img := RemoteImage("https://cdn.example.com/results/out.png")
	p := &fakeProvider{mode: InputURL, submitImage: &img}
	objs := &fakeObjects{url: "https://cdn.example.com/tryon/uploaded.jpg"}
	o := NewOrchestrator(p, objs, nil, fastOpts())

	inline := InlineImage([]byte{0xff, 0xd8, 0xff}, "image/jpeg")
	_, err := o.Run(context.Background(), testIdentity, inline, testGarment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if objs.uploads != 1 {
		t.Errorf("object store uploads = %d, want 1", objs.uploads)
	}
}

func TestRunContextCancelStopsPolling(t *testing.T) {
	p := &fakeProvider{
		mode:       InputURL,
		submitTask: "task-slow",
		pollStates: []PollResult{{State: TaskProcessing}},
	}
	o := NewOrchestrator(p, nil, nil, Options{PollInterval: 50 * time.Millisecond, MaxPollAttempts: 60})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := o.Run(ctx, testIdentity, testSource, testGarment)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
}
