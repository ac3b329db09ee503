package tryon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// tryOnPrompt is the fixed instruction sent with every generation
// request. Identity of the person must survive; only the clothing changes.
const tryOnPrompt = `Virtual try-on: take the person from the first image and dress them in the clothing shown in the second image.
Keep the person's face, hair and body shape exactly the same.
Only replace their clothes with the garment from the second image.
Produce one coherent, photorealistic image with a neutral or matching background.
No collage, no duplicated faces or identities.`

// Identity is the authenticated caller on whose behalf the pipeline runs.
type Identity struct {
	UserID string
}

// Garment is the catalog entry being tried on. ImageURL is the stored,
// publicly fetchable image of the item.
type Garment struct {
	ID       string
	ImageURL string
}

// Options bound the asynchronous completion loop. The defaults encode
// the 2-second / 60-attempt contract of the polling provider.
type Options struct {
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPClient      *http.Client
}

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 60
)

// Orchestrator drives one try-on request end to end. It is stateless
// across invocations; concurrent runs do not share anything beyond the
// injected collaborators.
type Orchestrator struct {
	provider Provider
	objects  ObjectStore
	records  RecordStore
	opts     Options
}

// NewOrchestrator wires the pipeline with its collaborators. records may
// be nil when no audit trail is wanted (tests, CLI experiments).
func NewOrchestrator(provider Provider, objects ObjectStore, records RecordStore, opts Options) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPollAttempts <= 0 {
		opts.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Orchestrator{provider: provider, objects: objects, records: records, opts: opts}
}

// Run validates the inputs, normalizes both images to the provider's
// representation, submits the request, resolves completion (immediately
// or by bounded polling) and, on success only, inserts one audit record.
// The returned ImageRef may be remote or inline depending on provider.
func (o *Orchestrator) Run(ctx context.Context, identity Identity, source ImageRef, garment Garment) (ImageRef, error) {
	if identity.UserID == "" {
		return ImageRef{}, &InputError{Reason: "missing authenticated identity"}
	}
	if source.IsZero() {
		return ImageRef{}, &InputError{Reason: "missing source image"}
	}
	if garment.ID == "" || garment.ImageURL == "" {
		return ImageRef{}, &InputError{Reason: "missing garment selection"}
	}

	req, err := o.normalize(ctx, source, garment)
	if err != nil {
		return ImageRef{}, err
	}

	sub, err := o.provider.Submit(ctx, req)
	if err != nil {
		return ImageRef{}, err
	}

	result, err := o.resolve(ctx, sub)
	if err != nil {
		return ImageRef{}, err
	}

	if o.records != nil {
		rec := Record{
			UserID:         identity.UserID,
			SourceImageRef: source.String(),
			GarmentItemID:  garment.ID,
			ResultImageRef: result.String(),
		}
		if err := o.records.Insert(ctx, rec); err != nil {
			// Best-effort audit trail: the user still gets their result.
			log.Printf("[tryon] failed to save result record for user %s: %v", identity.UserID, err)
		}
	}

	return result, nil
}

// normalize converts both images to what the active provider accepts.
func (o *Orchestrator) normalize(ctx context.Context, source ImageRef, garment Garment) (Request, error) {
	req := Request{Prompt: tryOnPrompt, Garment: RemoteImage(garment.ImageURL)}

	switch o.provider.Mode() {
	case InputURL:
		// Garment images come from the catalog and already have URLs;
		// an inline user photo must be parked in object storage first.
		if source.IsURL() {
			req.Person = source
			break
		}
		if o.objects == nil {
			return Request{}, &ConfigError{Missing: "object store for URL-based provider"}
		}
		path := fmt.Sprintf("tryon/%d-photo", time.Now().UnixNano())
		url, err := o.objects.Upload(ctx, source.Data, source.MIME, path)
		if err != nil {
			return Request{}, fmt.Errorf("failed to upload source image: %w", err)
		}
		req.Person = RemoteImage(url)
	case InputInline:
		person, err := fetchInline(ctx, o.opts.HTTPClient, source)
		if err != nil {
			return Request{}, &InputError{Reason: err.Error()}
		}
		garmentRef, err := fetchInline(ctx, o.opts.HTTPClient, req.Garment)
		if err != nil {
			return Request{}, &InputError{Reason: "garment image not retrievable: " + err.Error()}
		}
		req.Person = person
		req.Garment = garmentRef
	}
	return req, nil
}

// resolve turns a Submission into a final image, polling when needed.
// Polls are strictly sequential: sleep, check, repeat.
func (o *Orchestrator) resolve(ctx context.Context, sub Submission) (ImageRef, error) {
	if sub.Image != nil {
		return *sub.Image, nil
	}
	if sub.TaskID == "" {
		return ImageRef{}, &ProviderError{Op: "submit", Err: fmt.Errorf("no image and no task id in response")}
	}

	poller, ok := o.provider.(Poller)
	if !ok {
		return ImageRef{}, &ProviderError{Op: "submit", Err: fmt.Errorf("provider %s returned task id but cannot poll", o.provider.Name())}
	}

	for attempt := 0; attempt < o.opts.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ImageRef{}, ctx.Err()
		case <-time.After(o.opts.PollInterval):
		}

		res, err := poller.Poll(ctx, sub.TaskID)
		if err != nil {
			return ImageRef{}, err
		}
		switch res.State {
		case TaskSucceeded:
			if res.Image == nil || res.Image.IsZero() {
				return ImageRef{}, &ProviderError{Op: "poll", Err: fmt.Errorf("task %s succeeded without a result image", sub.TaskID)}
			}
			return *res.Image, nil
		case TaskFailed:
			msg := res.Message
			if msg == "" {
				msg = "provider reported failure"
			}
			return ImageRef{}, &ProviderError{Op: "poll", Err: fmt.Errorf("task %s: %s", sub.TaskID, msg)}
		}
		// TaskProcessing: keep waiting.
	}

	return ImageRef{}, &TimeoutError{Attempts: o.opts.MaxPollAttempts}
}
