package tryon

import "context"

// InputMode says which image representation a provider accepts.
type InputMode int

const (
	// InputURL providers need both images as fetchable URLs.
	InputURL InputMode = iota
	// InputInline providers need both images as embedded base64 payloads.
	InputInline
)

// Request is a single generation request after normalization: both images
// are already in the representation the provider's Mode demands.
type Request struct {
	Person  ImageRef
	Garment ImageRef
	Prompt  string
}

// Submission is what a provider returns from Submit. Synchronous
// providers fill Image; asynchronous ones return a TaskID to poll.
type Submission struct {
	Image  *ImageRef
	TaskID string
}

// TaskState is the status of an asynchronous generation task.
type TaskState int

const (
	TaskProcessing TaskState = iota
	TaskSucceeded
	TaskFailed
)

// PollResult is one status observation of an asynchronous task. Image is
// set only when State is TaskSucceeded.
type PollResult struct {
	State   TaskState
	Image   *ImageRef
	Message string
}

// Provider is the external generative-image service behind the pipeline.
// A provider that only ever resolves synchronously just returns an Image
// from Submit; one that works through task ids also implements Poller.
type Provider interface {
	Name() string
	Mode() InputMode
	Submit(ctx context.Context, req Request) (Submission, error)
}

// Poller is the optional asynchronous half of a Provider.
type Poller interface {
	Poll(ctx context.Context, taskID string) (PollResult, error)
}

// ObjectStore uploads a blob and returns a fetchable URL for it. Used to
// turn inline user photos into URLs for URL-only providers.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType, path string) (string, error)
}

// RecordStore persists one audit record per successful run. Inserts are
// best-effort from the pipeline's perspective.
type RecordStore interface {
	Insert(ctx context.Context, rec Record) error
}

// Record is the audit row written after a successful generation.
type Record struct {
	UserID         string
	SourceImageRef string
	GarmentItemID  string
	ResultImageRef string
}
