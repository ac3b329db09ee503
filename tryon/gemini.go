package tryon

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.5-flash-image-preview"

// GeminiProvider is the inline-data single-shot alternative: both images
// travel embedded in the request and the generated image comes back in
// the same response. No polling.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates the client. A missing API key is a fatal
// configuration error, reported before any network call.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &ConfigError{Missing: "GEMINI_API_KEY"}
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: geminiModel}, nil
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) Mode() InputMode { return InputInline }

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Submit sends prompt + person + garment in one GenerateContent call and
// extracts the generated image from the response blobs.
func (p *GeminiProvider) Submit(ctx context.Context, req Request) (Submission, error) {
	model := p.client.GenerativeModel(p.model)

	parts := []genai.Part{
		genai.Text(req.Prompt),
		genai.ImageData(mimeSubtype(req.Person.MIME), req.Person.Data),
		genai.ImageData(mimeSubtype(req.Garment.MIME), req.Garment.Data),
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return Submission{}, &ProviderError{Op: "submit", Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("no content generated")}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			img := InlineImage(blob.Data, blob.MIMEType)
			return Submission{Image: &img}, nil
		}
	}

	return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("response contained no image part")}
}

// mimeSubtype turns "image/png" into the bare "png" the SDK wants.
func mimeSubtype(mime string) string {
	if mime == "" {
		return "jpeg"
	}
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		return mime[i+1:]
	}
	return mime
}
