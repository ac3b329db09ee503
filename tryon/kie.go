package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	kieDefaultBase  = "https://api.kie.ai"
	kieGeneratePath = "/api/v1/flux/kontext/generate"
	kieRecordPath   = "/api/v1/flux/kontext/record-info"
	kieModel        = "flux-kontext-pro"
	kieAspectRatio  = "3:4"
	kieOutputFormat = "png"
)

// KieProvider talks to the Kie.ai flux-kontext API: a URL-based
// submit-then-poll service. Both input images must be fetchable URLs.
type KieProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewKieProvider builds the provider. A missing API key is a fatal
// configuration error, reported before any network traffic.
func NewKieProvider(apiKey, baseURL string, client *http.Client) (*KieProvider, error) {
	if apiKey == "" {
		return nil, &ConfigError{Missing: "KIE_API_KEY"}
	}
	if baseURL == "" {
		baseURL = kieDefaultBase
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &KieProvider{apiKey: apiKey, baseURL: baseURL, client: client}, nil
}

func (p *KieProvider) Name() string    { return "kie" }
func (p *KieProvider) Mode() InputMode { return InputURL }

type kieGenerateRequest struct {
	Prompt       string `json:"prompt"`
	InputImage   string `json:"inputImage"`
	Model        string `json:"model"`
	AspectRatio  string `json:"aspectRatio"`
	OutputFormat string `json:"outputFormat"`
}

type kieGenerateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

type kieRecordResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		// 0 = processing, 1 = success, 2-3 = failed
		SuccessFlag    int    `json:"successFlag"`
		ResultImageURL string `json:"resultImageUrl"`
		OriginImageURL string `json:"originImageUrl"`
		CompleteTime   string `json:"completeTime"`
	} `json:"data"`
}

// Submit starts a generation task. The garment image rides in the prompt
// text alongside the person image URL, matching the flux-kontext contract.
func (p *KieProvider) Submit(ctx context.Context, req Request) (Submission, error) {
	prompt := fmt.Sprintf("%s\nFirst image (person): %s\nSecond image (clothing): %s",
		req.Prompt, req.Person.URL, req.Garment.URL)

	body, err := json.Marshal(kieGenerateRequest{
		Prompt:       prompt,
		InputImage:   req.Person.URL,
		Model:        kieModel,
		AspectRatio:  kieAspectRatio,
		OutputFormat: kieOutputFormat,
	})
	if err != nil {
		return Submission{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+kieGeneratePath, bytes.NewReader(body))
	if err != nil {
		return Submission{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Submission{}, &ProviderError{Op: "submit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("status %d: %s", resp.StatusCode, text)}
	}

	var out kieGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("bad response body: %w", err)}
	}
	if out.Code != 200 {
		return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("code %d: %s", out.Code, out.Msg)}
	}
	if out.Data.TaskID == "" {
		return Submission{}, &ProviderError{Op: "submit", Err: fmt.Errorf("response carried no task id")}
	}

	return Submission{TaskID: out.Data.TaskID}, nil
}

// Poll checks one task's status.
func (p *KieProvider) Poll(ctx context.Context, taskID string) (PollResult, error) {
	u := p.baseURL + kieRecordPath + "?taskId=" + url.QueryEscape(taskID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return PollResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return PollResult{}, &ProviderError{Op: "poll", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PollResult{}, &ProviderError{Op: "poll", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var out kieRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PollResult{}, &ProviderError{Op: "poll", Err: fmt.Errorf("bad response body: %w", err)}
	}

	switch {
	case out.Data.SuccessFlag == 1 && out.Data.ResultImageURL != "":
		img := RemoteImage(out.Data.ResultImageURL)
		return PollResult{State: TaskSucceeded, Image: &img}, nil
	case out.Data.SuccessFlag == 1:
		// Success flag without an image is an empty result, not a success.
		return PollResult{State: TaskFailed, Message: "empty result"}, nil
	case out.Data.SuccessFlag >= 2:
		return PollResult{State: TaskFailed, Message: out.Msg}, nil
	default:
		return PollResult{State: TaskProcessing}, nil
	}
}
