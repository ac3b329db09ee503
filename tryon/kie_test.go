package tryon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewKieProviderRequiresAPIKey(t *testing.T) {
	_, err := NewKieProvider("", "", nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestKieSubmit(t *testing.T) {
	var gotAuth string
	var gotBody kieGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != kieGeneratePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"code": 200,
			"msg":  "ok",
			"data": map[string]string{"taskId": "task-42"},
		})
	}))
	defer srv.Close()

	p, err := NewKieProvider("secret-key", srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	sub, err := p.Submit(context.Background(), Request{
		Prompt:  "try it on",
		Person:  RemoteImage("https://cdn/p.jpg"),
		Garment: RemoteImage("https://cdn/g.png"),
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.TaskID != "task-42" {
		t.Errorf("task id = %q, want task-42", sub.TaskID)
	}
	if sub.Image != nil {
		t.Error("expected no inline image from async submit")
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Model != "flux-kontext-pro" || gotBody.AspectRatio != "3:4" || gotBody.OutputFormat != "png" {
		t.Errorf("unexpected request fields: %+v", gotBody)
	}
	if gotBody.InputImage != "https://cdn/p.jpg" {
		t.Errorf("inputImage = %q", gotBody.InputImage)
	}
}

func TestKieSubmitNonSuccessCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 402, "msg": "insufficient credits"})
	}))
	defer srv.Close()

	p, _ := NewKieProvider("k", srv.URL, srv.Client())
	_, err := p.Submit(context.Background(), Request{Person: RemoteImage("https://x/p"), Garment: RemoteImage("https://x/g")})

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestKieSubmitHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, _ := NewKieProvider("k", srv.URL, srv.Client())
	_, err := p.Submit(context.Background(), Request{Person: RemoteImage("https://x/p"), Garment: RemoteImage("https://x/g")})

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestKiePollStates(t *testing.T) {
	cases := []struct {
		name      string
		flag      int
		resultURL string
		want      TaskState
	}{
		{"processing", 0, "", TaskProcessing},
		{"succeeded", 1, "https://cdn/result.png", TaskSucceeded},
		{"succeeded without image", 1, "", TaskFailed},
		{"failed", 2, "", TaskFailed},
		{"failed hard", 3, "", TaskFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != kieRecordPath {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("taskId") != "task-42" {
					t.Errorf("taskId = %q", r.URL.Query().Get("taskId"))
				}
				json.NewEncoder(w).Encode(map[string]any{
					"code": 200,
					"msg":  "ok",
					"data": map[string]any{
						"successFlag":    tc.flag,
						"resultImageUrl": tc.resultURL,
					},
				})
			}))
			defer srv.Close()

			p, _ := NewKieProvider("k", srv.URL, srv.Client())
			res, err := p.Poll(context.Background(), "task-42")
			if err != nil {
				t.Fatalf("Poll failed: %v", err)
			}
			if res.State != tc.want {
				t.Errorf("state = %v, want %v", res.State, tc.want)
			}
			if tc.want == TaskSucceeded && (res.Image == nil || res.Image.URL != tc.resultURL) {
				t.Errorf("image = %+v, want URL %s", res.Image, tc.resultURL)
			}
		})
	}
}

func TestKieEndToEndThroughOrchestrator(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case kieGeneratePath:
			json.NewEncoder(w).Encode(map[string]any{
				"code": 200, "msg": "ok",
				"data": map[string]string{"taskId": "task-7"},
			})
		case kieRecordPath:
			polls++
			flag, url := 0, ""
			if polls >= 3 {
				flag, url = 1, "https://cdn/final.png"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"code": 200, "msg": "ok",
				"data": map[string]any{"successFlag": flag, "resultImageUrl": url},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p, _ := NewKieProvider("k", srv.URL, srv.Client())
	recs := &fakeRecords{}
	o := NewOrchestrator(p, nil, recs, fastOpts())

	got, err := o.Run(context.Background(), testIdentity, testSource, testGarment)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.URL != "https://cdn/final.png" {
		t.Errorf("result = %q", got.URL)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
	if len(recs.inserts) != 1 {
		t.Errorf("record inserts = %d, want 1", len(recs.inserts))
	}
}
