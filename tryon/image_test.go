package tryon

import (
	"bytes"
	"strings"
	"testing"
)

func TestDataURIRoundTrip(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0xfe, 0xff}
	ref := InlineImage(original, "image/png")

	uri := ref.DataURI()
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %s", uri)
	}

	parsed, err := ParseImageRef(uri)
	if err != nil {
		t.Fatalf("ParseImageRef failed: %v", err)
	}
	if parsed.MIME != "image/png" {
		t.Errorf("mime = %q, want image/png", parsed.MIME)
	}
	if !bytes.Equal(parsed.Data, original) {
		t.Errorf("round-tripped bytes differ: got %x, want %x", parsed.Data, original)
	}
}

func TestParseImageRefDefaultsMIME(t *testing.T) {
	// A data URI with no media type defaults to image/jpeg.
	ref, err := ParseImageRef("data:;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("ParseImageRef failed: %v", err)
	}
	if ref.MIME != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", ref.MIME)
	}
	if string(ref.Data) != "hello" {
		t.Errorf("data = %q, want hello", ref.Data)
	}
}

func TestParseImageRefURL(t *testing.T) {
	ref, err := ParseImageRef("https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("ParseImageRef failed: %v", err)
	}
	if !ref.IsURL() || ref.URL != "https://cdn.example.com/a.png" {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func TestParseImageRefRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "ftp://x/y.png", "data:image/png,notbase64", "just words"} {
		if _, err := ParseImageRef(s); err == nil {
			t.Errorf("ParseImageRef(%q) succeeded, want error", s)
		}
	}
}

func TestImageRefZero(t *testing.T) {
	if !(ImageRef{}).IsZero() {
		t.Error("zero ImageRef should report IsZero")
	}
	if RemoteImage("https://x/a.png").IsZero() {
		t.Error("URL ref should not be zero")
	}
	if InlineImage([]byte{1}, "").IsZero() {
		t.Error("inline ref should not be zero")
	}
}
