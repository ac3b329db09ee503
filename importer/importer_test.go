package importer

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const productPage = `<!DOCTYPE html>
<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="Silk Evening Dress" />
<meta property="og:description" content="Hand-stitched silk dress." />
<meta property="og:image" content="/images/dress.jpg" />
</head><body><h1>ignored</h1></body></html>`

func TestFetchExtractsOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productPage)
	}))
	defer srv.Close()

	im := New()
	im.Client = srv.Client()

	item, err := im.Fetch(srv.URL + "/p/dress")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if item.Title != "Silk Evening Dress" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Description != "Hand-stitched silk dress." {
		t.Errorf("description = %q", item.Description)
	}
	if item.ImageURL != srv.URL+"/images/dress.jpg" {
		t.Errorf("image = %q, want absolute URL", item.ImageURL)
	}
}

func TestFetchFallsBackToTitleTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Plain Dress</title></head>
<body><img src="http://cdn.example.com/x.jpg"></body></html>`)
	}))
	defer srv.Close()

	im := New()
	im.Client = srv.Client()

	item, err := im.Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if item.Title != "Plain Dress" {
		t.Errorf("title = %q", item.Title)
	}
	if item.ImageURL != "http://cdn.example.com/x.jpg" {
		t.Errorf("image = %q", item.ImageURL)
	}
}

func TestFetchRejectsImagelessPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>No Pictures Here</title></head><body></body></html>`)
	}))
	defer srv.Close()

	im := New()
	im.Client = srv.Client()

	if _, err := im.Fetch(srv.URL); err == nil {
		t.Fatal("expected error for page without an image")
	}
}
