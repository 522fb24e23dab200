package handlers

import (
	"net/http"
	"testing"

	"github.com/studybuddy/go-study-backend/internal/services"
)

func TestPageImage_RedirectsToSignedURL(t *testing.T) {
	ret := &fakeRetrieval{image: &services.Artifact{URL: "https://store.example/images/k/page_1.jpg?sig=x"}}
	r := newTestRouter(t, testDeps{retrieval: ret})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/image/1", nil, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != ret.image.URL {
		t.Fatalf("Location = %q", loc)
	}
}

func TestPageImage_ServesBytesWhenLocalOnly(t *testing.T) {
	ret := &fakeRetrieval{image: &services.Artifact{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}}
	r := newTestRouter(t, testDeps{retrieval: ret})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/image/1", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if w.Body.String() != "jpeg-bytes" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestPageImage_InvalidPageNumber(t *testing.T) {
	r := newTestRouter(t, testDeps{})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/image/zero", nil, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if decodeBody(t, w)["error"] != "Invalid page number" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestPageImage_NotFound(t *testing.T) {
	ret := &fakeRetrieval{imageErr: services.ErrNotFound}
	r := newTestRouter(t, testDeps{retrieval: ret})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/image/9", nil, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if decodeBody(t, w)["error"] != "Image file not found" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestPageAudio_RedirectsToSignedURL(t *testing.T) {
	ret := &fakeRetrieval{audio: &services.Artifact{URL: "https://store.example/audio/k/page_1.mp3?sig=x"}}
	r := newTestRouter(t, testDeps{retrieval: ret})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/audio/1", nil, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
}

func TestPageAudio_NotFound(t *testing.T) {
	ret := &fakeRetrieval{audioErr: services.ErrNotFound}
	r := newTestRouter(t, testDeps{retrieval: ret})

	w := doJSON(t, r, http.MethodGet, "/pdf/notes_1700000000/audio/1", nil, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if decodeBody(t, w)["error"] != "Audio file not found" {
		t.Fatalf("body = %s", w.Body.String())
	}
}
