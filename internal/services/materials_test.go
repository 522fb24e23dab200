package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/storage"
)

func TestMaterialsBundle(t *testing.T) {
	_, store := newTestCatalog(t)
	svc := NewMaterialsService(store, zerolog.Nop())
	key := "bundle_1"

	mustWrite(t, store, storage.PDFKey(key), "%PDF original")
	mustWrite(t, store, storage.MetadataKey(key), `{"original_filename":"b.pdf"}`)
	mustWrite(t, store, storage.QuizKey(key), `[]`)
	for page := 1; page <= 2; page++ {
		mustWrite(t, store, storage.ImageKey(key, page), "jpg")
		mustWrite(t, store, storage.TextKey(key, page), "md")
	}
	// Page 2 audio is missing; the bundle should still build.
	mustWrite(t, store, storage.AudioKey(key, 1), "mp3")

	data, err := svc.Bundle(context.Background(), key, 2)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"original.pdf", "metadata.json", "quiz.json",
		"images/page_1.jpg", "images/page_2.jpg",
		"text/page_1.md", "text/page_2.md",
		"audio/page_1.mp3",
	} {
		if !names[want] {
			t.Errorf("zip missing %s (has %v)", want, names)
		}
	}
	if names["audio/page_2.mp3"] {
		t.Error("zip contains artifact that does not exist")
	}
}

func TestMaterialsBundle_NothingStored(t *testing.T) {
	_, store := newTestCatalog(t)
	svc := NewMaterialsService(store, zerolog.Nop())
	if _, err := svc.Bundle(context.Background(), "ghost", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
