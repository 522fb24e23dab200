package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRemote struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	puts    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{objects: map[string][]byte{}}
}

func (f *fakeRemote) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeRemote) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrRemoteNotFound
	}
	return data, nil
}

func (f *fakeRemote) Put(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	f.puts++
	return nil
}

func (f *fakeRemote) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeRemote) List(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeRemote) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func newTestStore(t *testing.T, remote Remote) *Store {
	t.Helper()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return New(local, remote, zerolog.Nop())
}

func TestRead_RemoteFirst(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, remote)

	key := ImageKey("doc_1", 1)
	remote.objects[key] = []byte("remote bytes")
	if err := s.Local().Write(key, []byte("local bytes")); err != nil {
		t.Fatalf("local write: %v", err)
	}

	got := s.Read(context.Background(), key)
	if string(got) != "remote bytes" {
		t.Fatalf("Read = %q, want remote copy", got)
	}
}

func TestRead_LocalFallbackPromotes(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, remote)

	key := TextKey("doc_2", 3)
	if err := s.Local().Write(key, []byte("# page three")); err != nil {
		t.Fatalf("local write: %v", err)
	}

	got := s.Read(context.Background(), key)
	if string(got) != "# page three" {
		t.Fatalf("Read = %q, want local copy", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !remote.has(key) {
		if time.Now().After(deadline) {
			t.Fatal("local-only object was not promoted to remote tier")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if string(remote.objects[key]) != "# page three" {
		t.Fatalf("promoted bytes = %q", remote.objects[key])
	}
}

func TestRead_AbsentEverywhere(t *testing.T) {
	s := newTestStore(t, newFakeRemote())
	if got := s.Read(context.Background(), "images/none/page_1.jpg"); got != nil {
		t.Fatalf("Read absent key = %q, want nil", got)
	}
}

func TestRead_NoRemoteTier(t *testing.T) {
	s := newTestStore(t, nil)
	key := AudioKey("doc_3", 1)
	if err := s.Local().Write(key, []byte("mp3")); err != nil {
		t.Fatalf("local write: %v", err)
	}
	if got := s.Read(context.Background(), key); string(got) != "mp3" {
		t.Fatalf("Read = %q", got)
	}
	if s.RemoteAvailable() {
		t.Fatal("RemoteAvailable should be false without a remote tier")
	}
}

func TestReadAny_LegacyLocalLayout(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, remote)

	// The artifact lives only under the old on-disk convention.
	legacy := "physics_170000/audio_files/physics_page_2.mp3"
	if err := s.Local().Write(legacy, []byte("legacy audio")); err != nil {
		t.Fatalf("local write: %v", err)
	}

	got := s.ReadAny(context.Background(), AudioCandidates("physics_170000", 2)...)
	if string(got) != "legacy audio" {
		t.Fatalf("ReadAny = %q", got)
	}

	// Promotion targets the canonical key, not the legacy one.
	canonical := AudioKey("physics_170000", 2)
	deadline := time.Now().Add(2 * time.Second)
	for !remote.has(canonical) {
		if time.Now().After(deadline) {
			t.Fatal("legacy object was not promoted under its canonical key")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWrite_BothTiers(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, remote)

	key := QuizKey("doc_4")
	if err := s.Write(context.Background(), key, []byte(`[]`), "application/json"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Local().Exists(key) {
		t.Fatal("object missing from local tier")
	}
	if !remote.has(key) {
		t.Fatal("object missing from remote tier")
	}
}

func TestReadURL(t *testing.T) {
	remote := newFakeRemote()
	s := newTestStore(t, remote)

	key := ImageKey("doc_5", 1)
	if got := s.ReadURL(context.Background(), key, time.Minute); got != "" {
		t.Fatalf("ReadURL for absent object = %q, want empty", got)
	}
	remote.objects[key] = []byte("x")
	if got := s.ReadURL(context.Background(), key, time.Minute); got != "https://signed.example/"+key {
		t.Fatalf("ReadURL = %q", got)
	}

	noRemote := newTestStore(t, nil)
	if got := noRemote.ReadURL(context.Background(), key, time.Minute); got != "" {
		t.Fatalf("ReadURL without remote tier = %q, want empty", got)
	}
}

func TestLocal_FindFirst(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := local.Write("b.txt", []byte("second")); err != nil {
		t.Fatalf("write: %v", err)
	}
	key, data, ok := local.FindFirst("a.txt", "b.txt")
	if !ok || key != "b.txt" || string(data) != "second" {
		t.Fatalf("FindFirst = %q %q %v", key, data, ok)
	}
	if _, _, ok := local.FindFirst("a.txt"); ok {
		t.Fatal("FindFirst matched a missing key")
	}
}

func TestKeyLayout(t *testing.T) {
	if got := PDFKey("notes_1700000000"); got != "pdfs/notes_1700000000/original.pdf" {
		t.Fatalf("PDFKey = %q", got)
	}
	if got := ImageKey("notes_1700000000", 4); got != "images/notes_1700000000/page_4.jpg" {
		t.Fatalf("ImageKey = %q", got)
	}
	if got := QuizKey("notes_1700000000"); got != "quiz/notes_1700000000/quiz.json" {
		t.Fatalf("QuizKey = %q", got)
	}
	variants := AudioCandidates("notes_1700000000", 2)
	want := []string{
		"audio/notes_1700000000/page_2.mp3",
		"notes_1700000000/audio_files/notes_1700000000_page_2.mp3",
		"notes_1700000000/audio_files/page_2.mp3",
		"notes_1700000000/audio_files/notes_page_2.mp3",
	}
	if len(variants) != len(want) {
		t.Fatalf("AudioCandidates = %v", variants)
	}
	for i := range want {
		if variants[i] != want[i] {
			t.Fatalf("AudioCandidates[%d] = %q, want %q", i, variants[i], want[i])
		}
	}
}
