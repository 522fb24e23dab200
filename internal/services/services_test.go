package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studybuddy/go-study-backend/internal/pdf"
	"github.com/studybuddy/go-study-backend/internal/repo"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

func newTestCatalog(t *testing.T) (*Catalog, *storage.Store) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, fmt.Sprintf("catalog_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	local, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := storage.New(local, nil, zerolog.Nop())
	return NewCatalog(db, dbPath, store, zerolog.Nop()), store
}

func seedUser(t *testing.T, catalog *Catalog) string {
	t.Helper()
	u, err := catalog.CreateUser(context.Background(), "alice", "alice@example.com", "x")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

type fakeRasterizer struct {
	pages int
	err   error
}

func (f *fakeRasterizer) Render(_ context.Context, _ []byte) ([]pdf.PageImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages := make([]pdf.PageImage, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		pages = append(pages, pdf.PageImage{
			Page: i,
			JPEG: []byte(fmt.Sprintf("jpeg-%d", i)),
		})
	}
	return pages, nil
}

type fakeExplainer struct {
	imageCalls int
	textCalls  int
	imageResp  string
	imageErr   error
	// textResps are consumed in order; the last one repeats.
	textResps []string
	textErr   error
}

func (f *fakeExplainer) GenerateFromImage(_ context.Context, _ string, _ []byte) (string, error) {
	f.imageCalls++
	if f.imageErr != nil {
		return "", f.imageErr
	}
	return f.imageResp, nil
}

func (f *fakeExplainer) GenerateText(_ context.Context, _ string) (string, error) {
	f.textCalls++
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.textResps) == 0 {
		return "", fmt.Errorf("no response configured")
	}
	resp := f.textResps[0]
	if len(f.textResps) > 1 {
		f.textResps = f.textResps[1:]
	}
	return resp, nil
}

type fakeNarrator struct {
	calls int
	audio []byte
	err   error
}

func (f *fakeNarrator) Synthesize(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}
