package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/repo"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

// memRemote is an in-memory second tier for replication tests.
type memRemote struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemRemote() *memRemote {
	return &memRemote{objects: make(map[string][]byte)}
}

func (m *memRemote) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memRemote) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrRemoteNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memRemote) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memRemote) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://remote.test/" + key, nil
}

func (m *memRemote) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// newReplicatedCatalog builds a catalog whose store carries a remote tier,
// so mutations upload database snapshots.
func newReplicatedCatalog(t *testing.T) (*Catalog, *memRemote) {
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
	remote := newMemRemote()
	store := storage.New(local, remote, zerolog.Nop())
	return NewCatalog(db, dbPath, store, zerolog.Nop()), remote
}

// openSnapshot writes a replicated database blob to disk and opens it.
func openSnapshot(t *testing.T, data []byte) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestCatalog_MutationReplicatesSnapshot(t *testing.T) {
	catalog, remote := newReplicatedCatalog(t)

	u, err := catalog.CreateUser(context.Background(), "alice", "alice@example.com", "x")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	blob, err := remote.Get(context.Background(), storage.CatalogKey)
	if err != nil {
		t.Fatalf("replicated snapshot missing: %v", err)
	}
	snap := openSnapshot(t, blob)

	var got domain.User
	if err := snap.First(&got, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("snapshot lookup: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("snapshot user = %+v", got)
	}
}

func TestCatalog_ConcurrentMutationsYieldConsistentSnapshot(t *testing.T) {
	catalog, remote := newReplicatedCatalog(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			if _, err := catalog.CreateUser(context.Background(), name, name+"@example.com", "x"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("CreateUser: %v", err)
	}

	// The last mutation to release the lock replicated last; its snapshot
	// must be a readable database containing every committed row.
	blob, err := remote.Get(context.Background(), storage.CatalogKey)
	if err != nil {
		t.Fatalf("replicated snapshot missing: %v", err)
	}
	snap := openSnapshot(t, blob)

	var count int64
	if err := snap.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("snapshot count: %v", err)
	}
	if count != writers {
		t.Fatalf("snapshot has %d users, want %d", count, writers)
	}
}

func TestRestoreCatalog_DownloadsWhenLocalMissing(t *testing.T) {
	catalog, remote := newReplicatedCatalog(t)
	if _, err := catalog.CreateUser(context.Background(), "alice", "alice@example.com", "x"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dir := t.TempDir()
	local, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := storage.New(local, remote, zerolog.Nop())

	dbPath := filepath.Join(dir, "instance", "restored.db")
	if err := RestoreCatalog(context.Background(), store, dbPath, zerolog.Nop()); err != nil {
		t.Fatalf("RestoreCatalog: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("restored file missing: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("restored count: %v", err)
	}
	if count != 1 {
		t.Fatalf("restored db has %d users, want 1", count)
	}
}

func TestRestoreCatalog_KeepsExistingLocalFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")
	if err := os.WriteFile(dbPath, []byte("local copy"), 0o644); err != nil {
		t.Fatalf("seed local file: %v", err)
	}

	local, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	remote := newMemRemote()
	remote.objects[storage.CatalogKey] = []byte("remote copy")
	store := storage.New(local, remote, zerolog.Nop())

	if err := RestoreCatalog(context.Background(), store, dbPath, zerolog.Nop()); err != nil {
		t.Fatalf("RestoreCatalog: %v", err)
	}
	data, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("read local file: %v", err)
	}
	if string(data) != "local copy" {
		t.Fatal("existing local catalog was overwritten")
	}
}
