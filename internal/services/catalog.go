package services

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/repo"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

// Catalog fronts the sqlite metadata database. Every mutation is followed
// by a best-effort replication of the database file to the remote tier, so
// a fresh instance can rebuild its catalog from the bucket at startup.
//
// Mutations serialize through one process-wide mutex: the replication step
// checkpoints the WAL into the main database file and then reads that file,
// so no other write or checkpoint may run while a snapshot is being taken.
// Reads go straight to sqlite, which handles its own row-level consistency.
type Catalog struct {
	db     *gorm.DB
	dbPath string
	store  *storage.Store
	log    zerolog.Logger

	mu sync.Mutex // held across each mutation and its replication
}

// NewCatalog wires the database to the content store used for replication.
func NewCatalog(db *gorm.DB, dbPath string, store *storage.Store, log zerolog.Logger) *Catalog {
	return &Catalog{
		db:     db,
		dbPath: dbPath,
		store:  store,
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

// DB exposes the underlying handle for request-scoped queries.
func (c *Catalog) DB() *gorm.DB { return c.db }

// RestoreCatalog downloads the replicated database file when no local copy
// exists yet. Must run before the database is opened.
func RestoreCatalog(ctx context.Context, store *storage.Store, dbPath string, log zerolog.Logger) error {
	if _, err := os.Stat(dbPath); err == nil {
		return nil
	}
	data := store.ReadRemote(ctx, storage.CatalogKey)
	if data == nil {
		return nil
	}
	if err := os.MkdirAll(dirOf(dbPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dbPath, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("path", dbPath).Int("bytes", len(data)).Msg("restored catalog from remote tier")
	return nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// replicate copies the database file to the remote tier. Failures only log.
// Callers must hold mu: the checkpoint rewrites the file being read.
func (c *Catalog) replicate(ctx context.Context) {
	if !c.store.RemoteAvailable() {
		return
	}
	// Fold WAL contents into the main file so the copy is current.
	if err := c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		c.log.Warn().Err(err).Msg("wal checkpoint before replication failed")
	}
	data, err := os.ReadFile(c.dbPath)
	if err != nil {
		c.log.Warn().Err(err).Msg("read catalog file for replication failed")
		return
	}
	if err := c.store.WriteRemote(ctx, storage.CatalogKey, data, "application/octet-stream"); err != nil {
		c.log.Warn().Err(err).Msg("catalog replication failed")
		return
	}
	c.log.Debug().Int("bytes", len(data)).Msg("catalog replicated")
}

func (c *Catalog) InsertPDF(ctx context.Context, title, storageKey, hash string, size int64, pages int) (*domain.PDF, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := repo.InsertPDF(ctx, c.db, title, storageKey, hash, size, pages)
	if err != nil {
		return nil, err
	}
	c.replicate(ctx)
	return p, nil
}

func (c *Catalog) LinkUserPDF(ctx context.Context, userID, pdfID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := repo.LinkUserPDF(ctx, c.db, userID, pdfID); err != nil {
		return err
	}
	c.replicate(ctx)
	return nil
}

func (c *Catalog) LookupPDFByHash(ctx context.Context, hash string) (*domain.PDF, error) {
	return repo.LookupPDFByHash(ctx, c.db, hash)
}

func (c *Catalog) LookupPDFByKey(ctx context.Context, storageKey string) (*domain.PDF, error) {
	return repo.LookupPDFByKey(ctx, c.db, storageKey)
}

func (c *Catalog) ListPDFsForUser(ctx context.Context, userID string) ([]domain.PDF, error) {
	return repo.ListPDFsForUser(ctx, c.db, userID)
}

func (c *Catalog) ListPDFVersions(ctx context.Context, baseName string) ([]string, error) {
	return repo.ListPDFVersions(ctx, c.db, baseName)
}

func (c *Catalog) CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, err := repo.CreateUser(ctx, c.db, username, email, passwordHash)
	if err != nil {
		return nil, err
	}
	c.replicate(ctx)
	return u, nil
}

func (c *Catalog) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return repo.GetUserByUsername(ctx, c.db, username)
}

func (c *Catalog) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := repo.CreateSession(ctx, c.db, userID, ttl)
	if err != nil {
		return nil, err
	}
	c.replicate(ctx)
	return s, nil
}

func (c *Catalog) GetSessionUser(ctx context.Context, token string) (*domain.User, error) {
	return repo.GetSessionUser(ctx, c.db, token, time.Now())
}

func (c *Catalog) DeleteSession(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := repo.DeleteSession(ctx, c.db, token); err != nil {
		return err
	}
	c.replicate(ctx)
	return nil
}
