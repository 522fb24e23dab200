// Package repo – PDF catalog repository.
//
// This file provides the thin persistence functions behind the deduplication
// catalog. All functions are context-aware and accept a *gorm.DB handle, so
// they compose with transactions. They contain no business logic: the
// serialization lock and remote replication live in the Catalog service.
//
// Error semantics:
//   - Missing records surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - InsertPDF never fails on a duplicate content hash: a uniqueness
//     violation is resolved by fetching and returning the existing row, so a
//     racing second inserter gets the first inserter's record.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/go-study-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// LookupPDFByHash fetches the catalog row for a content hash, or ErrNotFound.
func LookupPDFByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.PDF, error) {
	var p domain.PDF
	if err := db.WithContext(ctx).Where("content_hash = ?", hash).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LookupPDFByKey fetches the catalog row for a storage key, or ErrNotFound.
func LookupPDFByKey(ctx context.Context, db *gorm.DB, storageKey string) (*domain.PDF, error) {
	var p domain.PDF
	if err := db.WithContext(ctx).Where("storage_key = ?", storageKey).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPDF records a newly ingested document. The content-hash uniqueness
// constraint makes the insert idempotent: when another writer got there
// first, the existing row is returned instead of an error.
func InsertPDF(ctx context.Context, db *gorm.DB, title, storageKey, hash string, size int64, pages int) (*domain.PDF, error) {
	p := &domain.PDF{
		ID:          uuid.NewString(),
		Title:       title,
		ContentHash: hash,
		StorageKey:  storageKey,
		ByteSize:    size,
		PageCount:   pages,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return LookupPDFByHash(ctx, db, hash)
		}
		return nil, err
	}
	return p, nil
}

// LinkUserPDF associates a user with a catalog row. Duplicate links are a
// no-op, not an error.
func LinkUserPDF(ctx context.Context, db *gorm.DB, userID, pdfID string) error {
	link := &domain.UserPDF{
		ID:       uuid.NewString(),
		UserID:   userID,
		PDFID:    pdfID,
		LinkedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// ListPDFsForUser returns all catalog rows linked to userID, most recently
// linked first.
func ListPDFsForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.PDF, error) {
	var out []domain.PDF
	err := db.WithContext(ctx).
		Joins("JOIN user_pdfs ON user_pdfs.pdf_id = pdfs.id").
		Where("user_pdfs.user_id = ?", userID).
		Order("user_pdfs.linked_at desc").
		Find(&out).Error
	return out, err
}

// ListPDFVersions returns every storage key derived from the given cleaned
// base name: the base itself plus any "_2", "_3", ... suffixed uploads of
// different content that collided on the display name.
func ListPDFVersions(ctx context.Context, db *gorm.DB, base string) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).
		Model(&domain.PDF{}).
		Where("storage_key = ? OR storage_key LIKE ?", base, base+"_%").
		Order("created_at asc").
		Pluck("storage_key", &keys).Error
	return keys, err
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
