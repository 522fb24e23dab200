// Package domain defines the persistence models for users, deduplicated PDFs,
// user/PDF associations, and login sessions. These types are mapped with GORM
// and form the core data layer of the study-material backend.
package domain

import (
	"time"
)

// User represents a registered account. Credentials are stored as a bcrypt
// hash; the clear-text password never touches the database.
type User struct {
	ID           string    `json:"user_id"  gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"        gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// PDF represents one distinct binary PDF document, identified by the SHA-256
// hash of its content. The hash is the deduplication key: no matter how many
// users upload the same bytes, exactly one PDF row exists.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Title: the original display name of the first upload.
//   - ContentHash: hex SHA-256 of the full byte stream; unique.
//   - StorageKey: logical prefix under which all derived artifacts live in the
//     content store (slugified filename plus upload timestamp).
//   - ByteSize / PageCount: authoritative values recorded after rasterization.
//
// Rows are created once, on first successful ingestion of a new hash, and are
// never mutated or deleted; artifacts may outlive any one user's association.
type PDF struct {
	ID          string    `json:"pdf_id"       gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null"`
	ContentHash string    `json:"content_hash" gorm:"type:char(64);not null;uniqueIndex"`
	StorageKey  string    `json:"storage_key"  gorm:"type:varchar(255);not null;uniqueIndex"`
	ByteSize    int64     `json:"byte_size"    gorm:"not null"`
	PageCount   int       `json:"page_count"   gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for PDF.
func (PDF) TableName() string { return "pdfs" }

// UserPDF is the many-to-many join between users and deduplicated PDFs.
// At most one link exists per (user, pdf) pair; re-linking is idempotent.
type UserPDF struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string    `json:"user_id"   gorm:"type:char(36);not null;index;uniqueIndex:ux_user_pdf"`
	PDFID    string    `json:"pdf_id"    gorm:"type:char(36);not null;index;uniqueIndex:ux_user_pdf"`
	LinkedAt time.Time `json:"linked_at"`

	// PDF is the linked document. Links are cascade-deleted with the document.
	PDF PDF `json:"-" gorm:"foreignKey:PDFID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for UserPDF.
func (UserPDF) TableName() string { return "user_pdfs" }

// Session is a bearer login session. A session is valid while ExpiresAt lies
// in the future; expired rows are purged opportunistically during validation.
type Session struct {
	ID        string    `json:"-"          gorm:"type:char(36);primaryKey"`
	Token     string    `json:"token"      gorm:"type:char(36);not null;uniqueIndex"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }
