// Package services holds the business logic: document ingestion, retrieval,
// quiz generation, question answering and authentication. Handlers stay
// thin and map these errors onto HTTP responses.
package services

import "errors"

var (
	// ErrNotFound marks a missing document, page or artifact.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserExists is returned when a username or email is taken.
	ErrUserExists = errors.New("username or email already registered")

	// ErrInvalidSession marks a missing, unknown or expired session token.
	ErrInvalidSession = errors.New("invalid or expired session")

	// ErrNoContent means no source material exists to build a quiz from.
	ErrNoContent = errors.New("no content found to generate quiz")

	// ErrQuizFormat means the model never produced a valid quiz payload.
	ErrQuizFormat = errors.New("failed to generate valid quiz format")
)
