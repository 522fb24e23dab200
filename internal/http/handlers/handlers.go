package handlers

import (
	"context"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/services"
)

// IngestService starts document processing.
type IngestService interface {
	Ingest(ctx context.Context, in services.IngestInput) (*domain.PDF, <-chan services.StreamEvent, error)
}

// RetrievalService serves processed documents and artifacts.
type RetrievalService interface {
	LoadDocument(ctx context.Context, storageKey string) (*services.DocumentView, error)
	ResolvePageCount(ctx context.Context, storageKey string) (int, error)
	PageImage(ctx context.Context, storageKey string, page int) (*services.Artifact, error)
	PageAudio(ctx context.Context, storageKey string, page int) (*services.Artifact, error)
	Exists(ctx context.Context, storageKey string) bool
	CheckByFilename(ctx context.Context, filename string) (*services.FilenameCheck, error)
	ListForUser(ctx context.Context, userID string) ([]services.UserDocument, error)
}

// QuizService builds per-document quizzes.
type QuizService interface {
	Generate(ctx context.Context, storageKey string) ([]services.QuizQuestion, error)
}

// QuestionService answers questions about document content.
type QuestionService interface {
	Answer(ctx context.Context, question, userContext, storageKey string) (string, error)
}

// MaterialsService packages a document's artifacts for download.
type MaterialsService interface {
	Bundle(ctx context.Context, storageKey string, pageCount int) ([]byte, error)
}

// Handlers groups the HTTP endpoints and their service dependencies.
type Handlers struct {
	auth      AuthService
	ingest    IngestService
	retrieval RetrievalService
	quiz      QuizService
	question  QuestionService
	materials MaterialsService

	maxUploadBytes int64
}

// New binds the handler set to its services.
func New(auth AuthService, ingest IngestService, retrieval RetrievalService, quiz QuizService, question QuestionService, materials MaterialsService, maxUploadBytes int64) *Handlers {
	return &Handlers{
		auth:           auth,
		ingest:         ingest,
		retrieval:      retrieval,
		quiz:           quiz,
		question:       question,
		materials:      materials,
		maxUploadBytes: maxUploadBytes,
	}
}
