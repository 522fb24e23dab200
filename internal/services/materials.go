package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/storage"
)

// MaterialsService bundles every artifact of a document into one zip
// archive for offline use.
type MaterialsService struct {
	store *storage.Store
	log   zerolog.Logger
}

func NewMaterialsService(store *storage.Store, log zerolog.Logger) *MaterialsService {
	return &MaterialsService{
		store: store,
		log:   log.With().Str("component", "materials").Logger(),
	}
}

// Bundle builds a zip of the original document, its metadata and all page
// artifacts. Pages missing individual artifacts are skipped rather than
// failing the bundle.
func (s *MaterialsService) Bundle(ctx context.Context, storageKey string, pageCount int) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	added := 0
	add := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		added++
		return nil
	}

	if data := s.store.Read(ctx, storage.PDFKey(storageKey)); data != nil {
		if err := add("original.pdf", data); err != nil {
			return nil, err
		}
	}
	if data := s.store.ReadAny(ctx, storage.MetadataKey(storageKey), storageKey+"/metadata.json"); data != nil {
		if err := add("metadata.json", data); err != nil {
			return nil, err
		}
	}
	if data := s.store.Read(ctx, storage.QuizKey(storageKey)); data != nil {
		if err := add("quiz.json", data); err != nil {
			return nil, err
		}
	}

	for page := 1; page <= pageCount; page++ {
		if data := s.store.ReadAny(ctx, storage.ImageCandidates(storageKey, page)...); data != nil {
			if err := add(fmt.Sprintf("images/page_%d.jpg", page), data); err != nil {
				return nil, err
			}
		}
		if data := s.store.ReadAny(ctx, storage.TextCandidates(storageKey, page)...); data != nil {
			if err := add(fmt.Sprintf("text/page_%d.md", page), data); err != nil {
				return nil, err
			}
		}
		if data := s.store.ReadAny(ctx, storage.AudioCandidates(storageKey, page)...); data != nil {
			if err := add(fmt.Sprintf("audio/page_%d.mp3", page), data); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	if added == 0 {
		return nil, ErrNotFound
	}
	s.log.Info().Str("key", storageKey).Int("entries", added).Msg("materials bundled")
	return buf.Bytes(), nil
}
