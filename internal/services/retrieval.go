package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/ai"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

// Artifact is a resolved binary. When URL is set the client should be
// redirected to the remote tier; otherwise Data is served inline.
type Artifact struct {
	URL         string
	Data        []byte
	ContentType string
}

// RetrievalService serves previously processed documents and their
// artifacts, healing gaps between tiers as it goes.
type RetrievalService struct {
	catalog      *Catalog
	store        *storage.Store
	narrator     Narrator
	signedTTL    time.Duration
	maxSpeechLen int
	log          zerolog.Logger
}

func NewRetrievalService(catalog *Catalog, store *storage.Store, narrator Narrator, signedTTL time.Duration, maxSpeechLen int, log zerolog.Logger) *RetrievalService {
	return &RetrievalService{
		catalog:      catalog,
		store:        store,
		narrator:     narrator,
		signedTTL:    signedTTL,
		maxSpeechLen: maxSpeechLen,
		log:          log.With().Str("component", "retrieval").Logger(),
	}
}

var pageImageKey = regexp.MustCompile(`page_(\d+)\.jpg$`)

// ResolvePageCount determines how many pages a document has: catalog
// first, then remote listing, then the local tier.
func (s *RetrievalService) ResolvePageCount(ctx context.Context, storageKey string) (int, error) {
	if doc, err := s.catalog.LookupPDFByKey(ctx, storageKey); err == nil && doc.PageCount > 0 {
		return doc.PageCount, nil
	}

	maxPage := 0
	for _, key := range s.store.List(ctx, storage.ImagePrefix(storageKey)) {
		if m := pageImageKey.FindStringSubmatch(key); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxPage {
				maxPage = n
			}
		}
	}
	if maxPage > 0 {
		return maxPage, nil
	}

	// Last resort: walk the legacy local image folder.
	dir := s.store.Local().Path(storageKey + "/image_files")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, ErrNotFound
	}
	for _, e := range entries {
		if m := pageImageKey.FindStringSubmatch(e.Name()); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxPage {
				maxPage = n
			}
		}
	}
	if maxPage == 0 {
		return 0, ErrNotFound
	}
	return maxPage, nil
}

// DocumentPage is one page of an assembled document view. Image and Audio
// are populated for the first page only; later pages load lazily through
// the artifact URLs.
type DocumentPage struct {
	PageNumber  int    `json:"page_number"`
	Image       string `json:"image"`
	Explanation string `json:"explanation"`
	Audio       string `json:"audio"`
	AudioURL    string `json:"audio_url"`
	ImageURL    string `json:"image_url"`
}

// DocumentView is the full response for reopening a processed document.
type DocumentView struct {
	TotalPages int            `json:"total_pages"`
	PDFName    string         `json:"pdf_name"`
	Pages      []DocumentPage `json:"pages"`
}

// LoadDocument assembles every page of an already processed document.
func (s *RetrievalService) LoadDocument(ctx context.Context, storageKey string) (*DocumentView, error) {
	total, err := s.ResolvePageCount(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("could not determine page count: %w", err)
	}

	view := &DocumentView{TotalPages: total, PDFName: storageKey, Pages: make([]DocumentPage, 0, total)}
	for page := 1; page <= total; page++ {
		dp := DocumentPage{
			PageNumber: page,
			ImageURL:   fmt.Sprintf("/pdf/%s/image/%d", storageKey, page),
			AudioURL:   fmt.Sprintf("/pdf/%s/audio/%d", storageKey, page),
		}
		if text := s.store.ReadAny(ctx, storage.TextCandidates(storageKey, page)...); text != nil {
			dp.Explanation = string(text)
		}
		if page == 1 {
			if img := s.store.ReadAny(ctx, storage.ImageCandidates(storageKey, page)...); img != nil {
				dp.Image = base64.StdEncoding.EncodeToString(img)
			}
			if audio := s.store.ReadAny(ctx, storage.AudioCandidates(storageKey, page)...); audio != nil {
				dp.Audio = base64.StdEncoding.EncodeToString(audio)
			}
		}
		view.Pages = append(view.Pages, dp)
	}
	return view, nil
}

// PageImage resolves a page image: signed remote URL when possible, local
// bytes otherwise. A local-only hit is copied to the remote tier first so
// the next request can redirect.
func (s *RetrievalService) PageImage(ctx context.Context, storageKey string, page int) (*Artifact, error) {
	return s.resolveArtifact(ctx, storage.ImageKey(storageKey, page),
		storage.ImageCandidates(storageKey, page), "image/jpeg")
}

// PageAudio resolves page narration like PageImage, with one extra rung:
// when the audio is gone from both tiers but the explanation text
// survives, the narration is regenerated and persisted again.
func (s *RetrievalService) PageAudio(ctx context.Context, storageKey string, page int) (*Artifact, error) {
	art, err := s.resolveArtifact(ctx, storage.AudioKey(storageKey, page),
		storage.AudioCandidates(storageKey, page), "audio/mpeg")
	if err == nil {
		return art, nil
	}

	text := s.store.ReadAny(ctx, storage.TextCandidates(storageKey, page)...)
	if text == nil {
		return nil, ErrNotFound
	}
	s.log.Info().Str("key", storageKey).Int("page", page).Msg("regenerating missing narration from text")
	speech := ai.PrepareSpeech(string(text), page, s.maxSpeechLen)
	audio, err := s.narrator.Synthesize(ctx, speech)
	if err != nil {
		return nil, fmt.Errorf("regenerate narration: %w", err)
	}
	canonical := storage.AudioKey(storageKey, page)
	if err := s.store.Write(ctx, canonical, audio, "audio/mpeg"); err != nil {
		s.log.Warn().Err(err).Str("key", canonical).Msg("persisting regenerated narration failed")
	}
	if url := s.store.ReadURL(ctx, canonical, s.signedTTL); url != "" {
		return &Artifact{URL: url, ContentType: "audio/mpeg"}, nil
	}
	return &Artifact{Data: audio, ContentType: "audio/mpeg"}, nil
}

func (s *RetrievalService) resolveArtifact(ctx context.Context, canonical string, candidates []string, contentType string) (*Artifact, error) {
	if url := s.store.ReadURL(ctx, canonical, s.signedTTL); url != "" {
		return &Artifact{URL: url, ContentType: contentType}, nil
	}

	_, data, ok := s.store.Local().FindFirst(candidates...)
	if !ok {
		return nil, ErrNotFound
	}

	// Heal the remote tier synchronously so the redirect works right away.
	if s.store.RemoteAvailable() {
		if err := s.store.WriteRemote(ctx, canonical, data, contentType); err == nil {
			if url := s.store.ReadURL(ctx, canonical, s.signedTTL); url != "" {
				return &Artifact{URL: url, ContentType: contentType}, nil
			}
		}
	}
	return &Artifact{Data: data, ContentType: contentType}, nil
}

// Exists reports whether a document is known under the storage key in any
// tier.
func (s *RetrievalService) Exists(ctx context.Context, storageKey string) bool {
	if _, err := s.catalog.LookupPDFByKey(ctx, storageKey); err == nil {
		return true
	}
	if s.store.Exists(ctx, storage.PDFKey(storageKey)) {
		return true
	}
	// Legacy local layout: a folder with the three artifact subfolders.
	local := s.store.Local()
	for _, sub := range []string{"/image_files", "/text_files", "/audio_files"} {
		if info, err := os.Stat(local.Path(storageKey + sub)); err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// FilenameCheck is the version lookup result for an original filename.
type FilenameCheck struct {
	Exists   bool     `json:"exists"`
	BaseName string   `json:"base_name,omitempty"`
	Versions []string `json:"versions,omitempty"`
}

// CheckByFilename reports all stored versions sharing a cleaned filename.
func (s *RetrievalService) CheckByFilename(ctx context.Context, filename string) (*FilenameCheck, error) {
	clean := CleanName(filename)

	if versions, err := s.catalog.ListPDFVersions(ctx, clean); err == nil && len(versions) > 0 {
		return &FilenameCheck{Exists: true, BaseName: clean, Versions: versions}, nil
	}

	// Older documents may predate the catalog; probe the tiers directly
	// for the un-timestamped key and its _2, _3 successors.
	probe := func(key string) bool {
		if s.store.Exists(ctx, storage.PDFKey(key)) {
			return true
		}
		info, err := os.Stat(s.store.Local().Path(key))
		return err == nil && info.IsDir()
	}
	if probe(clean) {
		versions := []string{clean}
		for n := 2; ; n++ {
			next := fmt.Sprintf("%s_%d", clean, n)
			if !probe(next) {
				break
			}
			versions = append(versions, next)
		}
		return &FilenameCheck{Exists: true, BaseName: clean, Versions: versions}, nil
	}
	return &FilenameCheck{Exists: false}, nil
}

// UserDocument is one row in a user's library listing.
type UserDocument struct {
	Name             string `json:"name"`
	TotalPages       int    `json:"total_pages"`
	DateProcessed    string `json:"date_processed"`
	OriginalFilename string `json:"original_filename"`
}

// ListForUser returns the user's documents with their stored metadata.
func (s *RetrievalService) ListForUser(ctx context.Context, userID string) ([]UserDocument, error) {
	docs, err := s.catalog.ListPDFsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]UserDocument, 0, len(docs))
	for _, doc := range docs {
		original := doc.Title
		if raw := s.store.ReadAny(ctx, storage.MetadataKey(doc.StorageKey), doc.StorageKey+"/metadata.json"); raw != nil {
			var meta Metadata
			if err := json.Unmarshal(raw, &meta); err == nil && meta.OriginalFilename != "" {
				original = meta.OriginalFilename
			}
		}
		out = append(out, UserDocument{
			Name:             doc.StorageKey,
			TotalPages:       doc.PageCount,
			DateProcessed:    doc.CreatedAt.Format("2006-01-02 15:04:05"),
			OriginalFilename: original,
		})
	}
	return out, nil
}
