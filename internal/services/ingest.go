package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/studybuddy/go-study-backend/internal/ai"
	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/pdf"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

// Explainer generates study text from page images and prompts.
type Explainer interface {
	GenerateFromImage(ctx context.Context, prompt string, jpegData []byte) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Narrator converts prepared text to MP3 audio.
type Narrator interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Rasterizer renders a PDF into page images.
type Rasterizer interface {
	Render(ctx context.Context, data []byte) ([]pdf.PageImage, error)
}

// IngestService runs the full processing pipeline for uploaded documents.
type IngestService struct {
	catalog      *Catalog
	store        *storage.Store
	raster       Rasterizer
	explainer    Explainer
	narrator     Narrator
	maxSpeechLen int
	log          zerolog.Logger
	now          func() time.Time
}

func NewIngestService(catalog *Catalog, store *storage.Store, raster Rasterizer, explainer Explainer, narrator Narrator, maxSpeechLen int, log zerolog.Logger) *IngestService {
	return &IngestService{
		catalog:      catalog,
		store:        store,
		raster:       raster,
		explainer:    explainer,
		narrator:     narrator,
		maxSpeechLen: maxSpeechLen,
		log:          log.With().Str("component", "ingest").Logger(),
		now:          time.Now,
	}
}

// IngestInput is one upload request.
type IngestInput struct {
	UserID     string
	Filename   string
	Difficulty string
	Data       []byte
}

var unsafeNameChars = regexp.MustCompile(`[^\w\-]`)

// CleanName normalizes an uploaded filename (without extension) into the
// character set allowed in storage keys.
func CleanName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return strings.ToLower(unsafeNameChars.ReplaceAllString(base, "_"))
}

// Metadata is stored alongside the original document.
type Metadata struct {
	DateProcessed    string `json:"date_processed"`
	OriginalFilename string `json:"original_filename"`
	DifficultyLevel  string `json:"difficulty_level"`
	UserID           string `json:"user_id"`
}

// Ingest fingerprints the upload and either links an existing document to
// the user (returned directly, no stream) or starts the processing
// pipeline, whose progress arrives on the returned channel. The channel is
// closed when processing finishes.
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*domain.PDF, <-chan StreamEvent, error) {
	if len(in.Data) == 0 {
		return nil, nil, fmt.Errorf("empty upload")
	}
	if in.Difficulty == "" {
		in.Difficulty = "detailed"
	}

	hash := pdf.HashBytes(in.Data)
	if existing, err := s.catalog.LookupPDFByHash(ctx, hash); err == nil {
		if err := s.catalog.LinkUserPDF(ctx, in.UserID, existing.ID); err != nil {
			return nil, nil, err
		}
		s.log.Info().Str("key", existing.StorageKey).Msg("duplicate upload linked to user")
		return existing, nil, nil
	}

	storageKey := fmt.Sprintf("%s_%d", CleanName(in.Filename), s.now().Unix())

	// Persist the original and its metadata before page processing starts
	// so a crash mid-pipeline still leaves the source recoverable.
	if err := s.store.Write(ctx, storage.PDFKey(storageKey), in.Data, "application/pdf"); err != nil {
		s.log.Warn().Err(err).Str("key", storageKey).Msg("storing original pdf failed")
	}
	meta := Metadata{
		DateProcessed:    s.now().Format("2006-01-02 15:04:05"),
		OriginalFilename: in.Filename,
		DifficultyLevel:  in.Difficulty,
		UserID:           in.UserID,
	}
	if metaJSON, err := json.Marshal(meta); err == nil {
		if err := s.store.Write(ctx, storage.MetadataKey(storageKey), metaJSON, "application/json"); err != nil {
			s.log.Warn().Err(err).Str("key", storageKey).Msg("storing metadata failed")
		}
	}

	events := make(chan StreamEvent, 4)
	go s.process(ctx, in, storageKey, hash, events)
	return nil, events, nil
}

func (s *IngestService) process(ctx context.Context, in IngestInput, storageKey, hash string, events chan<- StreamEvent) {
	defer close(events)

	pages, err := s.raster.Render(ctx, in.Data)
	if err != nil {
		s.log.Error().Err(err).Str("key", storageKey).Msg("rasterization failed")
		s.discard(storageKey)
		events <- StreamEvent{Type: EventError, Error: err.Error()}
		return
	}
	pageCount := len(pages)

	doc, err := s.catalog.InsertPDF(ctx, titleFrom(in.Filename), storageKey, hash, int64(len(in.Data)), pageCount)
	if err != nil {
		s.log.Error().Err(err).Str("key", storageKey).Msg("catalog insert failed")
		events <- StreamEvent{Type: EventError, Error: err.Error()}
		return
	}
	if err := s.catalog.LinkUserPDF(ctx, in.UserID, doc.ID); err != nil {
		events <- StreamEvent{Type: EventError, Error: err.Error()}
		return
	}

	events <- StreamEvent{Type: EventInfo, TotalPages: pageCount, PDFName: storageKey}

	for _, page := range pages {
		select {
		case <-ctx.Done():
			events <- StreamEvent{Type: EventError, Error: ctx.Err().Error()}
			return
		default:
		}

		// Uploading maps to 0-30 and final assembly to 95-100, so page
		// work covers the 30-95 band.
		progress := 30 + (page.Page-1)*65/pageCount
		events <- StreamEvent{Type: EventProgress, Progress: progress, Page: page.Page, TotalPages: pageCount}

		if err := s.store.Write(ctx, storage.ImageKey(storageKey, page.Page), page.JPEG, "image/jpeg"); err != nil {
			s.log.Warn().Err(err).Int("page", page.Page).Msg("storing page image failed")
		}

		explanation := s.explainPage(ctx, page, in.Difficulty)
		if err := s.store.Write(ctx, storage.TextKey(storageKey, page.Page), []byte(explanation), "text/markdown"); err != nil {
			s.log.Warn().Err(err).Int("page", page.Page).Msg("storing explanation failed")
		}

		audio := s.narratePage(ctx, explanation, page.Page)
		if len(audio) > 0 {
			if err := s.store.Write(ctx, storage.AudioKey(storageKey, page.Page), audio, "audio/mpeg"); err != nil {
				s.log.Warn().Err(err).Int("page", page.Page).Msg("storing narration failed")
			}
		}

		events <- StreamEvent{Type: EventPage, PageData: &PageData{
			PageNumber:  page.Page,
			Image:       base64.StdEncoding.EncodeToString(page.JPEG),
			Explanation: explanation,
			Audio:       base64.StdEncoding.EncodeToString(audio),
			AudioURL:    fmt.Sprintf("/pdf/%s/audio/%d", storageKey, page.Page),
			ImageURL:    fmt.Sprintf("/pdf/%s/image/%d", storageKey, page.Page),
		}}
	}

	events <- StreamEvent{Type: EventComplete, Message: "All pages processed successfully", PDFName: storageKey}
	s.log.Info().Str("key", storageKey).Int("pages", pageCount).Msg("document processed")
}

// explainPage never fails the pipeline; an API error becomes a visible
// placeholder explanation so the remaining pages still process.
func (s *IngestService) explainPage(ctx context.Context, page pdf.PageImage, difficulty string) string {
	prompt := fmt.Sprintf("Please explain this page in %s, including any formulas or mathematical expressions. "+
		"Make sure to explain them in a way that would be easy to read aloud. "+
		"Give a '.' after a long pause and a ';' after a medium pause based on the importance of the words. "+
		"Preserve all formatting, including paragraph breaks. "+
		"Also dont use any sub scripting symbols or special characters, instead read it aloud. "+
		"Dont repeat content from the previous page and useless information in the header and footer.", difficulty)
	explanation, err := s.explainer.GenerateFromImage(ctx, prompt, page.JPEG)
	if err != nil {
		s.log.Warn().Err(err).Int("page", page.Page).Msg("explanation generation failed")
		return fmt.Sprintf("Failed to generate explanation for page %d: %s", page.Page, err)
	}
	return explanation
}

// narratePage returns nil on synthesis failure so pages degrade to
// text-only rather than aborting the stream.
func (s *IngestService) narratePage(ctx context.Context, explanation string, page int) []byte {
	speech := ai.PrepareSpeech(explanation, page, s.maxSpeechLen)
	audio, err := s.narrator.Synthesize(ctx, speech)
	if err != nil {
		s.log.Warn().Err(err).Int("page", page).Msg("narration failed")
		return nil
	}
	return audio
}

// discard removes the locally stored original for an upload that turned out
// to be unprocessable. Remote copies are left for manual inspection.
func (s *IngestService) discard(storageKey string) {
	if err := s.store.Local().RemovePrefix("pdfs/" + storageKey); err != nil {
		s.log.Warn().Err(err).Str("key", storageKey).Msg("discarding failed upload")
	}
}

// titleFrom derives a display title from the uploaded filename: the extension
// is dropped, underscores become spaces, and words are title-cased.
func titleFrom(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.ReplaceAll(stem, "_", " ")
	return cases.Title(language.English, cases.NoLower).String(stem)
}
