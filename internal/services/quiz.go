package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/ai"
	"github.com/studybuddy/go-study-backend/internal/storage"
)

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizService builds and memoizes per-document quizzes.
type QuizService struct {
	store         *storage.Store
	explainer     Explainer
	maxQuizSource int
	log           zerolog.Logger
}

func NewQuizService(store *storage.Store, explainer Explainer, maxQuizSource int, log zerolog.Logger) *QuizService {
	return &QuizService{
		store:         store,
		explainer:     explainer,
		maxQuizSource: maxQuizSource,
		log:           log.With().Str("component", "quiz").Logger(),
	}
}

// Generate returns the stored quiz for a document, creating and persisting
// one from its page explanations on first request.
func (s *QuizService) Generate(ctx context.Context, storageKey string) ([]QuizQuestion, error) {
	quizKey := storage.QuizKey(storageKey)
	if raw := s.store.Read(ctx, quizKey); raw != nil {
		var quiz []QuizQuestion
		if err := json.Unmarshal(raw, &quiz); err == nil && len(quiz) > 0 {
			return quiz, nil
		}
		s.log.Warn().Str("key", quizKey).Msg("stored quiz unreadable, regenerating")
	}

	source, err := s.collectSource(ctx, storageKey)
	if err != nil {
		return nil, err
	}

	quiz, err := s.generateOnce(ctx, fullQuizPrompt(truncateRunes(source, s.maxQuizSource)))
	if err != nil {
		s.log.Warn().Err(err).Str("key", storageKey).Msg("quiz generation failed, retrying with simpler prompt")
		quiz, err = s.generateOnce(ctx, simpleQuizPrompt(truncateRunes(source, s.maxQuizSource/2)))
		if err != nil {
			return nil, ErrQuizFormat
		}
	}

	if data, err := json.Marshal(quiz); err == nil {
		if err := s.store.Write(ctx, quizKey, data, "application/json"); err != nil {
			s.log.Warn().Err(err).Str("key", quizKey).Msg("persisting quiz failed")
		}
	}
	return quiz, nil
}

// collectSource gathers page explanations in page order, regenerating
// summaries from the page images when no text survives anywhere.
func (s *QuizService) collectSource(ctx context.Context, storageKey string) (string, error) {
	texts := s.collectTexts(ctx, storageKey)
	if len(texts) == 0 {
		texts = s.summarizeImages(ctx, storageKey)
	}
	if len(texts) == 0 {
		return "", ErrNoContent
	}
	combined := ""
	for i, t := range texts {
		if i > 0 {
			combined += "\n\n"
		}
		combined += t
	}
	return combined, nil
}

var pageTextKey = regexp.MustCompile(`page_(\d+)\.md$`)

func (s *QuizService) collectTexts(ctx context.Context, storageKey string) []string {
	keys := s.store.List(ctx, fmt.Sprintf("text/%s/", storageKey))
	pages := map[int]string{}
	for _, key := range keys {
		if m := pageTextKey.FindStringSubmatch(key); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				pages[n] = key
			}
		}
	}
	if len(pages) == 0 {
		// Probe the local tier page by page until a gap.
		var texts []string
		for page := 1; ; page++ {
			data := s.store.ReadAny(ctx, storage.TextCandidates(storageKey, page)...)
			if data == nil {
				break
			}
			texts = append(texts, string(data))
		}
		return texts
	}

	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	var texts []string
	for _, n := range numbers {
		if data := s.store.Read(ctx, pages[n]); data != nil {
			texts = append(texts, string(data))
		}
	}
	return texts
}

func (s *QuizService) summarizeImages(ctx context.Context, storageKey string) []string {
	var texts []string
	for page := 1; ; page++ {
		img := s.store.ReadAny(ctx, storage.ImageCandidates(storageKey, page)...)
		if img == nil {
			break
		}
		summary, err := s.explainer.GenerateFromImage(ctx,
			"Provide a comprehensive summary of the key concepts on this page that would be useful for quiz generation.", img)
		if err != nil {
			s.log.Warn().Err(err).Int("page", page).Msg("page summary failed")
			continue
		}
		texts = append(texts, summary)
	}
	return texts
}

func (s *QuizService) generateOnce(ctx context.Context, prompt string) ([]QuizQuestion, error) {
	raw, err := s.explainer.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	cleaned := ai.CleanModelJSON(raw)
	var quiz []QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return nil, fmt.Errorf("parse quiz json: %w", err)
	}
	if len(quiz) == 0 {
		return nil, fmt.Errorf("quiz is empty")
	}
	for _, q := range quiz {
		if q.Question == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
			return nil, fmt.Errorf("quiz item is missing required fields")
		}
	}
	return quiz, nil
}

func fullQuizPrompt(content string) string {
	return `Based on the following content, generate a quiz with 5 multiple-choice questions to test understanding.
For each question, provide:
1. The question text
2. Four possible answers (A, B, C, D)
3. The correct answer letter
4. A brief explanation of why that's the correct answer

Format the output exactly as a JSON array of objects with the following structure:
[
  {
    "question": "Question text here",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": "A",
    "explanation": "Explanation of why A is correct"
  },
  ...
]

Make sure to provide 5 questions and use the EXACT format above. Return ONLY valid JSON data, nothing else.

Content:
` + content
}

func simpleQuizPrompt(content string) string {
	return `Generate a JSON array of 3 quiz questions about the following content.
Each question should have a 'question' field, an 'options' array with 4 choices,
a 'correctAnswer' field with the letter (A, B, C or D), and an 'explanation' field.
Return ONLY valid JSON, nothing else.

Content:
` + content
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
