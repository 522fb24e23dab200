package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/storage"
)

// QuestionService answers free-form questions against document content.
type QuestionService struct {
	store     *storage.Store
	explainer Explainer
	log       zerolog.Logger
}

func NewQuestionService(store *storage.Store, explainer Explainer, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:     store,
		explainer: explainer,
		log:       log.With().Str("component", "question").Logger(),
	}
}

// contextPageLimit caps how many page explanations are appended to the
// client-supplied context so prompts stay within model limits.
const contextPageLimit = 3

var templatePrefix = regexp.MustCompile(`(?i)^(Think and Response\.?|Based on the context,|According to the context,)\s*`)

// Answer responds to a question grounded in the supplied context, enriched
// with up to contextPageLimit stored page explanations for the document.
func (s *QuestionService) Answer(ctx context.Context, question, userContext, storageKey string) (string, error) {
	fullContext := userContext
	if storageKey != "" {
		if extra := s.gatherContext(ctx, storageKey); extra != "" {
			fullContext += "\n\n" + extra
		}
	}

	prompt := fmt.Sprintf(`# Context: %s

# Question: %s

# Answer the question based on the provided context. Be comprehensive and accurate.
# If the answer is not in the context, say "I don't have enough information to answer this question accurately."
# Don't be afraid to give detailed technical explanations if the question asks for them.
# Avoid starting with phrases like "Think and Response" or similar templates.
# Always cite page numbers if you know them.`, fullContext, question)

	answer, err := s.explainer.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	return templatePrefix.ReplaceAllString(answer, ""), nil
}

func (s *QuestionService) gatherContext(ctx context.Context, storageKey string) string {
	var parts []string
	if keys := s.store.List(ctx, fmt.Sprintf("text/%s/", storageKey)); len(keys) > 0 {
		for _, key := range keys {
			if len(parts) >= contextPageLimit {
				break
			}
			if data := s.store.Read(ctx, key); data != nil {
				parts = append(parts, string(data))
			}
		}
	} else {
		for page := 1; page <= contextPageLimit; page++ {
			data := s.store.ReadAny(ctx, storage.TextCandidates(storageKey, page)...)
			if data == nil {
				break
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n\n")
}
