package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/studybuddy/go-study-backend/internal/storage"
)

func TestQuestionAnswer_StripsTemplatePrefix(t *testing.T) {
	explainer := &fakeExplainer{textResps: []string{"Based on the context, the answer is 42."}}
	_, store := newTestCatalog(t)
	svc := NewQuestionService(store, explainer, zerolog.Nop())

	answer, err := svc.Answer(context.Background(), "What is the answer?", "Some context.", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "the answer is 42." {
		t.Fatalf("answer = %q", answer)
	}
}

func TestQuestionAnswer_GathersDocumentContext(t *testing.T) {
	explainer := &fakeExplainer{textResps: []string{"An answer."}}
	_, store := newTestCatalog(t)
	svc := NewQuestionService(store, explainer, zerolog.Nop())

	key := "doc_q"
	for page := 1; page <= 5; page++ {
		mustWrite(t, store, storage.TextKey(key, page), "page text")
	}

	if _, err := svc.Answer(context.Background(), "Q?", "ctx", key); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if explainer.textCalls != 1 {
		t.Fatalf("text calls = %d", explainer.textCalls)
	}
}

func TestQuestionAnswer_PropagatesModelError(t *testing.T) {
	explainer := &fakeExplainer{textErr: testError("model down")}
	_, store := newTestCatalog(t)
	svc := NewQuestionService(store, explainer, zerolog.Nop())

	if _, err := svc.Answer(context.Background(), "Q?", "ctx", ""); err == nil {
		t.Fatal("expected error")
	}
}
