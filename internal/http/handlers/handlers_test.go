package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/http/middleware"
	"github.com/studybuddy/go-study-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------- fakes ----------

type fakeAuth struct {
	registerUser *domain.User
	registerErr  error
	loginRes     *services.LoginResult
	loginErr     error
	logoutErr    error
	validateUser *domain.User
	validateErr  error
}

func (f *fakeAuth) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error { return f.logoutErr }

func (f *fakeAuth) Validate(ctx context.Context, token string) (*domain.User, error) {
	return f.validateUser, f.validateErr
}

type fakeIngest struct {
	in       services.IngestInput
	existing *domain.PDF
	events   []services.StreamEvent
	err      error
}

func (f *fakeIngest) Ingest(ctx context.Context, in services.IngestInput) (*domain.PDF, <-chan services.StreamEvent, error) {
	f.in = in
	if f.err != nil {
		return nil, nil, f.err
	}
	if f.existing != nil {
		return f.existing, nil, nil
	}
	ch := make(chan services.StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return nil, ch, nil
}

type fakeRetrieval struct {
	view      *services.DocumentView
	viewErr   error
	pages     int
	pagesErr  error
	image     *services.Artifact
	imageErr  error
	audio     *services.Artifact
	audioErr  error
	exists    bool
	check     *services.FilenameCheck
	checkErr  error
	docs      []services.UserDocument
	docsErr   error
	docsUser  string
}

func (f *fakeRetrieval) LoadDocument(ctx context.Context, storageKey string) (*services.DocumentView, error) {
	return f.view, f.viewErr
}

func (f *fakeRetrieval) ResolvePageCount(ctx context.Context, storageKey string) (int, error) {
	return f.pages, f.pagesErr
}

func (f *fakeRetrieval) PageImage(ctx context.Context, storageKey string, page int) (*services.Artifact, error) {
	return f.image, f.imageErr
}

func (f *fakeRetrieval) PageAudio(ctx context.Context, storageKey string, page int) (*services.Artifact, error) {
	return f.audio, f.audioErr
}

func (f *fakeRetrieval) Exists(ctx context.Context, storageKey string) bool { return f.exists }

func (f *fakeRetrieval) CheckByFilename(ctx context.Context, filename string) (*services.FilenameCheck, error) {
	return f.check, f.checkErr
}

func (f *fakeRetrieval) ListForUser(ctx context.Context, userID string) ([]services.UserDocument, error) {
	f.docsUser = userID
	return f.docs, f.docsErr
}

type fakeQuiz struct {
	quiz []services.QuizQuestion
	err  error
}

func (f *fakeQuiz) Generate(ctx context.Context, storageKey string) ([]services.QuizQuestion, error) {
	return f.quiz, f.err
}

type fakeQuestion struct {
	answer   string
	err      error
	question string
}

func (f *fakeQuestion) Answer(ctx context.Context, question, userContext, storageKey string) (string, error) {
	f.question = question
	return f.answer, f.err
}

type fakeMaterials struct {
	data []byte
	err  error
}

func (f *fakeMaterials) Bundle(ctx context.Context, storageKey string, pageCount int) ([]byte, error) {
	return f.data, f.err
}

// ---------- harness ----------

type testDeps struct {
	auth      *fakeAuth
	ingest    *fakeIngest
	retrieval *fakeRetrieval
	quiz      *fakeQuiz
	question  *fakeQuestion
	materials *fakeMaterials
}

func newTestRouter(t *testing.T, deps testDeps) *gin.Engine {
	t.Helper()
	if deps.auth == nil {
		deps.auth = &fakeAuth{}
	}
	if deps.ingest == nil {
		deps.ingest = &fakeIngest{}
	}
	if deps.retrieval == nil {
		deps.retrieval = &fakeRetrieval{}
	}
	if deps.quiz == nil {
		deps.quiz = &fakeQuiz{}
	}
	if deps.question == nil {
		deps.question = &fakeQuestion{}
	}
	if deps.materials == nil {
		deps.materials = &fakeMaterials{}
	}

	h := New(deps.auth, deps.ingest, deps.retrieval, deps.quiz, deps.question, deps.materials, 10<<20)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)

	authed := r.Group("", middleware.RequireAuth(deps.auth))
	authed.POST("/process-pdf", h.ProcessPDF)
	authed.GET("/existing-pdfs", h.ExistingPDFs)
	authed.GET("/use-existing/:pdf_name", h.UseExisting)

	r.GET("/check-pdf/:pdf_name", h.CheckPDF)
	r.GET("/check-pdf-by-filename/:filename", h.CheckPDFByFilename)
	r.GET("/pdf/:pdf_name/image/:page_num", h.PageImage)
	r.GET("/pdf/:pdf_name/audio/:page_num", h.PageAudio)
	r.POST("/generate-quiz/:pdf_name", h.GenerateQuiz)
	r.POST("/ask-question", h.AskQuestion)
	r.GET("/download-materials/:pdf_name", h.DownloadMaterials)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipartPDF(t *testing.T, r *gin.Engine, filename, difficulty string, content []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if difficulty != "" {
		if err := mw.WriteField("difficulty_level", difficulty); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/process-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
