package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/document"
	"github.com/binarybreez/jobswipe/internal/export"
	"github.com/binarybreez/jobswipe/internal/extract"
	"github.com/binarybreez/jobswipe/internal/identity"
	"github.com/binarybreez/jobswipe/internal/normalize"
	"github.com/binarybreez/jobswipe/internal/pipeline"
	"github.com/binarybreez/jobswipe/internal/reconcile"
	"github.com/binarybreez/jobswipe/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// textLoader stands in for the PDF loader so uploads can be plain text.
type textLoader struct{}

func (textLoader) Load(_ context.Context, data []byte) (document.Pages, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return document.Pages{}, common.NewFailure(common.UnreadableDocument, "empty document", nil)
	}
	return document.Pages{Texts: []string{text}, CharCount: len(text)}, nil
}

func newTestServer(t *testing.T, mem *store.Memory) *Server {
	t.Helper()
	proc := pipeline.NewProcessor(
		pipeline.Config{},
		textLoader{},
		document.PlainTextLoader{},
		extract.NewRuleExtractor(nil),
		normalize.NewNormalizer(normalize.DefaultPolicy(), nil),
		reconcile.NewReconciler(mem, nil),
		identity.NewMemory(),
		nil,
	)
	return NewServer(Config{Addr: ":0"}, proc, export.NewService(mem, nil), mem, nil)
}

func postResume(t *testing.T, s *Server, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

const resumeText = `Jane Doe
jane.doe@example.com | (555) 123-4567

Skills
Go, Python
`

func TestUploadResumeOK(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	w := postResume(t, s, resumeText)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Reconcile.Outcome != reconcile.OutcomeCreated {
		t.Errorf("outcome = %q", res.Reconcile.Outcome)
	}
	if res.Reconcile.NaturalKey != "jane.doe@example.com" {
		t.Errorf("key = %q", res.Reconcile.NaturalKey)
	}
}

func TestUploadResumeRepeatReturns200(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	if w := postResume(t, s, resumeText); w.Code != http.StatusCreated {
		t.Fatalf("first upload status = %d", w.Code)
	}
	w := postResume(t, s, resumeText)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat upload status = %d; want 200", w.Code)
	}
	var res pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Reconcile.Outcome != reconcile.OutcomeNoOp {
		t.Errorf("outcome = %q", res.Reconcile.Outcome)
	}
}

func TestUploadKindTag(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("kind", "jd")
	fw, err := mw.CreateFormFile("file", "posting.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("Senior Go Engineer at Acme Corp\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res pipeline.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Kind != constants.KindJobDescription {
		t.Errorf("kind = %q; want job_description", res.Kind)
	}
}

func TestUploadUnknownKindRejected(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("kind", "spreadsheet")
	fw, _ := mw.CreateFormFile("file", "doc.pdf")
	_, _ = fw.Write([]byte("content"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestUploadResumeMissingKey(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	w := postResume(t, s, "An anonymous document with no contacts.")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["kind"] != string(common.MissingNaturalKey) {
		t.Errorf("kind = %v", body["kind"])
	}
	if body["retryable"] != false {
		t.Errorf("retryable = %v; want false", body["retryable"])
	}
}

func TestUploadResumeMissingFile(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestSubmitJobOK(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	body, _ := json.Marshal(gin.H{"text": "Senior Go Engineer at Acme Corp\nSalary: $120k - $150k\n"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestSubmitJobBadBody(t *testing.T) {
	s := newTestServer(t, store.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(`{"text": ""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestGetCandidate(t *testing.T) {
	mem := store.NewMemory()
	s := newTestServer(t, mem)

	if w := postResume(t, s, resumeText); w.Code != http.StatusCreated {
		t.Fatalf("upload failed: %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/jane.doe@example.com", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/candidates/nobody@x.io", nil)
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestStoreOutageMapsTo503(t *testing.T) {
	mem := store.NewMemory()
	s := newTestServer(t, mem)
	mem.FailWith = errors.New("connection refused")

	w := postResume(t, s, resumeText)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["retryable"] != true {
		t.Errorf("retryable = %v; want true", body["retryable"])
	}
}

func TestExportCandidatesXLSX(t *testing.T) {
	mem := store.NewMemory()
	s := newTestServer(t, mem)

	if w := postResume(t, s, resumeText); w.Code != http.StatusCreated {
		t.Fatalf("upload failed: %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/candidates.xlsx", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, store.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthReportsStoreOutage(t *testing.T) {
	mem := store.NewMemory()
	s := newTestServer(t, mem)
	mem.FailWith = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "degraded" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestListCandidates(t *testing.T) {
	mem := store.NewMemory()
	s := newTestServer(t, mem)

	if w := postResume(t, s, resumeText); w.Code != http.StatusCreated {
		t.Fatalf("upload failed: %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d; want 1", body.Count)
	}
}
