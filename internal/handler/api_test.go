package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/export"
	"voicenote-service/internal/models"
	"voicenote-service/internal/recorder"
	"voicenote-service/internal/repository"
	"voicenote-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type stubGateway struct {
	reportCalls int
}

func (g *stubGateway) TranscribeAndEnhance(ctx context.Context, audio []byte, mimeType string) (*models.VoiceNote, error) {
	if len(audio) == 0 {
		return nil, &models.TranscriptionError{Message: "Nothing was recorded.", Err: context.Canceled}
	}
	return &models.VoiceNote{
		ID:           "new-note-0001",
		Timestamp:    testNow.UnixMilli(),
		OriginalText: string(audio),
		EnhancedText: string(audio),
		Category:     models.CategoryIdeas,
		Keywords:     []string{},
	}, nil
}

func (g *stubGateway) GenerateReport(ctx context.Context, notes []models.VoiceNote, period models.Period) (*models.Report, error) {
	g.reportCalls++
	return &models.Report{
		Period:                period,
		GeneratedAt:           testNow,
		TotalNotes:            len(notes),
		Summary:               "All good.",
		KeyTopics:             []string{"ore"},
		Insights:              []string{"steady"},
		ActionRecommendations: []string{"rest"},
	}, nil
}

type testServer struct {
	router  *gin.Engine
	gateway *stubGateway
	notes   *service.NoteService
}

func newTestServer(t *testing.T, seed ...models.VoiceNote) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	ctx := context.Background()

	store, err := repository.NewBoltStore(filepath.Join(t.TempDir(), "notes.bolt"), logger)
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.SaveNotes(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clk := clock.Fixed{T: testNow}
	gw := &stubGateway{}
	notes := service.NewNoteService(store, logger)
	if err := notes.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sessions, err := service.NewSessionService(store, service.SessionConfig{Secret: "k", Clock: clk}, logger)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}

	h := NewHandler(Deps{
		Notes:    notes,
		Reports:  service.NewReportService(gw, notes, clk, time.UTC, models.LocaleEnglish, logger),
		Sessions: sessions,
		Recorder: recorder.New(gw, notes, recorder.Config{}, logger),
		Exporter: export.Exporter{Locale: models.LocaleEnglish, Location: time.UTC},
		Clock:    clk,
		Location: time.UTC,
		Locale:   models.LocaleEnglish,
	}, logger)

	r := gin.New()
	h.RegisterRoutes(r)
	return &testServer{router: r, gateway: gw, notes: notes}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if _, ok := body.([]byte); !ok && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func seedNotes() []models.VoiceNote {
	return []models.VoiceNote{
		{ID: "aaaaaaaa-1", Timestamp: testNow.Add(-time.Hour).UnixMilli(), EnhancedText: "Check the conveyor", Category: models.CategoryMining, IsUrgent: true, Keywords: []string{"conveyor"}},
		{ID: "bbbbbbbb-2", Timestamp: testNow.Add(-48 * time.Hour).UnixMilli(), EnhancedText: "Pay the rent", Category: models.CategoryFinance, Keywords: []string{"rent"}},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	if w := s.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestListAndSearchNotes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	var resp struct {
		Notes []models.VoiceNote `json:"notes"`
		Total int                `json:"total"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/v1/notes", nil), &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}

	decode(t, s.do(t, http.MethodGet, "/api/v1/notes?q=RENT", nil), &resp)
	if resp.Total != 1 || resp.Notes[0].ID != "bbbbbbbb-2" {
		t.Errorf("search result = %+v", resp.Notes)
	}
}

func TestUpdateNote(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	w := s.do(t, http.MethodPatch, "/api/v1/notes/aaaaaaaa-1", gin.H{"enhancedText": "Fix the conveyor"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var note models.VoiceNote
	decode(t, w, &note)
	if note.EnhancedText != "Fix the conveyor" || !note.IsUrgent {
		t.Errorf("note = %+v", note)
	}

	if w := s.do(t, http.MethodPatch, "/api/v1/notes/missing", gin.H{"enhancedText": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodPatch, "/api/v1/notes/aaaaaaaa-1", gin.H{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", w.Code)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	if w := s.do(t, http.MethodDelete, "/api/v1/notes/aaaaaaaa-1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed status = %d, want 400", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/v1/notes/aaaaaaaa-1?confirm=true", nil); w.Code != http.StatusNoContent {
		t.Fatalf("confirmed status = %d, want 204", w.Code)
	}
	if n := len(s.notes.List()); n != 1 {
		t.Errorf("notes left = %d, want 1", n)
	}
}

func TestExportNote(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	w := s.do(t, http.MethodGet, "/api/v1/notes/aaaaaaaa-1/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=Note_aaaaaaaa.doc" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(w.Body.String(), "Check the conveyor") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPushRecordingFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/v1/recording/start", gin.H{"mimeType": "audio/ogg"}); w.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/recording/chunks", []byte("spoken words")); w.Code != http.StatusAccepted {
		t.Fatalf("chunk status = %d, body %s", w.Code, w.Body)
	}

	w := s.do(t, http.MethodPost, "/api/v1/recording/stop", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("stop status = %d, body %s", w.Code, w.Body)
	}
	var note models.VoiceNote
	decode(t, w, &note)
	if note.EnhancedText != "spoken words" {
		t.Errorf("note text = %q", note.EnhancedText)
	}
	if len(s.notes.List()) != 1 {
		t.Error("note was not stored")
	}

	if w := s.do(t, http.MethodPost, "/api/v1/recording/stop", nil); w.Code != http.StatusConflict {
		t.Errorf("second stop status = %d, want 409", w.Code)
	}
}

func TestEmptyRecordingIsBadGateway(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/recording/start", nil)
	w := s.do(t, http.MethodPost, "/api/v1/recording/stop", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["message"] != "Nothing was recorded." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestTranscribeUpload(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "memo.webm")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("uploaded audio"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var note models.VoiceNote
	decode(t, w, &note)
	if note.OriginalText != "uploaded audio" {
		t.Errorf("original text = %q", note.OriginalText)
	}
}

func TestTranscribeUploadDuringPushRecording(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/v1/recording/start", gin.H{"mimeType": "audio/ogg"}); w.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/recording/chunks", []byte("live words")); w.Code != http.StatusAccepted {
		t.Fatalf("chunk status = %d, body %s", w.Code, w.Body)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "memo.webm")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("uploaded audio"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("upload status = %d, want 409, body %s", w.Code, w.Body)
	}

	// the live recording is untouched and still produces its own note
	w = s.do(t, http.MethodPost, "/api/v1/recording/stop", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("stop status = %d, body %s", w.Code, w.Body)
	}
	var note models.VoiceNote
	decode(t, w, &note)
	if note.EnhancedText != "live words" {
		t.Errorf("note text = %q, want the pushed audio", note.EnhancedText)
	}
	if got := len(s.notes.List()); got != 1 {
		t.Errorf("stored notes = %d, want 1", got)
	}
}

func TestReports(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	if w := s.do(t, http.MethodGet, "/api/v1/reports/current", nil); w.Code != http.StatusNotFound {
		t.Fatalf("no report status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/reports", gin.H{"period": "yearly"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/v1/reports", gin.H{"period": "daily"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", w.Code, w.Body)
	}
	var report models.Report
	decode(t, w, &report)
	if report.TotalNotes != 1 {
		t.Errorf("daily report covered %d notes, want 1", report.TotalNotes)
	}

	w = s.do(t, http.MethodGet, "/api/v1/reports/current/export", nil)
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=Report_daily_2024-06-10.doc" {
		t.Errorf("Content-Disposition = %q", got)
	}

	if w := s.do(t, http.MethodDelete, "/api/v1/reports/current", nil); w.Code != http.StatusNoContent {
		t.Errorf("discard status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/reports/current", nil); w.Code != http.StatusNotFound {
		t.Errorf("after discard status = %d, want 404", w.Code)
	}
}

func TestEmptyReportWindow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/reports", gin.H{"period": "monthly"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if s.gateway.reportCalls != 0 {
		t.Errorf("gateway called %d times", s.gateway.reportCalls)
	}
}

func TestAnalytics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, seedNotes()...)

	var d struct {
		TotalNotes  int `json:"totalNotes"`
		TodayNotes  int `json:"todayNotes"`
		UrgentNotes int `json:"urgentNotes"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/v1/analytics", nil), &d)
	if d.TotalNotes != 2 || d.TodayNotes != 1 || d.UrgentNotes != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	if w := s.do(t, http.MethodGet, "/api/v1/session", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"email": "nope"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad email status = %d, want 400", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"email": "kyaw@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body)
	}
	var login struct {
		Token   string         `json:"token"`
		Session models.Session `json:"session"`
	}
	decode(t, w, &login)
	if login.Session.Name != "kyaw" {
		t.Errorf("name = %q, want kyaw", login.Session.Name)
	}
	bearer := "Bearer " + login.Token

	if w := s.do(t, http.MethodGet, "/api/v1/session", nil, "Authorization", bearer); w.Code != http.StatusOK {
		t.Fatalf("session status = %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/session/logout", nil, "Authorization", bearer); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/session", nil, "Authorization", bearer); w.Code != http.StatusUnauthorized {
		t.Errorf("after logout status = %d, want 401", w.Code)
	}
}
