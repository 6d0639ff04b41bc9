package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/repository"
	"loan-advisor/service"
)

type stubSource struct {
	records []domain.LoanRecord
	err     error
}

func (s *stubSource) Load(context.Context) ([]domain.LoanRecord, error) { return s.records, s.err }
func (s *stubSource) Name() string { return "stub" }

func sampleRecords() []domain.LoanRecord {
	return []domain.LoanRecord{
		{Income: 90000, CreditScore: 780, LoanAmount: 20000, DTIRatio: 10, EmploymentStatus: domain.Employed, Approval: domain.Approved},
		{Income: 70000, CreditScore: 720, LoanAmount: 15000, DTIRatio: 25, EmploymentStatus: domain.Employed, Approval: domain.Approved},
		{Income: 30000, CreditScore: 600, LoanAmount: 25000, DTIRatio: 55, EmploymentStatus: domain.Unemployed, Approval: domain.Rejected},
	}
}

type testServer struct {
	handler  http.Handler
	dataset  *repository.LoanDataset
	source   *stubSource
	sessions *service.SessionStore
}

func newTestServer(t *testing.T, load bool) *testServer {
	t.Helper()
	log := logger.NewNoOpLogger()

	source := &stubSource{records: sampleRecords()}
	dataset := repository.NewLoanDataset(source)
	if load {
		_, err := dataset.Load(context.Background())
		require.NoError(t, err)
	}

	stats := service.NewStatisticsService(dataset, repository.NewMemoryCache(), time.Minute, log)
	narrative := service.NewNarrativeService(nil, log)
	advisor := service.NewAdvisorService(service.NewScoringService(), narrative, stats, log)
	sessions := service.NewSessionStore(narrative, stats, time.Hour, log)
	limiter := NewRateLimiter(1000, time.Minute)
	t.Cleanup(func() {
		sessions.Stop()
		limiter.Stop()
	})

	return &testServer{
		handler: NewRouter(Handlers{
			Loan:    NewLoanHandler(advisor),
			Dataset: NewDatasetHandler(dataset, stats, 2, log),
			Chat:    NewChatHandler(sessions),
			Health:  NewHealthHandler(dataset, narrative),
		}, limiter, log),
		dataset:  dataset,
		source:   source,
		sessions: sessions,
	}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestAnalyzeHandler_OK(t *testing.T) {
	srv := newTestServer(t, true)

	w := srv.do(http.MethodPost, "/loan/analyze", `{
		"income": 85000,
		"credit_score": 760.0,
		"loan_amount": 20000,
		"dti_ratio": 15,
		"employment_status": "Employed",
		"purpose": "Home"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res domain.ApplicationAnalysis
	decodeBody(t, w, &res)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, service.RecommendationStrong, res.Recommendation)
	assert.Len(t, res.Factors, 4)
	assert.Contains(t, res.Analysis, "Analysis for application")
}

func TestScoreHandler_OK(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPost, "/loan/score", `{"income": 55000, "credit_score": 720, "loan_amount": 10000, "dti_ratio": 30, "employment_status": "employed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res domain.ScoreResult
	decodeBody(t, w, &res)
	assert.Equal(t, 70, res.Score)
	assert.Equal(t, service.RecommendationGood, res.Recommendation)
}

func TestAnalyzeHandler_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, true)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "missing fields",
			body:   `{"income": 85000}`,
			fields: []string{"credit_score", "loan_amount", "dti_ratio", "employment_status"},
		},
		{
			name:   "wrong type",
			body:   `{"income": "lots", "credit_score": 700, "loan_amount": 1, "dti_ratio": 1, "employment_status": "employed"}`,
			fields: []string{"income"},
		},
		{
			name:   "fractional credit score",
			body:   `{"income": 1, "credit_score": 700.5, "loan_amount": 1, "dti_ratio": 1, "employment_status": "employed"}`,
			fields: []string{"credit_score"},
		},
		{
			name:   "out of range",
			body:   `{"income": 0, "credit_score": 900, "loan_amount": 1, "dti_ratio": 120, "employment_status": "retired"}`,
			fields: []string{"income", "credit_score", "dti_ratio", "employment_status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/loan/analyze", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var res errorResponse
			decodeBody(t, w, &res)
			for _, f := range tt.fields {
				assert.Contains(t, res.Errors, f)
			}
		})
	}
}

func TestAnalyzeHandler_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, true)

	w := srv.do(http.MethodPost, "/loan/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, true)

	assert.Equal(t, http.StatusMethodNotAllowed, srv.do(http.MethodGet, "/loan/analyze", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, srv.do(http.MethodGet, "/loan/score", "").Code)
}

func TestDatasetHandlers(t *testing.T) {
	srv := newTestServer(t, true)

	w := srv.do(http.MethodGet, "/dataset/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats statsResponse
	decodeBody(t, w, &stats)
	assert.Equal(t, 3, stats.TotalApplications)
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, "66.7%", stats.ApprovalRateDisplay)

	w = srv.do(http.MethodGet, "/dataset/sample", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sample sampleResponse
	decodeBody(t, w, &sample)
	assert.Equal(t, 2, sample.Count)

	w = srv.do(http.MethodGet, "/dataset/sample?n=50", "")
	decodeBody(t, w, &sample)
	assert.Equal(t, 3, sample.Count)

	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/dataset/sample?n=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/dataset/sample?n=abc", "").Code)
}

func TestDatasetHandlers_NotLoaded(t *testing.T) {
	srv := newTestServer(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, srv.do(http.MethodGet, "/dataset/stats", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, srv.do(http.MethodGet, "/dataset/sample", "").Code)
}

func TestDatasetHandlers_EmptyDataset(t *testing.T) {
	srv := newTestServer(t, false)
	srv.source.records = nil
	_, err := srv.dataset.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, srv.do(http.MethodGet, "/dataset/stats", "").Code)
}

func TestDatasetReload(t *testing.T) {
	srv := newTestServer(t, true)
	before := srv.dataset.Fingerprint()

	srv.source.records = sampleRecords()[:1]
	w := srv.do(http.MethodPost, "/dataset/reload", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res reloadResponse
	decodeBody(t, w, &res)
	assert.Equal(t, 1, res.Records)
	assert.NotEqual(t, before, res.Fingerprint)

	srv.source.err = domain.ErrDataUnavailable
	assert.Equal(t, http.StatusServiceUnavailable, srv.do(http.MethodPost, "/dataset/reload", "").Code)
	n, loaded := srv.dataset.Size()
	assert.True(t, loaded)
	assert.Equal(t, 1, n)
}

func TestChatHandler_Conversation(t *testing.T) {
	srv := newTestServer(t, true)

	w := srv.do(http.MethodPost, "/chat", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first chatResponse
	decodeBody(t, w, &first)
	require.NotEmpty(t, first.SessionID)
	assert.Contains(t, first.Reply, "I can help you with loan applications")
	assert.Len(t, first.History, 2)

	w = srv.do(http.MethodPost, "/chat", `{"session_id": "`+first.SessionID+`", "message": "Explain DTI"}`)
	var second chatResponse
	decodeBody(t, w, &second)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Contains(t, second.Reply, "Debt-to-Income")
	assert.Len(t, second.History, 4)

	w = srv.do(http.MethodDelete, "/chat?session_id="+first.SessionID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	conv, ok := srv.sessions.Get(first.SessionID)
	require.True(t, ok)
	assert.Empty(t, conv.History())
}

func TestChatHandler_Errors(t *testing.T) {
	srv := newTestServer(t, true)

	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, "/chat", `{"message": ""}`).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, "/chat", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodDelete, "/chat", "").Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodDelete, "/chat?session_id=nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, srv.do(http.MethodGet, "/chat", "").Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, true)

	w := srv.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res healthResponse
	decodeBody(t, w, &res)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, service.ModeFallback, res.NarrativeMode)
	assert.True(t, res.DatasetLoaded)
	assert.Equal(t, 3, res.Records)
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(logger.NewNoOpLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
