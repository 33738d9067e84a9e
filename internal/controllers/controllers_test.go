package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results []models.SearchResult
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubSearcher) SearchWeb(ctx context.Context, _ string, _ int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.results, s.err
}

type stubExtractor struct {
	offers []models.LoanOffer
}

func (s *stubExtractor) ExtractLoanOffers(context.Context, []models.SearchResult) ([]models.LoanOffer, error) {
	return s.offers, nil
}

type stubReplier struct {
	reply string
	err   error
}

func (s *stubReplier) GenerateReply(context.Context, string, []models.ChatMessage) (string, error) {
	return s.reply, s.err
}

// testAPI wires the JSON routes the same way the server does, minus CSRF.
type testAPI struct {
	handler http.Handler
	store   *session.Store
	cookie  *http.Cookie
	mu      sync.Mutex
}

func newTestAPI(t *testing.T, deps session.Dependencies) *testAPI {
	t.Helper()
	store := session.NewStore(deps, time.Hour, nil)
	t.Cleanup(store.Close)

	sessions := middleware.NewSessionMiddleware(store, []byte("0123456789abcdef0123456789abcdef"), "sid", false, time.Hour, nil)
	props := NewPropertyController(nil)
	loan := NewLoanController(nil)
	chat := NewChatController(nil)
	sessCtrl := NewSessionController(store, sessions)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/healthz", HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Use(sessions.SetSession)
		r.Use(sessions.RequireSession)
		r.Get("/session", sessCtrl.GetSession)
		r.Delete("/session", sessCtrl.DeleteSession)
		r.Get("/status", sessCtrl.GetStatus)
		r.Get("/properties", props.GetProperties)
		r.Post("/properties/analyze", props.PostAnalyze)
		r.Get("/loan", loan.GetLoan)
		r.Put("/loan", loan.PutLoan)
		r.Post("/loan/offers", loan.PostOffers)
		r.Get("/chat", chat.GetChat)
		r.Post("/chat", chat.PostChat)
	})
	return &testAPI{handler: r, store: store}
}

// do sends a request within one cookie-bound session and decodes the envelope.
func (a *testAPI) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	a.mu.Lock()
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	a.mu.Unlock()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		a.mu.Lock()
		a.cookie = c
		a.mu.Unlock()
	}

	var env map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func data(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, true, env["success"], env)
	d, ok := env["data"].(map[string]any)
	require.True(t, ok, env)
	return d
}

func errorCode(env map[string]any) string {
	e, _ := env["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{})
	status, env := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env["status"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{})

	status, env := api.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(env))

	status, _ = api.do(t, http.MethodDelete, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestSessionEndpoints(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{})

	status, env := api.do(t, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, status)
	id := data(t, env)["id"]
	require.NotEmpty(t, id)

	_, env = api.do(t, http.MethodGet, "/api/session", "")
	assert.Equal(t, id, data(t, env)["id"], "cookie keeps the same session")

	status, _ = api.do(t, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusNoContent, status)

	_, env = api.do(t, http.MethodGet, "/api/session", "")
	assert.NotEqual(t, id, data(t, env)["id"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{
		Searcher: &stubSearcher{results: []models.SearchResult{{Title: "Listing", URL: "https://l"}}},
	})

	status, env := api.do(t, http.MethodPost, "/api/properties/analyze",
		`{"location":" Pune ","area":1000,"bedrooms":3,"bathrooms":2,"floor":1}`)
	require.Equal(t, http.StatusCreated, status)
	card := data(t, env)
	assert.Equal(t, "Pune", card["location"])
	assert.Equal(t, "₹ 8,000,000", card["estimated_value"])
	assert.Equal(t, float64(80), card["investment_score"])
	assert.Len(t, card["search_results"], 1)

	_, env = api.do(t, http.MethodGet, "/api/properties", "")
	list := data(t, env)
	assert.Equal(t, float64(1), list["count"])
	assert.Len(t, list["analyses"], 1)

	_, env = api.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, float64(1), data(t, env)["analysis_count"])
}

func TestAnalyzeEndpoint_BadRequests(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{Searcher: &stubSearcher{}})

	for _, body := range []string{
		"",
		"{",
		`{"area":"big"}`,
		`{"area":1}{"area":2}`,
		`{"unknown":true}`,
		`{"location":"` + strings.Repeat("x", maxLocationLength+1) + `"}`,
		`{"location":"Pune","area":2000000000000000}`,
		`{"location":"Pune","area":1000,"bedrooms":51}`,
		`{"location":"Pune","area":1000,"floor":201}`,
	} {
		status, env := api.do(t, http.MethodPost, "/api/properties/analyze", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "bad_request", errorCode(env), body)
	}
}

func TestAnalyzeEndpoint_AcceptsLargestArea(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{Searcher: &stubSearcher{}})

	status, env := api.do(t, http.MethodPost, "/api/properties/analyze",
		`{"location":"Pune","area":1000000,"bedrooms":2,"bathrooms":2,"floor":1}`)
	require.Equal(t, http.StatusCreated, status)
	card := data(t, env)
	assert.Equal(t, "₹ 7,500,000,000", card["estimated_value"])
	assert.Equal(t, float64(models.MaxInvestmentScore), card["investment_score"])
}

func TestLoanEndpoints(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{
		Searcher:  &stubSearcher{},
		Extractor: &stubExtractor{offers: []models.LoanOffer{{BankName: "HDFC", InterestRate: "8.55"}}},
	})

	status, env := api.do(t, http.MethodGet, "/api/loan", "")
	require.Equal(t, http.StatusOK, status)
	loan := data(t, env)
	assert.Equal(t, "₹ 8,364", loan["emi"])
	assert.Equal(t, float64(240), loan["tenure_months"])

	_, env = api.do(t, http.MethodPut, "/api/loan", `{"principal":50,"annual_rate_percent":10}`)
	loan = data(t, env)
	assert.Equal(t, float64(models.MinPrincipal), loan["principal"])
	assert.Equal(t, float64(20), loan["tenure_years"], "omitted fields keep their value")
	assert.Equal(t, "10.00%", loan["rate"])

	status, env = api.do(t, http.MethodPost, "/api/loan/offers?wait=true", "")
	require.Equal(t, http.StatusOK, status)
	offers := data(t, env)["offers"].([]any)
	require.Len(t, offers, 1)
	assert.Equal(t, "HDFC", offers[0].(map[string]any)["bank_name"])
}

func TestLoanOffers_WaitSurvivesClientDisconnect(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{
		Searcher:  &stubSearcher{results: []models.SearchResult{{Title: "SBI"}}},
		Extractor: &stubExtractor{offers: []models.LoanOffer{{BankName: "SBI", InterestRate: "8.30"}}},
	})
	status, _ := api.do(t, http.MethodGet, "/api/loan", "")
	require.Equal(t, http.StatusOK, status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/loan/offers?wait=true", nil).WithContext(ctx)
	req.AddCookie(api.cookie)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, env := api.do(t, http.MethodGet, "/api/loan", "")
	offers := data(t, env)["offers"].([]any)
	require.Len(t, offers, 1)
	assert.Equal(t, "SBI", offers[0].(map[string]any)["bank_name"])
}

func TestLoanOffers_ConflictWhileFetching(t *testing.T) {
	searcher := &stubSearcher{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	api := newTestAPI(t, session.Dependencies{Searcher: searcher, Extractor: &stubExtractor{}})

	status, env := api.do(t, http.MethodPost, "/api/loan/offers", "")
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, true, data(t, env)["fetching"])
	<-searcher.entered

	status, env = api.do(t, http.MethodPost, "/api/loan/offers", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", errorCode(env))

	close(searcher.gate)
	api.store.Close()

	_, env = api.do(t, http.MethodGet, "/api/loan", "")
	assert.Equal(t, false, data(t, env)["fetching"])
}

func TestChatEndpoints(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{Replier: &stubReplier{reply: "Sure."}})

	status, env := api.do(t, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, status)
	chat := data(t, env)
	assert.Len(t, chat["messages"], 1)
	assert.Len(t, chat["quick_questions"], 3)

	_, env = api.do(t, http.MethodPost, "/api/chat", `{"query":"Is Baner good?"}`)
	msgs := data(t, env)["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Is Baner good?", msgs[1].(map[string]any)["content"])
	assert.Equal(t, "Sure.", msgs[2].(map[string]any)["content"])

	_, env = api.do(t, http.MethodPost, "/api/chat", `{"quick_question":1}`)
	msgs = data(t, env)["messages"].([]any)
	require.Len(t, msgs, 5)
	assert.Equal(t, models.QuickQuestions[1], msgs[3].(map[string]any)["content"])

	status, _ = api.do(t, http.MethodPost, "/api/chat", `{"quick_question":7}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChatEndpoint_ProviderFailureIsAMessage(t *testing.T) {
	api := newTestAPI(t, session.Dependencies{Replier: &stubReplier{err: models.NewConfigError("OPENAI_API_KEY")}})

	status, env := api.do(t, http.MethodPost, "/api/chat", `{"query":"hello"}`)
	require.Equal(t, http.StatusOK, status)
	msgs := data(t, env)["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, session.ReplyConfigError, msgs[2].(map[string]any)["content"])
}
