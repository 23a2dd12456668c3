package http_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/identity-service/internal/auth"
	"github.com/tazhibayda/identity-service/internal/facebook"
	api "github.com/tazhibayda/identity-service/internal/http"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
)

const testSecret = "test_secret_key"

type stubProvider struct {
	tokens      map[string]string
	profiles    map[string]facebook.Profile
	profileDown bool
}

func (p *stubProvider) VerifyToken(ctx context.Context, userToken string) (string, error) {
	if id, ok := p.tokens[userToken]; ok {
		return id, nil
	}
	return "", facebook.ErrInvalidToken
}

func (p *stubProvider) FetchProfile(ctx context.Context, externalID, userToken string) (facebook.Profile, error) {
	if p.profileDown {
		return facebook.Profile{}, facebook.ErrUnavailable
	}
	if prof, ok := p.profiles[externalID]; ok {
		return prof, nil
	}
	return facebook.Profile{}, facebook.ErrUnavailable
}

type testEnv struct {
	Store    *repo.Memory
	Provider *stubProvider
	Router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repo.NewMemory()
	provider := &stubProvider{
		tokens: map[string]string{"fb-token-jane": "fb-77"},
		profiles: map[string]facebook.Profile{
			"fb-77": {ExternalID: "fb-77", Name: "Jane", Email: "jane@example.com"},
		},
	}
	svc := auth.New(store, provider, testSecret)

	// no Mongo ping, no Redis, no broker in unit tests
	h := api.NewHandler(svc, nil, nil, 0, queue.NewNoop())

	gin.SetMode(gin.TestMode)
	return &testEnv{Store: store, Provider: provider, Router: api.NewRouter(h)}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	e.Router.ServeHTTP(w, req)
	return w
}
