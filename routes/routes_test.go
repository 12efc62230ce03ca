package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/party-bets/handlers"
	"github.com/Dosada05/party-bets/live"
	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyEntryService struct{}

func (emptyEntryService) SubmitEntry(context.Context, services.SubmitEntryInput) (*models.Entry, error) {
	return nil, services.ErrPersistence
}
func (emptyEntryService) ListEntries(context.Context) ([]*models.Entry, error) {
	return []*models.Entry{}, nil
}
func (emptyEntryService) GetEntry(context.Context, int64) (*models.Entry, error) {
	return nil, services.ErrEntryNotFound
}
func (emptyEntryService) ListMembers(context.Context) ([]models.Member, error) {
	return []models.Member{}, nil
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	SetupRoutes(router,
		handlers.NewEntryHandler(emptyEntryService{}),
		handlers.NewWebSocketHandler(live.NewHub(nil)),
		Options{AllowedOrigins: []string{"https://party.example"}},
	)
	return router
}

func TestSetupRoutes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/", http.StatusFound},
		{http.MethodGet, "/entries", http.StatusOK},
		{http.MethodGet, "/entries/12", http.StatusNotFound},
		{http.MethodGet, "/members", http.StatusOK},
		{http.MethodDelete, "/entries/12", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSetupRoutes_SwaggerDoc(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/entries")
}

func TestSetupRoutes_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/entries", nil)
	req.Header.Set("Origin", "https://party.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "https://party.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
