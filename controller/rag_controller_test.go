package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itish2003/supportbot/models"
	"github.com/itish2003/supportbot/services"
)

type fakeRAGService struct {
	askResp  *models.AskResponse
	askErr   error
	asked    []models.AskRequest
	chunks   []models.StoredChunk
	listErr  error
	count    int
	countErr error
}

func (f *fakeRAGService) Ask(_ context.Context, req models.AskRequest) (*models.AskResponse, error) {
	f.asked = append(f.asked, req)
	return f.askResp, f.askErr
}

func (f *fakeRAGService) GetAllChunks(context.Context) (*models.GetAllChunksResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.GetAllChunksResponse{Count: len(f.chunks), Chunks: f.chunks}, nil
}

func (f *fakeRAGService) GetTotalChunks(context.Context) (int, error) {
	return f.count, f.countErr
}

func newRouter(svc services.RAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewRAGController(svc)
	r := gin.New()
	r.POST("/ask", c.Ask)
	r.GET("/api/v1/chunks", c.GetAllChunks)
	r.GET("/health", c.Health)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAsk_OK(t *testing.T) {
	svc := &fakeRAGService{askResp: &models.AskResponse{
		Answer:     "Refunds take 5 days [1].",
		Citations:  []models.Source{{N: 1, Title: "faq.md", URL: "knowledge/faq.md"}},
		Confidence: 0.9,
	}}
	w := do(newRouter(svc), http.MethodPost, "/ask", `{"question":"How long do refunds take?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"answer": "Refunds take 5 days [1].",
		"citations": [{"n": 1, "title": "faq.md", "url": "knowledge/faq.md"}],
		"confidence": 0.9
	}`, w.Body.String())
	require.Len(t, svc.asked, 1)
	assert.Equal(t, "How long do refunds take?", svc.asked[0].Question)
}

func TestAsk_InvalidBody(t *testing.T) {
	svc := &fakeRAGService{}
	w := do(newRouter(svc), http.MethodPost, "/ask", `{"question":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.asked)
}

func TestAsk_MalformedReplyIsBadGateway(t *testing.T) {
	svc := &fakeRAGService{askErr: fmt.Errorf("%w: unexpected end", services.ErrMalformedAnswer)}
	w := do(newRouter(svc), http.MethodPost, "/ask", `{"question":"hi"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
}

func TestAsk_OtherErrorIsInternal(t *testing.T) {
	svc := &fakeRAGService{askErr: errors.New("store down")}
	w := do(newRouter(svc), http.MethodPost, "/ask", `{"question":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "store down")
}

func TestGetAllChunks(t *testing.T) {
	svc := &fakeRAGService{chunks: []models.StoredChunk{
		{ID: "faq.md-0-abcd1234", Text: "Refunds", Metadata: map[string]any{"title": "faq.md"}},
	}}
	w := do(newRouter(svc), http.MethodGet, "/api/v1/chunks", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body models.GetAllChunksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "faq.md-0-abcd1234", body.Chunks[0].ID)
}

func TestGetAllChunks_Error(t *testing.T) {
	svc := &fakeRAGService{listErr: errors.New("boom")}
	w := do(newRouter(svc), http.MethodGet, "/api/v1/chunks", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	w := do(newRouter(&fakeRAGService{count: 12}), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"Support Bot","chunks":12}`, w.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	w := do(newRouter(&fakeRAGService{countErr: errors.New("unreachable")}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}
