package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/services"
	"aneka-keramik/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChatSessions struct {
	converseErr error
	lastPrompt  string
	lastSession string
}

func (f *fakeChatSessions) Converse(ctx context.Context, prompt string, sessionID string) (*dtos.RecommendationResponse, error) {
	f.lastPrompt, f.lastSession = prompt, sessionID
	if f.converseErr != nil {
		return nil, f.converseErr
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, services.BadRequest("Prompt is required.")
	}
	message := "Ini rekomendasinya"
	return &dtos.RecommendationResponse{
		SessionID: "abc",
		Message:   &message,
		Products:  []models.ProductResponse{{Product: models.Product{Name: "Granit"}, FinalPrice: 1}},
		History:   []models.ChatTurn{{Role: models.ChatTurnUser, Text: prompt}},
	}, nil
}

func (f *fakeChatSessions) GetHistory(ctx context.Context, sessionID string) (*dtos.ChatHistoryResponse, error) {
	if sessionID != "abc" {
		return nil, services.NotFound("Chat session not found or expired.")
	}
	return &dtos.ChatHistoryResponse{SessionID: sessionID, History: []models.ChatTurn{}, LastProducts: []models.ProductResponse{}}, nil
}

func (f *fakeChatSessions) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID != "abc" {
		return services.NotFound("Chat session not found or expired.")
	}
	return nil
}

func recommendationRouter(svc services.ChatSessionService) *gin.Engine {
	h := NewRecommendationHandler(svc)
	router := gin.New()
	router.POST("/api/recommendations", h.Recommend)
	router.GET("/api/recommendations/:sessionId/history", h.GetHistory)
	router.DELETE("/api/recommendations/:sessionId", h.DeleteSession)
	return router
}

func serve(router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, dtos.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp dtos.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestRecommend(t *testing.T) {
	svc := &fakeChatSessions{}
	router := recommendationRouter(svc)

	w, resp := serve(router, http.MethodPost, "/api/recommendations", `{"prompt":"keramik putih","sessionId":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "keramik putih", svc.lastPrompt)
	assert.Equal(t, "abc", svc.lastSession)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "abc", data["sessionId"])
	assert.Equal(t, "Ini rekomendasinya", data["message"])
	assert.Len(t, data["products"], 1)
	assert.Len(t, data["history"], 1)

	w, resp = serve(router, http.MethodPost, "/api/recommendations", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Prompt is required.", resp.Error.Message)

	w, resp = serve(router, http.MethodPost, "/api/recommendations", `{"prompt":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation Error", resp.Error.Message)
}

func TestRecommendationHistoryAndDelete(t *testing.T) {
	router := recommendationRouter(&fakeChatSessions{})

	w, resp := serve(router, http.MethodGet, "/api/recommendations/abc/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", resp.Data.(map[string]interface{})["sessionId"])

	w, _ = serve(router, http.MethodGet, "/api/recommendations/missing/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = serve(router, http.MethodDelete, "/api/recommendations/abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Session deleted.", resp.Data.(map[string]interface{})["message"])

	w, _ = serve(router, http.MethodDelete, "/api/recommendations/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{services.NotFound("gone"), http.StatusNotFound, "gone"},
		{fmt.Errorf("%w: dropTables", services.ErrUnknownTool), http.StatusBadRequest, "model called an unknown tool: dropTables"},
		{fmt.Errorf("model call 1 failed: %w", llm.ErrRateLimited), http.StatusTooManyRequests, "Too many requests. Please try again later."},
		{repositories.ErrSessionConflict, http.StatusConflict, "Chat session was updated by another request. Please retry."},
		{services.ErrToolLoopExceeded, http.StatusBadGateway, "The assistant could not finish this request. Please rephrase it."},
		{fmt.Errorf("search: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "The recommendation took too long. Please try again."},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		status, body := errorResponse(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.message, body.Message)
	}

	validation := services.NewValidationError(dtos.ValidationErrorItem{Field: "name", Message: "taken"})
	status, body := errorResponse(validation)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []dtos.ValidationErrorItem{{Field: "name", Message: "taken"}}, body.Errors)
}

func TestParseProductQuery(t *testing.T) {
	var query services.ProductQuery
	router := gin.New()
	router.GET("/products", func(c *gin.Context) {
		query = parseProductQuery(c)
	})

	req := httptest.NewRequest(http.MethodGet,
		"/products?color=Putih,Abu-abu&color=Hitam&size=60x60,30X60,bogus&bestSeller=true&discounted=false&search=%20granit%20&order_by=price_desc&pagination_size=5",
		nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"Putih", "Abu-abu", "Hitam"}, query.Filters.Color)
	assert.Equal(t, []models.Size{{Width: 60, Height: 60}, {Width: 30, Height: 60}}, query.Filters.Size)
	assert.True(t, query.Filters.BestSeller)
	assert.False(t, query.Filters.Discounted)
	assert.Nil(t, query.Filters.Design)
	assert.Equal(t, "granit", query.SearchQuery)
	assert.Equal(t, services.OrderByPriceDesc, query.OrderBy)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 5, query.PageSize)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Zero(t, query.Page)
	assert.Zero(t, query.PageSize)
}

func TestBindErrorItems(t *testing.T) {
	router := gin.New()
	router.POST("/products", func(c *gin.Context) {
		var req dtos.ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	w, resp := serve(router, http.MethodPost, "/products", `{"name":"Granit","price":-1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation Error", resp.Error.Message)

	fields := map[string]string{}
	for _, item := range resp.Error.Errors {
		fields[item.Field] = item.Message
	}
	assert.Equal(t, "brand is required", fields["brand"])
	assert.Equal(t, "price must be greater than 0", fields["price"])
	assert.NotContains(t, fields, "name")
}

type fakeAuth struct {
	services.AuthService
	registered []string
}

func (f *fakeAuth) Register(ctx context.Context, req *dtos.RegisterRequest) (*models.User, error) {
	for _, name := range f.registered {
		if name == req.Username {
			return nil, services.NewValidationError(dtos.ValidationErrorItem{Field: "username", Message: "Username is already taken."})
		}
	}
	f.registered = append(f.registered, req.Username)
	return models.NewUser(req.Username, "hashed", models.RoleAdmin), nil
}

func TestRegister(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{registered: []string{"admin"}})
	router := gin.New()
	router.POST("/api/auth/register", h.Register)

	w, resp := serve(router, http.MethodPost, "/api/auth/register", `{"firstName":"Sari","username":"sari","password":"kasir123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sari", resp.Data.(map[string]interface{})["username"])
	assert.NotContains(t, w.Body.String(), "hashed")

	w, resp = serve(router, http.MethodPost, "/api/auth/register", `{"firstName":"Lain","username":"admin","password":"kasir123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []dtos.ValidationErrorItem{{Field: "username", Message: "Username is already taken."}}, resp.Error.Errors)

	w, resp = serve(router, http.MethodPost, "/api/auth/register", `{"firstName":"X","username":"ab","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := map[string]string{}
	for _, item := range resp.Error.Errors {
		fields[item.Field] = item.Message
	}
	assert.Equal(t, "username must have at least 3 characters", fields["username"])
	assert.Equal(t, "password must have at least 6 characters", fields["password"])
}
