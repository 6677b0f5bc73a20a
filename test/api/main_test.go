package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/rota-api/internal/app"
	"github.com/jwalitptl/rota-api/internal/config"
	assignmentHandler "github.com/jwalitptl/rota-api/internal/handler/assignment"
	directoryHandler "github.com/jwalitptl/rota-api/internal/handler/directory"
	"github.com/jwalitptl/rota-api/internal/handler/health"
	rotaHandler "github.com/jwalitptl/rota-api/internal/handler/rota"
	"github.com/jwalitptl/rota-api/internal/middleware"
	"github.com/jwalitptl/rota-api/internal/router"
	"github.com/jwalitptl/rota-api/pkg/auth"
)

const jwtSecret = "e2e-secret"

var (
	baseURL   string
	authToken string
)

// APIResponse represents the API response structure
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	Code    int
	Status  string
	Message string
	Data    map[string]interface{}
	List    []map[string]interface{}
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(middleware.DefaultValidationConfig()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := &config.Config{
		Server:   config.ServerConfig{MetricsNamespace: "e2e"},
		Database: config.DatabaseConfig{Driver: "memory"},
		Redis:    config.RedisConfig{Channel: "rota.changes"},
	}
	reg := prometheus.NewRegistry()
	a, err := app.New(ctx, cfg, reg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	r := router.NewRouter(router.RouterConfig{
		RateLimit:        rate.Inf,
		RequestTimeout:   5 * time.Second,
		MaxBodyBytes:     1 << 20,
		CORSConfig:       middleware.DefaultCORSConfig(),
		Actor:            middleware.ActorConfig{JWTSecret: jwtSecret},
		MetricsNamespace: "e2e",
		Registerer:       reg,
	},
		health.NewHandler(map[string]health.Pinger{"store": a.Store}, reg),
		directoryHandler.NewHandler(a.Directory),
		assignmentHandler.NewHandler(a.Assignment),
		rotaHandler.NewHandler(a.Rota),
	)
	r.Setup()

	srv := httptest.NewServer(r.Engine())
	baseURL = srv.URL + "/api/v1"

	authToken, err = auth.Issue(auth.Config{Secret: jwtSecret}, "e2e-manager", time.Hour)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()
	srv.Close()
	os.Exit(code)
}

func makeRequest(t *testing.T, method, path string, body interface{}) TestResponse {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	out := TestResponse{Code: resp.StatusCode, Status: apiResp.Status, Message: apiResp.Message}
	if len(apiResp.Data) > 0 && apiResp.Data[0] == '[' {
		_ = json.Unmarshal(apiResp.Data, &out.List)
	} else if len(apiResp.Data) > 0 {
		_ = json.Unmarshal(apiResp.Data, &out.Data)
	}
	return out
}
