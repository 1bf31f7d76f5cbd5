package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comexdata/customs_backend/middlewares"
	"github.com/gin-gonic/gin"
)

func crossingRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.SessionMiddleware())
	r.POST("/api/operations/:id/crossing", executeCrossingHandler())
	return r
}

func TestExecuteCrossingOverrideRequiresAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/operations/7/crossing",
		strings.NewReader(`{"override": true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", "O")

	w := httptest.NewRecorder()
	crossingRouter().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

// A chunked request has ContentLength -1; its body must still be bound so an
// override flag is not silently dropped.
func TestExecuteCrossingOverrideBoundFromChunkedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/operations/7/crossing",
		strings.NewReader(`{"override": true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", "O")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	w := httptest.NewRecorder()
	crossingRouter().ServeHTTP(w, req)

	// The admin gate fires only when override=true was actually decoded.
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (override dropped from chunked body?)", w.Code)
	}
}

func TestExecuteCrossingInvalidIdRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/operations/abc/crossing", nil)

	w := httptest.NewRecorder()
	crossingRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
