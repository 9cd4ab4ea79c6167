package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/logger"
)

func TestRequestIDGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())

	var stored string
	r.GET("/", func(c *gin.Context) {
		stored = c.GetString(logger.FieldRequestID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := w.Header().Get(RequestIDHeader)
	if echoed == "" {
		t.Fatal("no request id echoed in response")
	}
	if stored != echoed {
		t.Errorf("context id %q differs from response header %q", stored, echoed)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "upstream-id" {
		t.Errorf("caller-supplied id not preserved: got %q", got)
	}
}
