package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TestRequestID はRequestIDミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	newRouter := func(got *string) *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/activities", func(c *gin.Context) {
			*got = GetRequestID(c)
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("ヘッダーが無い場合はUUIDが採番されること", func(t *testing.T) {
		t.Parallel()

		var got string
		w := httptest.NewRecorder()
		newRouter(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities", nil))

		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("リクエストID %q がUUID形式ではない", got)
		}
		if h := w.Header().Get(HeaderRequestID); h != got {
			t.Errorf("%s = %q, want %q", HeaderRequestID, h, got)
		}
	})

	t.Run("クライアントのリクエストIDが引き継がれること", func(t *testing.T) {
		t.Parallel()

		var got string
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)
		req.Header.Set(HeaderRequestID, "client-id-1")
		w := httptest.NewRecorder()
		newRouter(&got).ServeHTTP(w, req)

		if got != "client-id-1" {
			t.Errorf("リクエストID = %q, want %q", got, "client-id-1")
		}
		if h := w.Header().Get(HeaderRequestID); h != "client-id-1" {
			t.Errorf("%s = %q, want %q", HeaderRequestID, h, "client-id-1")
		}
	})

	t.Run("長すぎるリクエストIDは採番し直されること", func(t *testing.T) {
		t.Parallel()

		var got string
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("a", maxRequestIDLength+1))
		newRouter(&got).ServeHTTP(httptest.NewRecorder(), req)

		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("リクエストID %q がUUID形式ではない", got)
		}
	})

	t.Run("ミドルウェア未適用の場合は空文字列を返すこと", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if got := GetRequestID(c); got != "" {
			t.Errorf("GetRequestID() = %q, want empty string", got)
		}
	})
}
