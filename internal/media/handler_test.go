package media

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func mediaRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/media/presign", h.Presign)
	r.DELETE("/admin/media", h.Delete)
	return r
}

func TestMediaEndpointsWithoutStorage(t *testing.T) {
	r := mediaRouter(NewHandler(nil, nil))

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"presign", http.MethodPost, "/admin/media/presign", `{"kind":"posts","filename":"a.png"}`},
		{"delete", http.MethodDelete, "/admin/media", `{"key":"media/posts/x/a.png"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", w.Code)
			}
		})
	}
}
