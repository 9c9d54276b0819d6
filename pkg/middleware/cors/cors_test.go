package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New([]string{"https://school.example/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://SCHOOL.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://SCHOOL.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(nil))
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSubdomainWildcard(t *testing.T) {
	p := newPolicy([]string{"https://*.hdu.edu.vn", "http://localhost:5173"})
	assert.False(t, p.allowAll)
	assert.True(t, p.allows("https://thpt-nguyendu.hdu.edu.vn"))
	assert.True(t, p.allows("HTTP://LOCALHOST:5173/"))
	assert.False(t, p.allows("http://thpt.hdu.edu.vn"))
	assert.False(t, p.allows("https://hdu.edu.vn"))
	assert.False(t, p.allows("https://evilhdu.edu.vn"))
}
