package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

type staticResolver struct {
	token   string
	session models.SessionTeacher
	err     error
}

func (r staticResolver) SessionFromToken(_ context.Context, token string) (*models.SessionTeacher, error) {
	if r.err != nil {
		return nil, r.err
	}
	if token != r.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	s := r.session
	return &s, nil
}

func newRouter(resolver SessionResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(resolver)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, SessionFromContext(c).Email)
	})
	router.GET("/me", handlers...)
	return router
}

func TestJWTAcceptsBearerHeader(t *testing.T) {
	resolver := staticResolver{token: "tok", session: models.SessionTeacher{Email: "lan@school.vn", Role: models.RoleTeacher}}
	router := newRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lan@school.vn", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?access_token=tok", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMissingOrLocked(t *testing.T) {
	router := newRouter(staticResolver{token: "tok"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic tok")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	locked := newRouter(staticResolver{err: appErrors.ErrAccountLocked})
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w = httptest.NewRecorder()
	locked.ServeHTTP(w, req)
	assert.Equal(t, appErrors.ErrAccountLocked.Status, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	teacher := newRouter(staticResolver{token: "tok", session: models.SessionTeacher{Email: "lan@school.vn", Role: models.RoleTeacher}}, RequireAdmin())
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	teacher.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newRouter(staticResolver{token: "tok", session: models.SessionTeacher{Email: models.BootstrapAdminEmail, Role: models.RoleAdmin}}, RequireAdmin())
	w = httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

type recordingObserver struct {
	paths    []string
	statuses []int
}

func (o *recordingObserver) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.paths = append(o.paths, path)
	o.statuses = append(o.statuses, status)
}

func TestMetricsLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/HS01", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []string{"/students/:id", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, observer.statuses)
}
