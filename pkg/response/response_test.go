package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/middleware/requestid"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	return r
}

func get(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)
	body := map[string]json.RawMessage{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/csv" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestListWritesCountAndEmptyArray(t *testing.T) {
	r := newRouter()
	r.GET("/", func(c *gin.Context) { List[string](c, nil) })

	w, body := get(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `[]`, string(body["data"]))
	assert.JSONEq(t, `{"count":0}`, string(body["meta"]))
}

func TestErrorCarriesRequestID(t *testing.T) {
	r := newRouter()
	r.GET("/", func(c *gin.Context) {
		Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "class has no students"))
	})

	w, body := get(t, r)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.JSONEq(t, `{"request_id":"req-1"}`, string(body["meta"]))
	assert.Contains(t, string(body["error"]), "PRECONDITION_FAILED")
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestErrorNormalisesUnknownErrors(t *testing.T) {
	r := newRouter()
	r.GET("/", func(c *gin.Context) { Error(c, errors.New("disk on fire")) })

	w, body := get(t, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, string(body["error"]), appErrors.ErrInternal.Code)
}

func TestAttachment(t *testing.T) {
	r := newRouter()
	r.GET("/", func(c *gin.Context) { Attachment(c, "diem_10A1.csv", "text/csv", []byte("a,b\n")) })

	w, _ := get(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="diem_10A1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
