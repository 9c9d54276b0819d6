package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/signer"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	store := service.InstrumentStore(storage.NewMemoryStore(), metrics)
	factory := service.NewWorkspaceFactory(store, nil)
	_, err := factory.Global().Directory.Add(context.Background(), "lan@school.vn", "Cô Lan")
	require.NoError(t, err)

	grades := service.NewGradeService(factory, nil, nil, metrics)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	return newRouter(cfg, zap.NewNop(), services{
		auth: service.NewAuthService(factory, nil, nil, nil, service.AuthConfig{
			AccessTokenSecret: "secret",
			AccessTokenExpiry: time.Hour,
			DefaultPassword:   "123456",
		}),
		directory:     service.NewDirectoryService(factory, nil, nil),
		schools:       service.NewSchoolService(factory, nil, nil),
		students:      service.NewStudentService(factory, nil, nil),
		attendance:    service.NewAttendanceService(factory, nil, nil),
		grades:        grades,
		transfers:     service.NewTransferService(factory, nil, nil, metrics, service.TransferOptions{}),
		messages:      service.NewMessageService(factory, nil, nil),
		comments:      service.NewCommentService(factory, nil),
		notifications: service.NewNotificationService(factory, store, nil, time.Second),
		backups:       service.NewBackupService(factory, nil),
		exports:       service.NewExportService(factory, grades, nil),
		reports:       service.NewReportService(factory, nil),
		metrics:       metrics,
		streamTokens:  signer.NewTokenSigner("secret", time.Minute),
		store:         store,
	})
}

func do(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data.AccessToken
}

func TestRouterAuthenticatesAndScopesRoutes(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/v1/schools", "", "").Code)

	token := login(t, r, "lan@school.vn", "123456")
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/auth/me", token, "").Code)
	assert.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/schools", token, `{"name":"THPT Nguyễn Du"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodPost, "/api/v1/teachers", token, `{"email":"hoa@school.vn"}`).Code)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/api/v1/stats", token, "").Code)

	admin := login(t, r, "admin@hdu.com", "123456")
	stats := do(t, r, http.MethodGet, "/api/v1/stats", admin, "")
	assert.Equal(t, http.StatusOK, stats.Code)
	assert.Contains(t, stats.Body.String(), "store_operations")
	assert.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/teachers", admin, `{"email":"hoa@school.vn"}`).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/v1/teachers/lan@school.vn/lock", admin, "").Code)

	// a locked teacher loses access before the token expires
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/api/v1/schools", token, "").Code)
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/comments/suggest?average=7", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/v1/notifications/stream?token=bad", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/docs/index.html", "", "").Code)

	w := do(t, r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data.ID
}

func TestRouterReorderAndReports(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "lan@school.vn", "123456")

	first := createdID(t, do(t, r, http.MethodPost, "/api/v1/schools", token, `{"name":"THPT A"}`))
	second := createdID(t, do(t, r, http.MethodPost, "/api/v1/schools", token, `{"name":"THPT B"}`))

	w := do(t, r, http.MethodPost, "/api/v1/schools/reorder", token, `{"draggedId":"`+second+`","targetId":"`+first+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "THPT B", env.Data[0].Name)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/api/v1/classes/reorder", token,
		`{"schoolId":"`+first+`","draggedId":"x","targetId":"y"}`).Code)

	class := createdID(t, do(t, r, http.MethodPost, "/api/v1/classes", token, `{"name":"10A1","schoolId":"`+first+`"}`))
	report := do(t, r, http.MethodGet, "/api/v1/reports/classes/"+class, token, "")
	assert.Equal(t, http.StatusOK, report.Code)
	assert.Contains(t, report.Body.String(), `"topStudents":[]`)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/reports/classes/missing", token, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/grades/commentary?classId="+class+"&subjectId=missing", token, "").Code)
}
