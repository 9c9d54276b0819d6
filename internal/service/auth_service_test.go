package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

type stubPuller struct {
	err   error
	owner string
	calls int
}

func (p *stubPuller) PullAll(ctx context.Context, ws *repository.Workspace) error {
	p.calls++
	p.owner = ws.Owner()
	return p.err
}

func newAuthFixture(t *testing.T, puller cloudPuller) (*AuthService, *WorkspaceFactory) {
	t.Helper()
	factory, _ := newTestFactory(t)
	_, err := factory.Global().Directory.Add(context.Background(), "Co.Lan@School.vn", "Cô Lan")
	require.NoError(t, err)
	svc := NewAuthService(factory, puller, nil, nil, AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "classroom-api",
		DefaultPassword:   "123456",
		CloudPullTimeout:  time.Second,
	})
	return svc, factory
}

func TestAuthServiceLoginWithDefaultPassword(t *testing.T) {
	puller := &stubPuller{}
	svc, _ := newAuthFixture(t, puller)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "co.lan@school.vn", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "co.lan@school.vn", resp.Teacher.Email)
	assert.Equal(t, models.RoleTeacher, resp.Teacher.Role)
	assert.True(t, resp.CloudSynced)
	assert.Equal(t, 1, puller.calls)
	assert.Equal(t, "co.lan@school.vn", puller.owner)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "co.lan@school.vn", claims.Email)
	assert.Equal(t, "classroom-api", claims.Issuer)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, factory := newAuthFixture(t, &stubPuller{})

	_, err := svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn", Password: "wrong"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "stranger@school.vn", Password: "123456"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = factory.Global().Directory.ToggleLock(ctx, "co.lan@school.vn")
	require.NoError(t, err)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn", Password: "123456"})
	assert.True(t, errors.Is(err, appErrors.ErrAccountLocked))
}

func TestAuthServiceLoginSurvivesCloudFailure(t *testing.T) {
	svc, _ := newAuthFixture(t, &stubPuller{err: errors.New("offline")})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "co.lan@school.vn", Password: "123456"})
	require.NoError(t, err)
	assert.False(t, resp.CloudSynced)
}

func TestAuthServiceChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t, nil)
	session := &models.SessionTeacher{Email: "co.lan@school.vn", Name: "Cô Lan", Role: models.RoleTeacher}

	err := svc.ChangePassword(ctx, session, models.ChangePasswordRequest{OldPassword: "bad", NewPassword: "mat-khau-moi"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = svc.ChangePassword(ctx, session, models.ChangePasswordRequest{OldPassword: "123456", NewPassword: "abc"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	require.NoError(t, svc.ChangePassword(ctx, session, models.ChangePasswordRequest{OldPassword: "123456", NewPassword: "mat-khau-moi"}))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn", Password: "123456"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	resp, err := svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn", Password: "mat-khau-moi"})
	require.NoError(t, err)
	assert.False(t, resp.CloudSynced)
}

func TestAuthServiceSessionFromToken(t *testing.T) {
	ctx := context.Background()
	svc, factory := newAuthFixture(t, nil)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "co.lan@school.vn", Password: "123456"})
	require.NoError(t, err)

	session, err := svc.SessionFromToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Cô Lan", session.Name)

	require.NoError(t, factory.Global().Directory.Delete(ctx, "co.lan@school.vn"))
	_, err = svc.SessionFromToken(ctx, resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
