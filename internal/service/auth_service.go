package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// cloudPuller refreshes a workspace from the cloud mirror.
type cloudPuller interface {
	PullAll(ctx context.Context, ws *repository.Workspace) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	// DefaultPassword is accepted for directory members without a stored hash.
	DefaultPassword string
	// CloudPullTimeout bounds the awaited cloud pull after a successful login.
	CloudPullTimeout time.Duration
}

// AuthService opens teacher sessions against the authorized-teacher directory.
type AuthService struct {
	workspaces workspaceProvider
	cloud      cloudPuller
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance. cloud may be nil.
func NewAuthService(workspaces workspaceProvider, cloud cloudPuller, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{workspaces: workspaces, cloud: cloud, validator: validate, logger: logger, config: config}
}

// checkPassword compares against the stored hash, or the default password
// when the teacher never set one.
func (s *AuthService) checkPassword(teacher *models.Teacher, password string) bool {
	if teacher.PasswordHash == "" {
		return s.config.DefaultPassword != "" && password == s.config.DefaultPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(password)) == nil
}

// Login authenticates a directory member, issues an access token and pulls
// the teacher's cloud copy before returning.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	teacher := s.workspaces.For(nil).Directory.Find(ctx, req.Email)
	if teacher == nil || !s.checkPassword(teacher, req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if teacher.IsLocked {
		return nil, appErrors.Clone(appErrors.ErrAccountLocked, "account is locked")
	}

	session := teacher.Session()
	accessToken, issuedAt, err := s.generateAccessToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	synced := s.pull(ctx, &session)
	s.logger.Info("teacher signed in", zap.String("email", session.Email), zap.Bool("cloud_synced", synced))

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Teacher:     session,
		IssuedAt:    issuedAt,
		CloudSynced: synced,
	}, nil
}

func (s *AuthService) pull(ctx context.Context, session *models.SessionTeacher) bool {
	if s.cloud == nil {
		return false
	}
	if s.config.CloudPullTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CloudPullTimeout)
		defer cancel()
	}
	if err := s.cloud.PullAll(ctx, s.workspaces.For(session)); err != nil {
		s.logger.Warn("cloud pull failed, keeping local data", zap.String("email", session.Email), zap.Error(err))
		return false
	}
	return true
}

// ChangePassword replaces the session teacher's password.
func (s *AuthService) ChangePassword(ctx context.Context, session *models.SessionTeacher, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid change password payload")
	}
	if err := requireSession(session); err != nil {
		return err
	}

	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		teacher := ws.Directory.Find(ctx, session.Email)
		if teacher == nil {
			return appErrors.NotFound("teacher")
		}
		if !s.checkPassword(teacher, req.OldPassword) {
			return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		return ws.Directory.SetPasswordHash(ctx, session.Email, string(newHash))
	})
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// SessionFromToken validates a token and re-checks the directory so locked
// or removed teachers lose access before their token expires.
func (s *AuthService) SessionFromToken(ctx context.Context, tokenString string) (*models.SessionTeacher, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	teacher := s.workspaces.For(nil).Directory.Find(ctx, claims.Email)
	if teacher == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "teacher is no longer authorized")
	}
	if teacher.IsLocked {
		return nil, appErrors.Clone(appErrors.ErrAccountLocked, "account is locked")
	}
	session := teacher.Session()
	return &session, nil
}

func (s *AuthService) generateAccessToken(session models.SessionTeacher) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		Email: session.Email,
		Name:  session.Name,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}
