package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
	Create(ctx context.Context, exec sqlx.ExtContext, admin *models.Admin) error
}

// AuthConfig defines configuration for admin authentication.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	BcryptCost        int
}

// AuthService checks admin credentials and issues/verifies access tokens.
type AuthService struct {
	repo      adminRepository
	store     storeRunner
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	dummyHash []byte
}

// bcrypt ignores input past 72 bytes and GenerateFromPassword rejects it.
const maxPasswordBytes = 72

type registerInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo adminRepository, metrics storeObserver, validate *validator.Validate, logger *zap.Logger, config AuthConfig, storeCfg StoreConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.BcryptCost < bcrypt.MinCost || config.BcryptCost > bcrypt.MaxCost {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 30 * time.Minute
	}
	// Unknown usernames are compared against this hash so both failure paths cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), config.BcryptCost)
	if err != nil {
		logger.Warn("failed to prepare dummy password hash", zap.Error(err))
	}
	return &AuthService{
		repo:      repo,
		store:     newStoreRunner(nil, metrics, storeCfg),
		validator: validate,
		logger:    logger,
		config:    config,
		dummyHash: dummy,
	}
}

// Authenticate verifies admin credentials and issues an access token. Unknown usernames and
// wrong passwords fail identically.
func (s *AuthService) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := dto.Validate(req, s.validator); err != nil {
		return nil, err
	}

	var admin *models.Admin
	err := s.store.do(ctx, "admin.find", func(ctx context.Context) error {
		found, err := s.repo.FindByUsername(ctx, req.Username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return storeError(err, "failed to load admin")
		}
		admin = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	hash := s.dummyHash
	if admin != nil {
		hash = []byte(admin.HashedPassword)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil || admin == nil {
		return nil, appErrors.Clone(appErrors.ErrAuthFailure, "Invalid credentials")
	}

	token, err := s.generateAccessToken(admin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	if err := s.store.do(ctx, "admin.last_login", func(ctx context.Context) error {
		return s.repo.UpdateLastLogin(ctx, admin.ID, time.Now().UTC())
	}); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("admin_id", admin.ID), zap.Error(err))
	}

	s.logger.Info("admin logged in", zap.Int64("admin_id", admin.ID))
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   dto.TokenTypeBearer,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
	}, nil
}

// Authorize parses and validates an access token returning the claims.
func (s *AuthService) Authorize(tokenString string) (*models.AdminClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuthFailure.Code, appErrors.ErrAuthFailure.Status, "Could not validate credentials")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, appErrors.Clone(appErrors.ErrAuthFailure, "Could not validate credentials")
	}
	return claims, nil
}

// Register creates an admin account. It backs the create-admin command; the HTTP API has no
// sign-up route.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.Admin, error) {
	if err := dto.Validate(registerInput{Username: username, Password: password}, s.validator); err != nil {
		return nil, err
	}
	if len(password) > maxPasswordBytes {
		return nil, appErrors.WithFields(appErrors.ErrValidation, []appErrors.FieldError{{
			Field:   "password",
			Rule:    "max",
			Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
		}})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	admin := &models.Admin{Username: username, HashedPassword: string(hash)}
	err = s.store.do(ctx, "admin.create", func(ctx context.Context) error {
		if err := s.repo.Create(ctx, nil, admin); err != nil {
			return storeError(err, "failed to create admin")
		}
		return nil
	})
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrConflict.Code {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "admin username already exists")
		}
		return nil, err
	}

	s.logger.Info("admin created", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return admin, nil
}

func (s *AuthService) generateAccessToken(admin *models.Admin) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   admin.Username,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
