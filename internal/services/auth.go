package services

import (
	"context"
	"strings"
	"time"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/cache"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

// TokenIssuer mints session tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (string, error)
}

type AuthService struct {
	store           *store.Store
	issuer          TokenIssuer
	revoker         cache.Revoker
	google          GoogleVerifier
	googleClientIDs []string
	log             *zap.Logger
}

func NewAuthService(st *store.Store, issuer TokenIssuer, revoker cache.Revoker, google GoogleVerifier, googleClientIDs []string, log *zap.Logger) *AuthService {
	return &AuthService{
		store:           st,
		issuer:          issuer,
		revoker:         revoker,
		google:          google,
		googleClientIDs: googleClientIDs,
		log:             log,
	}
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, apperrors.BadRequest("Name, email and password are required")
	}
	if !validEmail(email) {
		return nil, apperrors.BadRequest("Invalid email format")
	}

	existing, err := s.store.FindProviderByEmail(ctx, email)
	if err != nil {
		return nil, internal("Failed to check email", err)
	}
	if existing != nil {
		return nil, apperrors.BadRequest("Email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("Failed to hash password", err)
	}
	password := string(hashed)

	user := &models.User{Name: name}
	provider := &models.UserAuthProvider{Provider: models.ProviderLocal, Email: email, Password: &password}
	if err := s.store.CreateUser(ctx, user, provider); err != nil {
		return nil, internal("Failed to create user", err)
	}
	return s.session(user, email)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.BadRequest("Email and password are required")
	}

	provider, err := s.store.FindProvider(ctx, models.ProviderLocal, email)
	if err != nil {
		return nil, internal("Failed to load credentials", err)
	}
	if provider == nil || provider.Password == nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*provider.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	user, err := s.store.GetUser(ctx, provider.UserID)
	if err != nil {
		return nil, internal("Failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.Internal("User not found")
	}
	return s.session(user, email)
}

// GoogleLogin signs in with a Google ID token, linking it to an existing
// account with the same email or creating a new one.
func (s *AuthService) GoogleLogin(ctx context.Context, req models.GoogleAuthRequest) (*models.AuthResponse, error) {
	if req.IDToken == "" {
		return nil, apperrors.BadRequest("ID token is required")
	}
	identity, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		s.log.Info("google token verification failed", zap.Error(err))
		return nil, apperrors.Unauthorized("Invalid Google token")
	}
	if len(s.googleClientIDs) > 0 && !contains(s.googleClientIDs, identity.Audience) {
		return nil, apperrors.Unauthorized("Token not intended for this app")
	}
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.BadRequest("Email not available from Google account")
	}

	user, err := s.googleUser(ctx, identity, email)
	if err != nil {
		return nil, err
	}
	return s.session(user, email)
}

func (s *AuthService) googleUser(ctx context.Context, identity *GoogleIdentity, email string) (*models.User, error) {
	provider, err := s.store.FindProvider(ctx, models.ProviderGoogle, email)
	if err != nil {
		return nil, internal("Failed to load credentials", err)
	}
	if provider == nil {
		provider, err = s.store.FindProviderByEmail(ctx, email)
		if err != nil {
			return nil, internal("Failed to load credentials", err)
		}
		if provider != nil {
			link := &models.UserAuthProvider{
				UserID:     provider.UserID,
				Provider:   models.ProviderGoogle,
				Email:      email,
				ProviderID: &identity.Subject,
			}
			if err := s.store.CreateProvider(ctx, link); err != nil {
				return nil, internal("Failed to link Google account", err)
			}
		}
	}
	if provider != nil {
		user, err := s.store.GetUser(ctx, provider.UserID)
		if err != nil {
			return nil, internal("Failed to load user", err)
		}
		if user == nil {
			return nil, apperrors.Internal("User not found")
		}
		return user, nil
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &models.User{Name: name}
	if identity.Picture != "" {
		user.AvatarURL = &identity.Picture
	}
	created := &models.UserAuthProvider{Provider: models.ProviderGoogle, Email: email, ProviderID: &identity.Subject}
	if err := s.store.CreateUser(ctx, user, created); err != nil {
		return nil, internal("Failed to create user", err)
	}
	return user, nil
}

// Logout revokes token until expiresAt.
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, token, expiresAt); err != nil {
		return internal("Failed to log out", err)
	}
	return nil
}

func (s *AuthService) session(user *models.User, email string) (*models.AuthResponse, error) {
	token, err := s.issuer.Issue(user.ID, email)
	if err != nil {
		return nil, internal("Failed to generate token", err)
	}
	return &models.AuthResponse{
		Token: token,
		User: models.AuthUser{
			ID:       user.ID,
			Email:    email,
			Name:     user.Name,
			CoupleID: user.CoupleID,
		},
	}, nil
}
