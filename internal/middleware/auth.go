package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/arnold/couples-api/internal/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Identity issues and verifies session tokens.
type Identity interface {
	Issue(userID uuid.UUID, email string) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTIdentity signs HS256 tokens with a shared secret.
type JWTIdentity struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIdentity(secret string, ttl time.Duration) *JWTIdentity {
	return &JWTIdentity{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIdentity) Issue(userID uuid.UUID, email string) (string, error) {
	now := j.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWTIdentity) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}

// Protected rejects requests without a valid, unrevoked bearer token and
// stores the caller's identity in the request locals.
func Protected(identity Identity, revoker cache.Revoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := identity.Verify(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		revoked, err := revoker.IsRevoked(c.UserContext(), tokenString)
		if err != nil {
			return err
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		// Store user info in context
		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("token", tokenString)
		if claims.ExpiresAt != nil {
			c.Locals("tokenExpiresAt", claims.ExpiresAt.Time)
		}

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetToken returns the caller's raw bearer token and its expiry.
func GetToken(c *fiber.Ctx) (string, time.Time) {
	token, _ := c.Locals("token").(string)
	exp, _ := c.Locals("tokenExpiresAt").(time.Time)
	return token, exp
}
