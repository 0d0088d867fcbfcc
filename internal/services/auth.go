package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type AuthService interface {
	// Login checks the password and issues a signed session token.
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	// ParseToken validates a session token and returns the caller it names.
	ParseToken(tokenString string) (*ctxutil.RequestData, error)
	SessionTTL() time.Duration
}

type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	log        *logger.Logger
	userRepo   repos.UserRepo
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:        log.With("service", "AuthService"),
		userRepo:   userRepo,
		secret:     []byte(jwtSecretKey),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, apierr.Validation("Email and password required")
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return "", nil, apierr.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apierr.Unauthorized("Invalid credentials")
	}

	tok, err := as.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	as.log.Info("user logged in", "user_id", user.ID)
	return tok, user, nil
}

func (as *authService) generateToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
}

func (as *authService) ParseToken(tokenString string) (*ctxutil.RequestData, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, apierr.Unauthorized("Not authenticated")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierr.Unauthorized("Session expired")
		}
		return nil, apierr.Unauthorized("Invalid token")
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, apierr.Unauthorized("Invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthorized("Invalid token")
	}
	return &ctxutil.RequestData{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (as *authService) SessionTTL() time.Duration { return as.sessionTTL }

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
