package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"artdb/proj/internal/domain/models"
	"artdb/proj/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UsersStorage interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, username, email, bio, role, confirmationCodeHash string) (*models.User, error)
	SetConfirmationCode(ctx context.Context, userID int64, confirmationCodeHash string) error
}

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

// CodeGenerator produces confirmation codes. Injected so tests can use a
// deterministic one.
type CodeGenerator interface {
	NewCode() string
}

type TaskExecutor interface {
	Add(task func())
}

type UUIDCodeGenerator struct{}

func (UUIDCodeGenerator) NewCode() string {
	return uuid.NewString()
}

type AuthService struct {
	log          *slog.Logger
	storage      UsersStorage
	Mailer       MailProvider
	codes        CodeGenerator
	taskExecutor TaskExecutor
	secret       []byte
	tokenTTL     time.Duration
}

func New(
	log *slog.Logger,
	storage UsersStorage,
	mailer MailProvider,
	codes CodeGenerator,
	taskExecutor TaskExecutor,
	secret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		log:          log,
		storage:      storage,
		Mailer:       mailer,
		codes:        codes,
		taskExecutor: taskExecutor,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
	}
}

func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func checkCode(code, storedHash string) bool {
	computed := HashCode(code)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

func (a *AuthService) sendConfirmationEmail(email, username, code string) {
	a.log.Info("sending confirmation email")
	err := a.Mailer.Send(
		email,
		"confirmation_code.html",
		map[string]any{
			"username":         username,
			"confirmationCode": code,
		})
	if err != nil {
		a.log.Error("Error sending confirmation email", "errMsg", err.Error())
	}
}

// Signup registers a user or, for an existing (username, email) pair,
// rotates the confirmation code so the flow doubles as "resend code".
// Email delivery runs in the background and never fails the request.
func (a *AuthService) Signup(ctx context.Context, username, email string) error {
	const op = "auth.AuthService.Signup"
	log := a.log.With("op", op, "username", username)
	code := a.codes.NewCode()
	codeHash := HashCode(code)
	user, err := a.storage.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			log.Info("username bound to another email")
			return ErrUserExists
		}
		if err := a.storage.SetConfirmationCode(ctx, user.ID, codeHash); err != nil {
			log.Error(err.Error())
			return err
		}
	case errors.Is(err, storage.ErrNotFound):
		// The email unique constraint catches the remaining conflict:
		// this email already bound to a different username.
		if _, err := a.storage.Insert(ctx, username, email, "", models.RoleUser, codeHash); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				log.Info("email already taken")
				return ErrUserExists
			}
			log.Error(err.Error())
			return err
		}
	default:
		log.Error(err.Error())
		return err
	}
	a.taskExecutor.Add(func() {
		a.sendConfirmationEmail(email, username, code)
	})
	return nil
}

// ExchangeToken trades a valid (username, confirmation code) pair for a
// signed access token. The code is verified per call, not consumed.
func (a *AuthService) ExchangeToken(ctx context.Context, username, confirmationCode string) (string, error) {
	const op = "auth.AuthService.ExchangeToken"
	log := a.log.With("op", op, "username", username)
	user, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return "", ErrUserNotFound
		}
		log.Error(err.Error())
		return "", err
	}
	if !checkCode(confirmationCode, user.ConfirmationCodeHash) {
		log.Info("confirmation code mismatch")
		return "", ErrInvalidConfirmationCode
	}
	token, err := a.issueToken(user)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}
	return token, nil
}

func (a *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      jwt.NewNumericDate(now),
		"exp":      jwt.NewNumericDate(now.Add(a.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and loads its user.
func (a *AuthService) VerifyToken(ctx context.Context, tokenStr string) (*models.User, error) {
	const op = "auth.AuthService.VerifyToken"
	log := a.log.With("op", op)
	parsedToken, err := jwt.Parse(
		tokenStr,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		log.Info("invalid token", "errMsg", err.Error())
		return nil, ErrInvalidToken
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ErrInvalidToken
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	user, err := a.storage.Get(ctx, int64(uid))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("token user no longer exists", "uid", uid)
			return nil, ErrInvalidToken
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}
