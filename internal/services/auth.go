package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

const (
	tokenLifetime    = 7 * 24 * time.Hour
	resetPinLifetime = 15 * time.Minute
)

// Mailer sends account emails. EmailService is the real implementation.
type Mailer interface {
	SendPasswordReset(to, name, pin string) error
}

// AuthService covers login, account creation, password reset and push
// token registration.
type AuthService struct {
	users     store.UserStore
	tokens    store.ResetTokenStore
	fcmTokens store.FCMTokenStore
	mailer    Mailer

	jwtSecret []byte
	now       func() int64
}

func NewAuthService(users store.UserStore, tokens store.ResetTokenStore, fcmTokens store.FCMTokenStore, mailer Mailer, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		fcmTokens: fcmTokens,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		now:       func() int64 { return time.Now().Unix() },
	}
}

// Login verifies credentials and returns a signed JWT plus the user.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	log.Printf("🔐 Login attempt for: %s", email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("❌ User not found: %s", email)
			return "", nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("❌ Invalid password for: %s", email)
		return "", nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     issued,
		"exp":     issued + int64(tokenLifetime.Seconds()),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)
	return signed, user, nil
}

// CreateUser registers an account. Admin-only at the transport layer.
func (s *AuthService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", ErrUnprocessable)
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleCollector, models.RoleOwner:
	default:
		return nil, fmt.Errorf("role %q invalid: %w", req.Role, ErrUnprocessable)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  string(hash),
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("email %s already registered: %w", req.Email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// ForgotPassword issues a one-time PIN and mails it. An unknown email
// succeeds silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("🔑 Password reset requested for unknown email: %s", email)
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	pin, err := generatePin()
	if err != nil {
		return fmt.Errorf("generate pin: %w", err)
	}

	token := &models.PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Pin:       pin,
		ExpiresAt: s.now() + int64(resetPinLifetime.Seconds()),
		Used:      false,
		CreatedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(user.Email, user.Name, pin); err != nil {
			log.Printf("⚠️ Reset email to %s failed: %v", user.Email, err)
			return fmt.Errorf("send reset email: %w", err)
		}
	}
	log.Printf("🔑 Password reset PIN issued for: %s", user.Email)
	return nil
}

// ResetPassword consumes a PIN and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, pin, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", ErrUnprocessable)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("invalid pin: %w", ErrUnauthorized)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	token, err := s.tokens.GetActive(ctx, user.ID, pin, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("❌ Invalid or expired reset PIN for: %s", email)
			return fmt.Errorf("invalid pin: %w", ErrUnauthorized)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	log.Printf("✅ Password reset for: %s", email)
	return nil
}

// ListUsersByRole returns all accounts holding a role.
func (s *AuthService) ListUsersByRole(ctx context.Context, role string) ([]models.UserResponse, error) {
	switch role {
	case models.RoleAdmin, models.RoleCollector, models.RoleOwner:
	default:
		return nil, fmt.Errorf("role %q invalid: %w", role, ErrUnprocessable)
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToUserResponse()
	}
	return out, nil
}

// DeleteUser removes an account.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	log.Printf("🗑️ User deleted: %s", id)
	return nil
}

// RegisterFCMToken records a device push token, replacing any prior owner.
func (s *AuthService) RegisterFCMToken(ctx context.Context, userID, token, deviceType string) error {
	if token == "" {
		return fmt.Errorf("token is required: %w", ErrUnprocessable)
	}
	if deviceType != "ios" && deviceType != "android" {
		return fmt.Errorf("device type %q invalid: %w", deviceType, ErrUnprocessable)
	}
	record := &models.FCMToken{
		UserID:     userID,
		Token:      token,
		DeviceType: deviceType,
		CreatedAt:  s.now(),
		UpdatedAt:  s.now(),
	}
	if err := s.fcmTokens.Save(ctx, record); err != nil {
		return fmt.Errorf("register fcm token: %w", err)
	}
	log.Printf("📱 FCM token registered for user %s (%s)", userID, deviceType)
	return nil
}

// generatePin returns a 6-digit numeric PIN.
func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
