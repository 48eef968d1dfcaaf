package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
)

const testJWTSecret = "test-secret"

// fakeMailer captures outgoing reset mails instead of talking SMTP.
type fakeMailer struct {
	lastTo  string
	lastPin string
	fail    bool
}

func (m *fakeMailer) SendPasswordReset(to, name, pin string) error {
	if m.fail {
		return fmt.Errorf("smtp down")
	}
	m.lastTo = to
	m.lastPin = pin
	return nil
}

func newAuthEnv(t *testing.T) (*testEnv, *AuthService, *fakeMailer) {
	t.Helper()
	env := newTestEnv()
	mailer := &fakeMailer{}
	auth := NewAuthService(env.store.Users, env.store.ResetTokens, env.store.FCMTokens, mailer, testJWTSecret)
	return env, auth, mailer
}

func TestCreateUserAndLogin(t *testing.T) {
	_, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	user, err := auth.CreateUser(ctx, models.CreateUserRequest{
		Email:    "jane@smartwaste.com",
		Password: "secret123",
		Name:     "Jane",
		Role:     models.RoleOwner,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in clear")
	}

	token, got, err := auth.Login(ctx, "jane@smartwaste.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("logged in user = %s, want %s", got.ID, user.ID)
	}

	claims, err := middleware.ParseToken(token, testJWTSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleOwner {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	_, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "jane@smartwaste.com", Password: "secret123", Name: "Jane", Role: models.RoleOwner,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Unknown email and wrong password fail identically
	if _, _, err := auth.Login(ctx, "nobody@smartwaste.com", "secret123"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown email err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := auth.Login(ctx, "jane@smartwaste.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password err = %v, want ErrUnauthorized", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	_, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{Email: "x@y.z", Password: "p", Name: "X", Role: "superuser"}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("bad role err = %v, want ErrUnprocessable", err)
	}
	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{Email: "", Password: "p", Name: "X", Role: models.RoleOwner}); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("missing email err = %v, want ErrUnprocessable", err)
	}

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{Email: "x@y.z", Password: "secret123", Name: "X", Role: models.RoleOwner}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{Email: "x@y.z", Password: "other456", Name: "X2", Role: models.RoleAdmin}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email err = %v, want ErrConflict", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	_, auth, mailer := newAuthEnv(t)
	ctx := context.Background()

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "jane@smartwaste.com", Password: "secret123", Name: "Jane", Role: models.RoleOwner,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := auth.ForgotPassword(ctx, "jane@smartwaste.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if mailer.lastTo != "jane@smartwaste.com" || len(mailer.lastPin) != 6 {
		t.Fatalf("mail = to %q, pin %q", mailer.lastTo, mailer.lastPin)
	}

	// Wrong PIN, short password
	wrongPin := "000000"
	if mailer.lastPin == wrongPin {
		wrongPin = "000001"
	}
	if err := auth.ResetPassword(ctx, "jane@smartwaste.com", wrongPin, "newsecret"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong pin err = %v, want ErrUnauthorized", err)
	}
	if err := auth.ResetPassword(ctx, "jane@smartwaste.com", mailer.lastPin, "short"); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("short password err = %v, want ErrUnprocessable", err)
	}

	if err := auth.ResetPassword(ctx, "jane@smartwaste.com", mailer.lastPin, "newsecret"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	// Old password dead, new one live, PIN single-use
	if _, _, err := auth.Login(ctx, "jane@smartwaste.com", "secret123"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("old password err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := auth.Login(ctx, "jane@smartwaste.com", "newsecret"); err != nil {
		t.Errorf("new password login: %v", err)
	}
	if err := auth.ResetPassword(ctx, "jane@smartwaste.com", mailer.lastPin, "another1"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("reused pin err = %v, want ErrUnauthorized", err)
	}
}

func TestPasswordResetPinExpiry(t *testing.T) {
	_, auth, mailer := newAuthEnv(t)
	ctx := context.Background()

	const t0 = int64(1_000_000_000)
	auth.now = func() int64 { return t0 }

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "jane@smartwaste.com", Password: "secret123", Name: "Jane", Role: models.RoleOwner,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := auth.ForgotPassword(ctx, "jane@smartwaste.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	// 16 minutes later the 15-minute PIN is dead
	auth.now = func() int64 { return t0 + 16*60 }
	if err := auth.ResetPassword(ctx, "jane@smartwaste.com", mailer.lastPin, "newsecret"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired pin err = %v, want ErrUnauthorized", err)
	}
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	_, auth, mailer := newAuthEnv(t)

	if err := auth.ForgotPassword(context.Background(), "ghost@smartwaste.com"); err != nil {
		t.Fatalf("unknown email should succeed silently: %v", err)
	}
	if mailer.lastTo != "" {
		t.Errorf("mail sent to %q for unknown account", mailer.lastTo)
	}
}

func TestForgotPasswordMailFailure(t *testing.T) {
	_, auth, mailer := newAuthEnv(t)
	ctx := context.Background()
	mailer.fail = true

	if _, err := auth.CreateUser(ctx, models.CreateUserRequest{
		Email: "jane@smartwaste.com", Password: "secret123", Name: "Jane", Role: models.RoleOwner,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := auth.ForgotPassword(ctx, "jane@smartwaste.com"); err == nil {
		t.Error("mail failure should surface")
	}
}

func TestListUsersByRole(t *testing.T) {
	env, auth, _ := newAuthEnv(t)
	ctx := context.Background()
	env.addUser(t, "owner-1", models.RoleOwner)
	env.addUser(t, "collector-1", models.RoleCollector)

	owners, err := auth.ListUsersByRole(ctx, models.RoleOwner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owners) != 1 || owners[0].ID != "owner-1" {
		t.Errorf("owners = %+v", owners)
	}
	if _, err := auth.ListUsersByRole(ctx, "superuser"); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("bad role err = %v, want ErrUnprocessable", err)
	}
}

func TestRegisterFCMToken(t *testing.T) {
	env, auth, _ := newAuthEnv(t)
	ctx := context.Background()

	if err := auth.RegisterFCMToken(ctx, "user-1", "", "android"); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("empty token err = %v, want ErrUnprocessable", err)
	}
	if err := auth.RegisterFCMToken(ctx, "user-1", "tok-1", "windows"); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("bad device err = %v, want ErrUnprocessable", err)
	}

	if err := auth.RegisterFCMToken(ctx, "user-1", "tok-1", "android"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Re-registering the same token moves it to the new user
	if err := auth.RegisterFCMToken(ctx, "user-2", "tok-1", "ios"); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	old, err := env.store.FCMTokens.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("token still on user-1: %+v", old)
	}
	moved, err := env.store.FCMTokens.ListByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(moved) != 1 || moved[0].DeviceType != "ios" {
		t.Errorf("user-2 tokens = %+v", moved)
	}
}
