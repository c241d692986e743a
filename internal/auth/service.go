package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
	"github.com/arekbor/helpdesk/internal/repository"
)

// Store interfaces stay narrow so tests can fake them without a database.
// The repository types satisfy them directly.

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, firstName, lastName, email string, avatarURL *string) (model.User, error)
}

type CredentialStore interface {
	Create(ctx context.Context, userUUID, passwordHash string, otp *string) error
	GetByUserUUID(ctx context.Context, userUUID string) (model.Credential, error)
	MarkEmailVerified(ctx context.Context, userUUID string) error
	UpdatePassword(ctx context.Context, userUUID, passwordHash string) error
}

type SessionStore interface {
	Create(ctx context.Context, userUUID, tokenHash string, expiresAt time.Time) error
	Revoke(ctx context.Context, tokenHash string) (bool, error)
}

type RoleStore interface {
	RoleByName(ctx context.Context, name string) (model.Role, error)
	Assign(ctx context.Context, userUUID, roleUUID string) error
}

// Welcomer dispatches the welcome email carrying the verification code.
// Delivery is fire-and-forget: a failure is logged, never surfaced.
type Welcomer interface {
	SendWelcome(ctx context.Context, to, name, otp string) error
}

// Service implements the session/authentication lifecycle.
type Service struct {
	Users       UserStore
	Credentials CredentialStore
	Sessions    SessionStore
	Roles       RoleStore
	Welcome     Welcomer

	BcryptCost    int
	SessionTTLMin int
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

const defaultRole = "user"

// Register creates a user, its credential with a fresh OTP, assigns the
// default role and dispatches the welcome email. The email send must not
// abort registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, httpx.BadRequest("User already exist")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	user, err := s.Users.Create(ctx, in.FirstName, in.LastName, in.Email, nil)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, httpx.BadRequest("User already exist")
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	hash, err := HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	otp, err := NewOTP()
	if err != nil {
		return model.User{}, fmt.Errorf("generate otp: %w", err)
	}
	if err := s.Credentials.Create(ctx, user.UUID, hash, &otp); err != nil {
		return model.User{}, fmt.Errorf("create credential: %w", err)
	}

	if err := s.assignDefaultRole(ctx, user.UUID); err != nil {
		return model.User{}, err
	}

	if err := s.Welcome.SendWelcome(ctx, user.Email, user.FirstName, otp); err != nil {
		slog.Warn("welcome email dispatch failed", "email", user.Email, "error", err)
	}
	return user, nil
}

// Login verifies credentials and persists a new session. The returned token
// goes into the HTTP-only cookie; the response body carries only an
// acknowledgment.
func (s *Service) Login(ctx context.Context, email, password string) (SessionToken, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionToken{}, httpx.BadRequest("User not found")
		}
		return SessionToken{}, fmt.Errorf("lookup user: %w", err)
	}

	cred, err := s.Credentials.GetByUserUUID(ctx, user.UUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionToken{}, httpx.BadRequest("User credentials not found")
		}
		return SessionToken{}, fmt.Errorf("lookup credentials: %w", err)
	}

	if !VerifyPassword(cred.PasswordHash, password) {
		return SessionToken{}, httpx.Unauthorized("Invalid credentials")
	}
	return s.openSession(ctx, user.UUID)
}

// Logout flags the session inactive. No row updated means the token was
// unknown or already revoked; that inconsistency is a server-error class.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	ok, err := s.Sessions.Revoke(ctx, HashToken(rawToken))
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if !ok {
		return httpx.Internal("Failed to log out. No session updated.")
	}
	return nil
}

// VerifyOTP confirms email ownership. The stored code is cleared in the same
// statement that sets the verified flag.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.NotFound("User not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	cred, err := s.Credentials.GetByUserUUID(ctx, user.UUID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup credentials: %w", err)
	}
	if err != nil || cred.OTP == nil || *cred.OTP == "" {
		return httpx.NotFound("Otp not found")
	}
	if *cred.OTP != otp {
		return httpx.UnprocessableEntity("Incorrect Otp")
	}
	if err := s.Credentials.MarkEmailVerified(ctx, user.UUID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// ResetPassword replaces the stored hash after checking the old password.
// Requires a prior authenticated session; userUUID comes from it.
func (s *Service) ResetPassword(ctx context.Context, userUUID, oldPassword, newPassword string) error {
	if oldPassword == newPassword {
		return httpx.BadRequest("New password cannot be the same as the old password.")
	}

	cred, err := s.Credentials.GetByUserUUID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.BadRequest("User credentials not found")
		}
		return fmt.Errorf("lookup credentials: %w", err)
	}
	if !VerifyPassword(cred.PasswordHash, oldPassword) {
		return httpx.BadRequest("The provided old password does not match our records.")
	}

	hash, err := HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Credentials.UpdatePassword(ctx, userUUID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// GoogleProfile is the subset of the userinfo response the login flow needs.
type GoogleProfile struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

// LoginWithGoogle finds or creates a local user for the provider profile and
// opens a session exactly like password login.
func (s *Service) LoginWithGoogle(ctx context.Context, p GoogleProfile) (SessionToken, error) {
	user, err := s.Users.GetByEmail(ctx, p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		var avatar *string
		if p.Picture != "" {
			avatar = &p.Picture
		}
		user, err = s.Users.Create(ctx, p.GivenName, p.FamilyName, p.Email, avatar)
		if err != nil {
			return SessionToken{}, fmt.Errorf("create user: %w", err)
		}
		if err := s.assignDefaultRole(ctx, user.UUID); err != nil {
			return SessionToken{}, err
		}
	} else if err != nil {
		return SessionToken{}, fmt.Errorf("lookup user: %w", err)
	}
	return s.openSession(ctx, user.UUID)
}

func (s *Service) openSession(ctx context.Context, userUUID string) (SessionToken, error) {
	token, err := NewSessionToken(s.SessionTTLMin)
	if err != nil {
		return SessionToken{}, fmt.Errorf("mint session token: %w", err)
	}
	if err := s.Sessions.Create(ctx, userUUID, HashToken(token.Raw), token.Exp); err != nil {
		return SessionToken{}, fmt.Errorf("persist session: %w", err)
	}
	return token, nil
}

func (s *Service) assignDefaultRole(ctx context.Context, userUUID string) error {
	role, err := s.Roles.RoleByName(ctx, defaultRole)
	if err != nil {
		return fmt.Errorf("lookup default role: %w", err)
	}
	if err := s.Roles.Assign(ctx, userUUID, role.UUID); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}
