package auth

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/model"
)

type fakeUserStore struct {
	byEmail map[string]model.User
	created []model.User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) Create(_ context.Context, firstName, lastName, email string, avatarURL *string) (model.User, error) {
	u := model.User{UUID: "u-" + email, FirstName: firstName, LastName: lastName, Email: email, AvatarURL: avatarURL}
	if f.byEmail == nil {
		f.byEmail = map[string]model.User{}
	}
	f.byEmail[email] = u
	f.created = append(f.created, u)
	return u, nil
}

type fakeCredentialStore struct {
	byUser   map[string]model.Credential
	verified []string
	updated  map[string]string
}

func (f *fakeCredentialStore) Create(_ context.Context, userUUID, passwordHash string, otp *string) error {
	if f.byUser == nil {
		f.byUser = map[string]model.Credential{}
	}
	f.byUser[userUUID] = model.Credential{UserUUID: userUUID, PasswordHash: passwordHash, OTP: otp}
	return nil
}

func (f *fakeCredentialStore) GetByUserUUID(_ context.Context, userUUID string) (model.Credential, error) {
	if c, ok := f.byUser[userUUID]; ok {
		return c, nil
	}
	return model.Credential{}, sql.ErrNoRows
}

func (f *fakeCredentialStore) MarkEmailVerified(_ context.Context, userUUID string) error {
	c := f.byUser[userUUID]
	c.IsEmailVerified = true
	c.OTP = nil
	f.byUser[userUUID] = c
	f.verified = append(f.verified, userUUID)
	return nil
}

func (f *fakeCredentialStore) UpdatePassword(_ context.Context, userUUID, passwordHash string) error {
	c := f.byUser[userUUID]
	c.PasswordHash = passwordHash
	f.byUser[userUUID] = c
	if f.updated == nil {
		f.updated = map[string]string{}
	}
	f.updated[userUUID] = passwordHash
	return nil
}

type fakeSessionStore struct {
	created  map[string]string // token hash -> user uuid
	revokeOK bool
	revoked  []string
}

func (f *fakeSessionStore) Create(_ context.Context, userUUID, tokenHash string, _ time.Time) error {
	if f.created == nil {
		f.created = map[string]string{}
	}
	f.created[tokenHash] = userUUID
	return nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, tokenHash string) (bool, error) {
	f.revoked = append(f.revoked, tokenHash)
	return f.revokeOK, nil
}

type fakeRoleStore struct {
	assigned map[string]string // user uuid -> role uuid
}

func (f *fakeRoleStore) RoleByName(_ context.Context, name string) (model.Role, error) {
	return model.Role{UUID: "role-" + name, Name: name}, nil
}

func (f *fakeRoleStore) Assign(_ context.Context, userUUID, roleUUID string) error {
	if f.assigned == nil {
		f.assigned = map[string]string{}
	}
	f.assigned[userUUID] = roleUUID
	return nil
}

type fakeWelcomer struct {
	sent []string // recipient emails
	otps []string
}

func (f *fakeWelcomer) SendWelcome(_ context.Context, to, _, otp string) error {
	f.sent = append(f.sent, to)
	f.otps = append(f.otps, otp)
	return nil
}

func newTestService() (*Service, *fakeUserStore, *fakeCredentialStore, *fakeSessionStore, *fakeRoleStore, *fakeWelcomer) {
	users := &fakeUserStore{byEmail: map[string]model.User{}}
	creds := &fakeCredentialStore{byUser: map[string]model.Credential{}}
	sessions := &fakeSessionStore{revokeOK: true}
	roles := &fakeRoleStore{}
	welcome := &fakeWelcomer{}
	svc := &Service{
		Users:         users,
		Credentials:   creds,
		Sessions:      sessions,
		Roles:         roles,
		Welcome:       welcome,
		BcryptCost:    4,
		SessionTTLMin: 30,
	}
	return svc, users, creds, sessions, roles, welcome
}

func TestRegisterCreatesUserCredentialRoleAndWelcome(t *testing.T) {
	svc, users, creds, _, roles, welcome := newTestService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "jan@example.com", Password: "secret", FirstName: "Jan", LastName: "Kowalski",
	})
	require.NoError(t, err)
	assert.Equal(t, "jan@example.com", user.Email)
	require.Len(t, users.created, 1)

	cred, ok := creds.byUser[user.UUID]
	require.True(t, ok)
	assert.True(t, VerifyPassword(cred.PasswordHash, "secret"))
	require.NotNil(t, cred.OTP)
	assert.Len(t, *cred.OTP, 6)

	assert.Equal(t, "role-user", roles.assigned[user.UUID])
	require.Len(t, welcome.sent, 1)
	assert.Equal(t, "jan@example.com", welcome.sent[0])
	assert.Equal(t, *cred.OTP, welcome.otps[0])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, _, _, _, _ := newTestService()
	users.byEmail["jan@example.com"] = model.User{UUID: "u1", Email: "jan@example.com"}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "jan@example.com", Password: "secret", FirstName: "Jan", LastName: "Kowalski",
	})
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User already exist", apiErr.Message)
}

func TestLoginSuccessOpensSession(t *testing.T) {
	svc, users, creds, sessions, _, _ := newTestService()
	hash, err := HashPassword("secret", 4)
	require.NoError(t, err)
	users.byEmail["jan@example.com"] = model.User{UUID: "u1", Email: "jan@example.com"}
	creds.byUser["u1"] = model.Credential{UserUUID: "u1", PasswordHash: hash}

	token, err := svc.Login(context.Background(), "jan@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Raw)
	assert.True(t, token.Exp.After(time.Now()))
	assert.Equal(t, "u1", sessions.created[HashToken(token.Raw)])
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret")
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User not found", apiErr.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, creds, _, _, _ := newTestService()
	hash, err := HashPassword("secret", 4)
	require.NoError(t, err)
	users.byEmail["jan@example.com"] = model.User{UUID: "u1", Email: "jan@example.com"}
	creds.byUser["u1"] = model.Credential{UserUUID: "u1", PasswordHash: hash}

	_, err = svc.Login(context.Background(), "jan@example.com", "wrong")
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestLogoutUnknownSession(t *testing.T) {
	svc, _, _, sessions, _, _ := newTestService()
	sessions.revokeOK = false

	err := svc.Logout(context.Background(), "deadbeef")
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to log out. No session updated.", apiErr.Message)
}

func TestVerifyOTP(t *testing.T) {
	otp := "123456"
	svc, users, creds, _, _, _ := newTestService()
	users.byEmail["jan@example.com"] = model.User{UUID: "u1", Email: "jan@example.com"}
	creds.byUser["u1"] = model.Credential{UserUUID: "u1", OTP: &otp}

	err := svc.VerifyOTP(context.Background(), "jan@example.com", "654321")
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Incorrect Otp", apiErr.Message)

	require.NoError(t, svc.VerifyOTP(context.Background(), "jan@example.com", "123456"))
	cred := creds.byUser["u1"]
	assert.True(t, cred.IsEmailVerified)
	assert.Nil(t, cred.OTP)

	// the code is single-use
	err = svc.VerifyOTP(context.Background(), "jan@example.com", "123456")
	apiErr, ok = httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Otp not found", apiErr.Message)
}

func TestResetPassword(t *testing.T) {
	svc, _, creds, _, _, _ := newTestService()
	hash, err := HashPassword("old-secret", 4)
	require.NoError(t, err)
	creds.byUser["u1"] = model.Credential{UserUUID: "u1", PasswordHash: hash}

	err = svc.ResetPassword(context.Background(), "u1", "same", "same")
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "New password cannot be the same as the old password.", apiErr.Message)

	err = svc.ResetPassword(context.Background(), "u1", "wrong-old", "new-secret")
	apiErr, ok = httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "The provided old password does not match our records.", apiErr.Message)

	require.NoError(t, svc.ResetPassword(context.Background(), "u1", "old-secret", "new-secret"))
	assert.True(t, VerifyPassword(creds.byUser["u1"].PasswordHash, "new-secret"))
}

func TestLoginWithGoogleProvisionsUser(t *testing.T) {
	svc, users, creds, sessions, roles, _ := newTestService()

	token, err := svc.LoginWithGoogle(context.Background(), GoogleProfile{
		Email: "ola@example.com", GivenName: "Ola", FamilyName: "Nowak", Picture: "https://lh3.example/p.jpg",
	})
	require.NoError(t, err)
	require.Len(t, users.created, 1)
	assert.Equal(t, "Ola", users.created[0].FirstName)
	require.NotNil(t, users.created[0].AvatarURL)
	assert.Equal(t, "role-user", roles.assigned[users.created[0].UUID])
	assert.Equal(t, users.created[0].UUID, sessions.created[HashToken(token.Raw)])
	// Google verifies the email upstream; no local password or otp row
	assert.Empty(t, creds.byUser)

	// second login reuses the existing account
	_, err = svc.LoginWithGoogle(context.Background(), GoogleProfile{Email: "ola@example.com"})
	require.NoError(t, err)
	assert.Len(t, users.created, 1)
}
