package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
	"github.com/arturoeanton/go-inbox-classifier-ollama/pkg/config"
)

// fakeAuthProvider answers the OAuth flow with canned values.
type fakeAuthProvider struct {
	tokens  *domain.TokenPair
	profile *domain.User
}

func (f *fakeAuthProvider) ProviderName() string { return "google" }

func (f *fakeAuthProvider) AuthURL(state string) string {
	return "https://example.com/auth?state=" + state
}

func (f *fakeAuthProvider) ExchangeCode(context.Context, string) (*domain.TokenPair, error) {
	return f.tokens, nil
}

func (f *fakeAuthProvider) GetUserProfile(context.Context, string) (*domain.User, error) {
	return f.profile, nil
}

// fakeUserStore holds users keyed by email.
type fakeUserStore struct {
	byEmail map[string]*domain.User
	created *domain.User
	blob    string
	nextID  int64
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, port.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, port.ErrUserNotFound
}

func (f *fakeUserStore) CreateUserWithCredential(_ context.Context, u *domain.User, _, blob string) (*domain.User, error) {
	f.nextID++
	created := *u
	created.ID = f.nextID
	f.byEmail[u.Email] = &created
	f.created = &created
	f.blob = blob
	return &created, nil
}

func newAuthFixture(provider *fakeAuthProvider, users *fakeUserStore, credStore *fakeCredStore) *AuthService {
	creds := NewCredentialService(credStore, plainCodec{})
	cfg := &config.Config{
		JWTSecret:     "secret",
		JWTIssuer:     "inbox-classifier",
		JWTExpiration: 1,
	}
	return NewAuthService(provider, users, creds, cfg)
}

func TestHandleCallbackFirstLogin(t *testing.T) {
	provider := &fakeAuthProvider{
		tokens:  &domain.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		profile: &domain.User{Email: "new@example.com", FullName: "New User"},
	}
	users := &fakeUserStore{byEmail: map[string]*domain.User{}}
	credStore := &fakeCredStore{blobs: map[int64]string{}}

	svc := newAuthFixture(provider, users, credStore)

	jwt, user, err := svc.HandleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.NotEmpty(t, jwt)
	assert.Equal(t, int64(1), user.ID)
	require.NotNil(t, users.created)
	// plainCodec stores the token verbatim
	assert.Equal(t, "rt", users.blob)
}

func TestHandleCallbackFirstLoginWithoutRefreshToken(t *testing.T) {
	provider := &fakeAuthProvider{
		tokens:  &domain.TokenPair{AccessToken: "at"},
		profile: &domain.User{Email: "new@example.com"},
	}
	users := &fakeUserStore{byEmail: map[string]*domain.User{}}

	svc := newAuthFixture(provider, users, &fakeCredStore{blobs: map[int64]string{}})

	_, _, err := svc.HandleCallback(context.Background(), "code")
	assert.ErrorIs(t, err, port.ErrConsentRequired)
	assert.Nil(t, users.created)
}

func TestHandleCallbackReturningUserKeepsCredential(t *testing.T) {
	provider := &fakeAuthProvider{
		tokens:  &domain.TokenPair{AccessToken: "at"}, // no refresh token on re-login
		profile: &domain.User{Email: "old@example.com"},
	}
	users := &fakeUserStore{byEmail: map[string]*domain.User{
		"old@example.com": {ID: 5, Email: "old@example.com"},
	}}
	credStore := &fakeCredStore{blobs: map[int64]string{5: "stored"}}

	svc := newAuthFixture(provider, users, credStore)

	jwt, user, err := svc.HandleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.NotEmpty(t, jwt)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, "stored", credStore.blobs[5])
}

func TestHandleCallbackReturningUserRotatesCredential(t *testing.T) {
	provider := &fakeAuthProvider{
		tokens:  &domain.TokenPair{AccessToken: "at", RefreshToken: "fresh"},
		profile: &domain.User{Email: "old@example.com"},
	}
	users := &fakeUserStore{byEmail: map[string]*domain.User{
		"old@example.com": {ID: 5, Email: "old@example.com"},
	}}
	credStore := &fakeCredStore{blobs: map[int64]string{5: "stale"}}

	svc := newAuthFixture(provider, users, credStore)

	_, _, err := svc.HandleCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, "fresh", credStore.blobs[5])
}

func TestGetAuthURLPassesState(t *testing.T) {
	svc := newAuthFixture(&fakeAuthProvider{}, &fakeUserStore{byEmail: map[string]*domain.User{}}, &fakeCredStore{blobs: map[int64]string{}})

	assert.Equal(t, "https://example.com/auth?state=xyz", svc.GetAuthURL("xyz"))
}
