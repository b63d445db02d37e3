package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"digiread/internal/auth"
	"digiread/internal/logging"
	"digiread/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc    *authService
	users  *fakeUsers
	tokens *fakeTokens
	mail   *fakeMail
	signer *auth.Signer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUsers(),
		tokens: newFakeTokens(),
		mail:   &fakeMail{},
		signer: auth.NewSigner(testSecret),
	}
	f.svc = NewAuthService(f.users, f.tokens, f.mail, f.signer, AuthConfig{
		VerificationLink: "http://api.local/auth/verify",
		AuthSuccessURL:   "http://app.local/verify",
		BcryptCost:       bcrypt.MinCost,
	}, logging.Discard()).(*authService)
	return f
}

// linkParams pulls token and userId out of the last emailed link.
func (f *authFixture) linkParams(t *testing.T) (token, userID string) {
	t.Helper()
	u, err := url.Parse(f.mail.last().link)
	require.NoError(t, err)
	return u.Query().Get("token"), u.Query().Get("userId")
}

func TestGenerateLink_CreatesUserAndSendsLink(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.GenerateLink(ctx, "New@X.com"))

	user, err := f.users.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.False(t, user.SignedUp)
	assert.Empty(t, user.Name)

	require.Len(t, f.mail.sent, 1)
	sent := f.mail.last()
	assert.Equal(t, "new@x.com", sent.to)
	assert.Equal(t, "new", sent.name)

	token, userID := f.linkParams(t)
	assert.Equal(t, user.ID.Hex(), userID)
	assert.Len(t, token, 72)

	stored, err := f.tokens.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, token, stored.TokenHash, "secret must not be stored in clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(token)))
}

func TestGenerateLink_ExistingUserUsesName(t *testing.T) {
	f := newAuthFixture(t)
	f.users.put(&models.User{Email: "ann@x.com", Name: "Ann", SignedUp: true})

	require.NoError(t, f.svc.GenerateLink(context.Background(), "ann@x.com"))
	assert.Equal(t, "Ann", f.mail.last().name)
	assert.Len(t, f.users.byID, 1)
}

func TestGenerateLink_TwiceLeavesOneLiveToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		require.NoError(t, f.svc.GenerateLink(ctx, email))
		require.NoError(t, f.svc.GenerateLink(ctx, email))
	}
	assert.Equal(t, 2, f.tokens.count())
	assert.Len(t, f.mail.sent, 4)
}

func TestGenerateLink_MailFailurePropagates(t *testing.T) {
	f := newAuthFixture(t)
	f.mail.err = errors.New("smtp down")
	assert.Error(t, f.svc.GenerateLink(context.Background(), "a@x.com"))
}

func TestVerify_FullScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.GenerateLink(ctx, "new@x.com"))
	token, userID := f.linkParams(t)

	res, err := f.svc.Verify(ctx, token, userID)
	require.NoError(t, err)
	assert.True(t, res.Profile.SignedUp)
	assert.Equal(t, "new@x.com", res.Profile.Email)
	assert.Equal(t, 0, f.tokens.count())

	stored, err := f.users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.SignedUp)

	sub, err := f.signer.Verify(res.Credential)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)

	redirect, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "app.local", redirect.Host)
	assert.Equal(t, res.Credential, redirect.Query().Get("token"))
	var embedded models.Profile
	require.NoError(t, json.Unmarshal([]byte(redirect.Query().Get("profile")), &embedded))
	assert.Equal(t, res.Profile, embedded)

	profile, err := f.svc.Exchange(ctx, res.Credential)
	require.NoError(t, err)
	assert.Equal(t, res.Profile, *profile)
}

func TestVerify_SingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	token, userID := f.linkParams(t)

	_, err := f.svc.Verify(ctx, token, userID)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, token, userID)
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestVerify_SupersededTokenFails(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	first, userID := f.linkParams(t)
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	second, _ := f.linkParams(t)

	_, err := f.svc.Verify(ctx, first, userID)
	assert.ErrorIs(t, err, ErrTokenMismatch)

	_, err = f.svc.Verify(ctx, second, userID)
	assert.NoError(t, err)
}

func TestVerify_Failures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	token, userID := f.linkParams(t)
	flipped := token[:len(token)-1] + "0"
	if token[len(token)-1] == '0' {
		flipped = token[:len(token)-1] + "1"
	}

	tests := []struct {
		name          string
		token, userID string
		want          error
	}{
		{"missing token", "", userID, ErrInvalidRequest},
		{"missing user id", token, "", ErrInvalidRequest},
		{"wrong value", flipped, userID, ErrTokenMismatch},
		{"prefix only", token[:36], userID, ErrTokenMismatch},
		{"unknown user", token, bson.NewObjectID().Hex(), ErrTokenMismatch},
		{"garbage user id", token, "not-an-id", ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Verify(ctx, tt.token, tt.userID)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// none of the failures consumed the live token
	_, err := f.svc.Verify(ctx, token, userID)
	assert.NoError(t, err)
}

func TestVerify_MalformedInputSkipsStore(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for _, userID := range []string{"", "not-an-id", "64b7f0c2a1b2c3d4e5f6071", "zzb7f0c2a1b2c3d4e5f60718"} {
		_, err := f.svc.Verify(ctx, "sometoken", userID)
		assert.ErrorIs(t, err, ErrInvalidRequest, userID)
	}
	assert.Zero(t, f.tokens.lookups)
}

func TestGenerateLink_ConcurrentRequestsKeepOneToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.GenerateLink(ctx, "a@x.com")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.tokens.count())
	assert.Len(t, f.mail.sent, 9)
}

func TestVerify_StaleTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	token, userID := f.linkParams(t)

	f.svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err := f.svc.Verify(ctx, token, userID)
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestVerify_UserVanishedIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.GenerateLink(ctx, "a@x.com"))
	token, userID := f.linkParams(t)

	oid, _ := bson.ObjectIDFromHex(userID)
	delete(f.users.byID, oid)

	_, err := f.svc.Verify(ctx, token, userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrTokenMismatch)
}

func TestExchange_Failures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Exchange(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Exchange(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	ghost, _, err := f.signer.Issue(bson.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = f.svc.Exchange(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExpiredCredential_RejectedByExchangeAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u := f.users.put(&models.User{Email: "a@x.com"})

	expired := jwtExpiredFor(t, u.ID.Hex())

	_, err := f.svc.Exchange(ctx, expired)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	_, err = f.svc.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	book := bson.NewObjectID()
	u := f.users.put(&models.User{Email: "a@x.com", Name: "Ann", SignedUp: true, Books: []bson.ObjectID{book}})

	cred, _, err := f.signer.Issue(u.ID.Hex())
	require.NoError(t, err)
	ac, err := f.svc.Authenticate(ctx, cred)
	require.NoError(t, err)
	assert.Equal(t, "Ann", ac.Name)
	assert.True(t, ac.Owns(book.Hex()))

	ghost, _, err := f.signer.Issue(bson.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func jwtExpiredFor(t *testing.T, userID string) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past.Add(-auth.CredentialTTL)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}
