package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"digiread/internal/auth"
	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/repositories"
	"digiread/internal/utils"
)

type AuthConfig struct {
	// VerificationLink is the API endpoint the emailed link points at.
	VerificationLink string
	// AuthSuccessURL is the frontend page that captures the credential.
	AuthSuccessURL string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// VerifyResult is what a successful magic-link verification hands back.
type VerifyResult struct {
	Credential  string
	Profile     models.Profile
	RedirectURL string
}

type AuthService interface {
	GenerateLink(ctx context.Context, email string) error
	Verify(ctx context.Context, token, userID string) (*VerifyResult, error)
	Exchange(ctx context.Context, credential string) (*models.Profile, error)
	// Authenticate resolves a session credential into the caller's identity.
	Authenticate(ctx context.Context, credential string) (*models.AuthContext, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens repositories.VerificationTokenRepository
	mail   MailSender
	signer *auth.Signer
	cfg    AuthConfig
	log    logging.Logger
	now    func() time.Time
}

func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.VerificationTokenRepository,
	mail MailSender,
	signer *auth.Signer,
	cfg AuthConfig,
	log logging.Logger,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		tokens: tokens,
		mail:   mail,
		signer: signer,
		cfg:    cfg,
		log:    log.With("component", "auth"),
		now:    time.Now,
	}
}

func (s *authService) GenerateLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrInvalidRequest
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return err
	}
	userID := user.ID.Hex()

	token, err := utils.NewRandomToken(utils.MinTokenBytes)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	// supersedes any outstanding link
	if err := s.tokens.Replace(ctx, &models.VerificationToken{
		UserID:    userID,
		TokenHash: string(hash),
		Expires:   s.now().UTC(),
	}); err != nil {
		return err
	}

	link, err := withQuery(s.cfg.VerificationLink, url.Values{"token": {token}, "userId": {userID}})
	if err != nil {
		return err
	}
	if err := s.mail.SendVerificationLink(ctx, user.Email, link, user.DisplayName()); err != nil {
		return err
	}

	s.log.Info(ctx, "verification link issued", "op", "generate-link", "user_id", userID)
	return nil
}

func (s *authService) findOrCreateUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user = &models.User{Email: email, Role: models.RoleUser}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		// lost a race with a concurrent request for the same email
		return s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Verify(ctx context.Context, token, userID string) (*VerifyResult, error) {
	token, userID = strings.TrimSpace(token), strings.TrimSpace(userID)
	if token == "" || userID == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := bson.ObjectIDFromHex(userID); err != nil {
		return nil, ErrInvalidRequest
	}

	vt, err := s.tokens.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTokenMismatch
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(vt.TokenHash), []byte(token)) != nil || vt.Stale(s.now()) {
		s.log.Warn(ctx, "verification token mismatch", "op", "verify", "user_id", userID)
		return nil, ErrTokenMismatch
	}

	// consuming the token is what makes it single-use
	deleted, err := s.tokens.DeleteByID(ctx, vt.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrTokenMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("verify %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.users.MarkSignedUp(ctx, userID); err != nil {
		return nil, err
	}
	user.SignedUp = true

	credential, _, err := s.signer.Issue(userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	redirect, err := s.redirectURL(credential, profile)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "magic link verified", "op", "verify", "user_id", userID)
	return &VerifyResult{Credential: credential, Profile: profile, RedirectURL: redirect}, nil
}

func (s *authService) redirectURL(credential string, profile models.Profile) (string, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return withQuery(s.cfg.AuthSuccessURL, url.Values{"token": {credential}, "profile": {string(raw)}})
}

func (s *authService) Exchange(ctx context.Context, credential string) (*models.Profile, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrInvalidRequest
	}
	userID, err := s.signer.Verify(credential)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *authService) Authenticate(ctx context.Context, credential string) (*models.AuthContext, error) {
	userID, err := s.signer.Verify(credential)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user.AuthContext(), nil
}

// withQuery merges q into the query string of base.
func withQuery(base string, q url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
