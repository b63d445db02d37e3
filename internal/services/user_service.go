package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"digiread/internal/logging"
	"digiread/internal/models"
	"digiread/internal/repositories"
	"digiread/internal/storage"
)

// Upload is a file received in a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Ext is the lowercased extension without the dot.
func (u *Upload) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Filename)), ".")
}

var avatarExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

type UserService interface {
	UpdateProfile(ctx context.Context, userID, name string, avatar *Upload) (*models.Profile, error)
}

type userService struct {
	users   repositories.UserRepository
	authors repositories.AuthorRepository
	store   storage.ObjectStore
	log     logging.Logger
}

func NewUserService(users repositories.UserRepository, authors repositories.AuthorRepository, store storage.ObjectStore, log logging.Logger) UserService {
	return &userService{users: users, authors: authors, store: store, log: log.With("component", "user")}
}

func (s *userService) UpdateProfile(ctx context.Context, userID, name string, avatar *Upload) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return nil, fmt.Errorf("%w: name must be 3 characters long", ErrInvalidInput)
	}

	var ext, contentType string
	if avatar != nil {
		if ext = avatar.Ext(); ext == "" {
			ext = "png"
		}
		ct, ok := avatarExtensions[ext]
		if !ok {
			return nil, fmt.Errorf("%w: only PNG, JPG and WEBP avatars are allowed", ErrInvalidInput)
		}
		contentType = ct
	}

	user, err := s.users.UpdateName(ctx, userID, name)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("update profile %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	if user.AuthorID != nil {
		if err := s.authors.UpdateName(ctx, user.AuthorID.Hex(), name); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	if avatar != nil {
		key := fmt.Sprintf("%s-%s.%s", userID, slug.Make(name), ext)
		if user.Avatar != nil && user.Avatar.ID != "" && user.Avatar.ID != key {
			if err := s.store.Delete(ctx, storage.Public, user.Avatar.ID); err != nil {
				s.log.Warn(ctx, "old avatar not removed", "user_id", userID, "key", user.Avatar.ID, "err", err)
			}
		}
		if err := s.store.Put(ctx, storage.Public, key, contentType, avatar.Data); err != nil {
			return nil, err
		}
		user.Avatar = &models.File{ID: key, URL: s.store.PublicURL(key)}
		if err := s.users.SetAvatar(ctx, userID, user.Avatar); err != nil {
			return nil, err
		}
	}

	profile := user.Profile()
	return &profile, nil
}
