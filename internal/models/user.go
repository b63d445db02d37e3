package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleUser   = "user"
	RoleAuthor = "author"
)

// File points at an object in storage.
type File struct {
	ID  string `bson:"id" json:"id"`
	URL string `bson:"url,omitempty" json:"url,omitempty"`
}

type User struct {
	ID        bson.ObjectID   `bson:"_id,omitempty"`
	Email     string          `bson:"email"`
	Name      string          `bson:"name,omitempty"`
	Role      string          `bson:"role"`
	SignedUp  bool            `bson:"signedUp"`
	Avatar    *File           `bson:"avatar,omitempty"`
	AuthorID  *bson.ObjectID  `bson:"authorId,omitempty"`
	Books     []bson.ObjectID `bson:"books"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

// Profile is the public projection of a User. Nothing else leaves the API.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	SignedUp bool   `json:"signedUp"`
	AuthorID string `json:"authorId,omitempty"`
}

// AuthContext is the request-scoped identity produced by the session middleware.
type AuthContext struct {
	Profile
	Books []string `json:"books"`
}

// Owns reports whether bookID is in the caller's library.
func (a *AuthContext) Owns(bookID string) bool {
	for _, id := range a.Books {
		if id == bookID {
			return true
		}
	}
	return false
}

func (u *User) Profile() Profile {
	p := Profile{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		SignedUp: u.SignedUp,
	}
	if u.Avatar != nil {
		p.Avatar = u.Avatar.URL
	}
	if u.AuthorID != nil {
		p.AuthorID = u.AuthorID.Hex()
	}
	return p
}

func (u *User) AuthContext() *AuthContext {
	books := make([]string, 0, len(u.Books))
	for _, b := range u.Books {
		books = append(books, b.Hex())
	}
	return &AuthContext{Profile: u.Profile(), Books: books}
}

// DisplayName falls back to the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
