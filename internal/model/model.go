// Package model defines domain entities used by services, repositories and views.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// UserMetadata is optional data supplied at sign-up and carried by the identity.
type UserMetadata struct {
	Username string
	FullName string
}

// SessionUser is the identity issued by the auth provider.
type SessionUser struct {
	ID       uuid.UUID
	Email    string
	Metadata UserMetadata
}

// Session is a signed-in session: token pair plus the user it was issued for.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
	User         SessionUser
}

// Identity is the provider-side account row (auth_users). Never leaves the provider.
type Identity struct {
	ID           uuid.UUID
	Email        string // unique, lower-cased
	PasswordHash string // argon2id PHC string
	Metadata     UserMetadata
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// User converts the identity to its public session view.
func (i *Identity) User() SessionUser {
	return SessionUser{ID: i.ID, Email: i.Email, Metadata: i.Metadata}
}

// AuthEvent names an auth-state transition published by the provider.
type AuthEvent string

// Auth events, named after the hosted provider's wire values.
const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// Profile is the application-level user record (user_profiles), 1:1 with SessionUser.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  *string
	Username  *string
	AvatarURL *string
	Bio       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	FullName  *string
	Username  *string
	AvatarURL *string
	Bio       *string
}

// AuthorRef is the author's profile summary embedded in post and comment reads.
type AuthorRef struct {
	ID        uuid.UUID
	Username  *string
	FullName  *string
	AvatarURL *string
}

// Category groups posts; Slug is unique.
type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description *string
	PostCount   int64 // filled only by counting reads
	CreatedAt   time.Time
}

// CategoryRef is the category summary embedded in post reads.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// PostStatus is the publication state of a post.
type PostStatus string

// Post statuses.
const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post is a markdown article.
type Post struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Excerpt     *string
	Content     string
	Status      PostStatus
	CategoryID  *uuid.UUID
	AuthorID    uuid.UUID
	PublishedAt *time.Time
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author   *AuthorRef   // set by reads that embed the author
	Category *CategoryRef // set by reads that embed the category
}

// PostInput carries the editable post fields exactly as written to the backend.
type PostInput struct {
	Title       string
	Slug        string
	Excerpt     *string
	Content     string
	Status      PostStatus
	CategoryID  *uuid.UUID
	PublishedAt *time.Time
}

// CommentApproved is the only comment status shown to readers.
const CommentApproved = "approved"

// Comment is a reader comment on a post.
type Comment struct {
	ID        uuid.UUID
	Content   string
	PostID    uuid.UUID
	AuthorID  uuid.UUID
	Status    string
	CreatedAt time.Time

	Author *AuthorRef
}
