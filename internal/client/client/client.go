package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// TokenSource yields the current bearer credential. The session manager is
// the production implementation.
type TokenSource interface {
	Token() string
}

// AuthResult is what sign-in and registration return.
type AuthResult struct {
	AccessToken string
	User        models.User
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	// ProfileWithToken fetches the profile using an explicit credential; it
	// serves the OAuth callback, before the credential is persisted.
	ProfileWithToken(ctx context.Context, token string) (*models.User, error)
}

type ConversationAPI interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) ([]models.Exchange, error)
	RenameConversation(ctx context.Context, id, title string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

type ChatAPI interface {
	// Chat sends one question. An empty conversationID asks the server to
	// mint a new conversation.
	Chat(ctx context.Context, question, conversationID string) (*models.ChatReply, error)
}

type FileAPI interface {
	UploadFile(ctx context.Context, filename string, content io.Reader) (*models.StoredFile, error)
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
}

type ProfileAPI interface {
	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type AdminAPI interface {
	AdminStats(ctx context.Context) (*models.StatsOverview, error)
	AdminUsers(ctx context.Context, f models.UserFilter) (*models.UserList, error)
	SetUserBlocked(ctx context.Context, userID int64, blocked bool) error
}

// ContentAPI is the whole backend surface consumed by the client.
type ContentAPI interface {
	AuthAPI
	ConversationAPI
	ChatAPI
	FileAPI
	ProfileAPI
	AdminAPI
}
