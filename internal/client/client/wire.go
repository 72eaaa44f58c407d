package client

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/timex"
)

// Server payloads carry naive ISO timestamps and epoch floats, so they are
// decoded into these shapes and converted into models.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

type conversationDTO struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	MessageCount int     `json:"message_count"`
	LastMessage  *string `json:"last_message"`
}

func (d conversationDTO) toModel() models.Conversation {
	// unparseable timestamps are kept as the zero time
	created, _ := timex.ParseISO(d.CreatedAt)
	updated, _ := timex.ParseISO(d.UpdatedAt)
	return models.Conversation{
		ID:           d.ID,
		Title:        d.Title,
		CreatedAt:    created,
		UpdatedAt:    updated,
		MessageCount: d.MessageCount,
		LastMessage:  d.LastMessage,
	}
}

type exchangeDTO struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type conversationDetailDTO struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []exchangeDTO `json:"messages"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type chatRequest struct {
	Question       string  `json:"question"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	ID             int64  `json:"id"`
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
	Error          string `json:"error"`
}

type fileDTO struct {
	Filename   string  `json:"filename"`
	Size       int64   `json:"size"`
	UploadedAt float64 `json:"uploaded_at"`
}

type filesResponse struct {
	Files []fileDTO `json:"files"`
}

type profileUpdateResponse struct {
	Message string         `json:"message"`
	Profile models.Profile `json:"profile"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type adminUserDTO struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	IsActive   bool    `json:"is_active"`
	IsAdmin    bool    `json:"is_admin"`
	IsBlocked  bool    `json:"is_blocked"`
	CreatedAt  string  `json:"created_at"`
	LastLogin  *string `json:"last_login"`
	LoginCount int     `json:"login_count"`
}

func (d adminUserDTO) toModel() models.AdminUser {
	created, _ := timex.ParseISO(d.CreatedAt)
	u := models.AdminUser{
		ID:         d.ID,
		Email:      d.Email,
		Username:   d.Username,
		IsActive:   d.IsActive,
		IsAdmin:    d.IsAdmin,
		IsBlocked:  d.IsBlocked,
		CreatedAt:  created,
		LoginCount: d.LoginCount,
	}
	if d.LastLogin != nil {
		if ts, err := timex.ParseISO(*d.LastLogin); err == nil && !ts.IsZero() {
			u.LastLogin = &ts
		}
	}
	return u
}

type userListDTO struct {
	Users    []adminUserDTO `json:"users"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type blockRequest struct {
	Reason *string `json:"reason"`
}

// parseDetail extracts the human readable "detail" of an error body. It is
// either a string or, for request validation failures, a list of objects
// with a "msg" field.
func parseDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if len(body) == 0 || sonic.Unmarshal(body, &payload) != nil {
		return ""
	}
	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
