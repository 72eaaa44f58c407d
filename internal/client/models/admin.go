package models

import "time"

// Profile is the editable part of the user profile.
type Profile struct {
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
}

type StatsOverview struct {
	TotalUsers      int `json:"total_users"`
	ActiveUsers7d   int `json:"active_users_7d"`
	ActiveUsers30d  int `json:"active_users_30d"`
	TotalChats      int `json:"total_chats"`
	TotalChatsToday int `json:"total_chats_today"`
	BlockedUsers    int `json:"blocked_users"`
}

type AdminUser struct {
	ID         int64
	Email      string
	Username   string
	IsActive   bool
	IsAdmin    bool
	IsBlocked  bool
	CreatedAt  time.Time
	LastLogin  *time.Time
	LoginCount int
}

type UserList struct {
	Users    []AdminUser
	Total    int
	Page     int
	PageSize int
}

// UserFilter selects a page of the admin user list. Status is one of
// "active", "blocked", "all" or empty.
type UserFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}
