package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
)

const (
	progressWidth = 20
	previewLength = 40
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func empty(msg string) string {
	return Styles.Muted.Render(msg)
}

// Conversations lists conversations with a 1-based index, active one marked.
func Conversations(convs []models.Conversation, activeID string, stale bool) string {
	if len(convs) == 0 {
		return empty("No conversations yet")
	}
	t := newTable("#", "", "Title", "Messages", "Updated", "Last message")
	for i, c := range convs {
		mark := ""
		if c.ID == activeID {
			mark = "▶"
		}
		last := ""
		if c.LastMessage != nil {
			last = truncate(*c.LastMessage, previewLength)
		}
		t.Row(strconv.Itoa(i+1), mark, c.Title, strconv.Itoa(c.MessageCount), c.UpdatedAt.Local().Format("2006-01-02 15:04"), last)
	}
	return withStale(t.String(), stale)
}

// Files lists stored documents.
func Files(files []models.FileRecord, stale bool) string {
	if len(files) == 0 {
		return empty("No documents uploaded yet")
	}
	t := newTable("File", "Size", "Uploaded")
	for _, f := range files {
		t.Row(f.Filename, common.FormatFileSize(f.Size), f.UploadedAt.Local().Format("2006-01-02 15:04"))
	}
	return withStale(t.String(), stale)
}

// Tasks lists upload tasks with their progress.
func Tasks(tasks []models.UploadTask) string {
	if len(tasks) == 0 {
		return empty("No uploads")
	}
	t := newTable("#", "File", "Size", "Progress", "Status")
	for i, task := range tasks {
		status := string(task.Status)
		switch task.Status {
		case models.UploadSuccess:
			status = successColor.Sprint(status)
		case models.UploadError:
			status = errorColor.Sprint(status)
			if task.Err != "" {
				status += " " + task.Err
			}
		}
		t.Row(strconv.Itoa(i+1), task.Filename, common.FormatFileSize(task.Size), ProgressBar(task.Progress), status)
	}
	return t.String()
}

// ProgressBar draws pct (0..100) as a fixed-width bar.
func ProgressBar(pct int) string {
	pct = max(0, min(pct, 100))
	filled := pct * progressWidth / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled) + "] " + fmt.Sprintf("%3d%%", pct)
}

// Users lists one page of the admin user list.
func Users(list *models.UserList) string {
	if list == nil || len(list.Users) == 0 {
		return empty("No users found")
	}
	t := newTable("ID", "Username", "Email", "Status", "Admin", "Logins", "Last login")
	for _, u := range list.Users {
		status := successColor.Sprint("active")
		if u.IsBlocked {
			status = errorColor.Sprint("blocked")
		}
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		last := "never"
		if u.LastLogin != nil {
			last = u.LastLogin.Local().Format("2006-01-02 15:04")
		}
		t.Row(strconv.FormatInt(u.ID, 10), u.Username, u.Email, status, admin, strconv.Itoa(u.LoginCount), last)
	}
	pages := 1
	if list.PageSize > 0 {
		pages = max(1, (list.Total+list.PageSize-1)/list.PageSize)
	}
	footer := Styles.Muted.Render(fmt.Sprintf("page %d of %d · %d users", list.Page, pages, list.Total))
	return t.String() + "\n" + footer
}

// Stats renders the admin overview.
func Stats(s *models.StatsOverview) string {
	t := newTable("Metric", "Value")
	t.Row("Total users", strconv.Itoa(s.TotalUsers))
	t.Row("Active users (7d)", strconv.Itoa(s.ActiveUsers7d))
	t.Row("Active users (30d)", strconv.Itoa(s.ActiveUsers30d))
	t.Row("Total chats", strconv.Itoa(s.TotalChats))
	t.Row("Chats today", strconv.Itoa(s.TotalChatsToday))
	t.Row("Blocked users", strconv.Itoa(s.BlockedUsers))
	return t.String()
}

// Profile renders the signed-in user.
func Profile(u *models.User) string {
	lines := []string{
		Styles.Bold.Render(u.Username) + Styles.Muted.Render(" <"+u.Email+">"),
	}
	if u.FullName != "" {
		lines = append(lines, "Name: "+u.FullName)
	}
	if u.Bio != "" {
		lines = append(lines, "Bio:  "+u.Bio)
	}
	if u.IsAdmin {
		lines = append(lines, Styles.Copied.Render("administrator"))
	}
	return strings.Join(lines, "\n")
}

func withStale(s string, stale bool) string {
	if !stale {
		return s
	}
	return s + "\n" + warningColor.Sprint("offline: showing the last cached copy")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
