package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type invocation struct {
	Args []string
	// Rest is the raw text after the command word.
	Rest string
}

type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	auth    bool
	quit    bool
	run     func(ctx context.Context, inv invocation) error
}

func (a *App) commandTable() []command {
	return []command{
		{name: "help", usage: "help", help: "show available commands", run: a.help},
		{name: "register", usage: "register", help: "create an account", run: a.register},
		{name: "login", usage: "login", help: "sign in with email and password", run: a.login},
		{name: "oauth", usage: "oauth [token]", help: "sign in with Google", run: a.oauth},
		{name: "logout", usage: "logout", help: "sign out and forget local data", auth: true, run: a.logout},
		{name: "whoami", usage: "whoami", help: "show the signed-in user", auth: true, run: a.whoami},

		{name: "list", aliases: []string{"ls"}, usage: "list", help: "list conversations", auth: true, run: a.list},
		{name: "open", usage: "open <n|id>", help: "open a conversation", auth: true, run: a.open},
		{name: "new", usage: "new", help: "start a new conversation", auth: true, run: a.newConversation},
		{name: "send", usage: "send <text>", help: "send a message", auth: true, run: a.sendCommand},
		{name: "history", usage: "history", help: "show the active conversation again", auth: true, run: a.history},
		{name: "rename", usage: "rename <n|id> <title>", help: "rename a conversation", auth: true, run: a.rename},
		{name: "delete", aliases: []string{"rm"}, usage: "delete <n|id>", help: "delete a conversation", auth: true, run: a.deleteConversation},
		{name: "copy", usage: "copy <n>", help: "copy code block n to the clipboard", run: a.copyCode},
		{name: "ask", usage: "ask <question>", help: "stream a one-off answer", auth: true, run: a.ask},

		{name: "upload", usage: "upload <file>...", help: "upload documents (pdf, txt, md, docx up to 10MB)", auth: true, run: a.upload},
		{name: "tasks", usage: "tasks", help: "show upload progress", run: a.tasks},
		{name: "remove", usage: "remove <n>", help: "drop upload task n", run: a.removeTask},
		{name: "files", usage: "files", help: "list stored documents", auth: true, run: a.files},

		{name: "profile", usage: "profile [edit]", help: "show or edit your profile", auth: true, run: a.showProfile},
		{name: "password", usage: "password", help: "change your password", auth: true, run: a.changePassword},
		{name: "admin", usage: adminUsage, help: "admin dashboard", auth: true, run: a.adminCommand},

		{name: "exit", aliases: []string{"quit"}, usage: "exit", help: "leave the shell", quit: true},
	}
}

func (a *App) lookup(name string) (command, bool) {
	for _, c := range a.commands {
		if c.name == name {
			return c, true
		}
		for _, alias := range c.aliases {
			if alias == name {
				return c, true
			}
		}
	}
	return command{}, false
}

func (a *App) help(ctx context.Context, _ invocation) error {
	signedIn := a.sessions.Token() != ""

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range a.commands {
		if c.auth && !signedIn {
			continue
		}
		fmt.Fprintf(&b, "  %-24s %s\n", c.usage, c.help)
	}
	if signedIn {
		b.WriteString("In the chat view, any other text is sent as a message.")
	}
	a.printer.Println(strings.TrimRight(b.String(), "\n"))
	return nil
}

// index parses a 1-based position.
func index(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}
