package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/config"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/session"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

func init() {
	color.NoColor = true
}

// ------------ helpers ------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type memClipboard struct{ text string }

func (m *memClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

type fakeStream struct {
	chunks []string
	err    error
}

func (f *fakeStream) Ask(ctx context.Context, question string, onChunk func(string)) (string, error) {
	for _, c := range f.chunks {
		onChunk(c)
	}
	return strings.Join(f.chunks, ""), f.err
}

type fakeAPI struct {
	mu sync.Mutex

	user    models.User
	token   string
	authErr error

	convs       []models.Conversation
	listErr     error
	exchanges   map[string][]models.Exchange
	deleted     []string
	chatReply   *models.ChatReply
	chatErr     error
	uploaded    []string
	uploadErr   map[string]error
	adminCalls  int
	blocked     map[int64]bool
	lastProfile models.Profile
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &client.AuthResult{AccessToken: f.token, User: f.user}, nil
}

func (f *fakeAPI) Register(ctx context.Context, username, email, password string) (*client.AuthResult, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeAPI) ProfileWithToken(ctx context.Context, token string) (*models.User, error) {
	u := f.user
	return &u, nil
}

func (f *fakeAPI) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Conversation(nil), f.convs...), nil
}

func (f *fakeAPI) GetConversation(ctx context.Context, id string) ([]models.Exchange, error) {
	ex, ok := f.exchanges[id]
	if !ok {
		return nil, &client.APIError{Status: 404, Err: common.ErrNotFound}
	}
	return ex, nil
}

func (f *fakeAPI) RenameConversation(ctx context.Context, id, title string) (*models.Conversation, error) {
	return &models.Conversation{ID: id, Title: title}, nil
}

func (f *fakeAPI) DeleteConversation(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) Chat(ctx context.Context, question, conversationID string) (*models.ChatReply, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chatReply, nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, filename string, content io.Reader) (*models.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[filename]; err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, filename)
	return &models.StoredFile{Filename: filename, ChunksCreated: 3}, nil
}

func (f *fakeAPI) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	return []models.FileRecord{{Filename: "report.pdf", Size: 5 << 20, UploadedAt: time.Now()}}, nil
}

func (f *fakeAPI) GetProfile(ctx context.Context) (*models.User, error) {
	u := f.user
	return &u, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	f.lastProfile = p
	return &p, nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, current, next string) error { return nil }

func (f *fakeAPI) AdminStats(ctx context.Context) (*models.StatsOverview, error) {
	f.adminCalls++
	return &models.StatsOverview{TotalUsers: 12, BlockedUsers: 2}, nil
}

func (f *fakeAPI) AdminUsers(ctx context.Context, filter models.UserFilter) (*models.UserList, error) {
	f.adminCalls++
	return &models.UserList{Users: []models.AdminUser{{ID: 5, Username: "bob"}}, Total: 1, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeAPI) SetUserBlocked(ctx context.Context, userID int64, blocked bool) error {
	f.adminCalls++
	if f.blocked == nil {
		f.blocked = map[int64]bool{}
	}
	f.blocked[userID] = blocked
	return nil
}

func (f *fakeAPI) OAuthLoginURL() string { return "http://localhost:8000/auth/google/login" }

func validToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ann@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type harness struct {
	app    *App
	api    *fakeAPI
	stream *fakeStream
	out    *syncBuffer
	clip   *memClipboard
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RequestTimeout = time.Second
	cfg.UploadTimeout = time.Second
	cfg.ProgressTick = time.Millisecond

	api := &fakeAPI{
		token: validToken(t),
		user:  models.User{ID: 1, Username: "ann", Email: "ann@example.com"},
		convs: []models.Conversation{
			{ID: "c1", Title: "Billing questions", MessageCount: 2},
			{ID: "c2", Title: "Setup"},
		},
		exchanges: map[string][]models.Exchange{
			"c1": {{ID: 1, Question: "How much?", Answer: "About `42` euros.\n\n```sh\ncurl /price\n```", Timestamp: time.Now()}},
		},
	}
	stream := &fakeStream{}
	out := &syncBuffer{}
	clip := &memClipboard{}

	a := newApp(cfg, db, logging.Discard(), strings.NewReader(input), out)
	a.clipboard = clip
	a.wire(api, stream)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		a.pipeline.Wait()
		cancel()
		a.bus.Close()
	})
	a.startWatchers(ctx)

	return &harness{app: a, api: api, stream: stream, out: out, clip: clip}
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		pw := pws[i%len(pws)]
		i++
		return []byte(pw), nil
	}
}

func stubConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	old := confirmFn
	t.Cleanup(func() { confirmFn = old })
	calls := 0
	confirmFn = func(string) (bool, error) {
		calls++
		return answer, nil
	}
	return &calls
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	_, err := h.app.sessions.SignIn(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	h.app.Navigate(session.ViewChat)
}

// ------------ tests ------------

func TestExecute_SignedOut(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	assert.False(t, h.app.Execute(ctx, "hello there"))
	assert.Contains(t, h.out.String(), "Unknown command: hello")

	h.app.Execute(ctx, "list")
	assert.Contains(t, h.out.String(), "Not signed in")

	h.app.Execute(ctx, "help")
	assert.Contains(t, h.out.String(), "login")
	assert.NotContains(t, h.out.String(), "rename <n|id> <title>")

	assert.True(t, h.app.Execute(ctx, "exit"))
	assert.Contains(t, h.out.String(), "Bye!")
}

func TestLogin_EntersChatAndListsConversations(t *testing.T) {
	stubPasswords(t, "secret-pass")
	h := newHarness(t, "ann@example.com\n")

	h.app.Execute(context.Background(), "login")

	out := h.out.String()
	assert.Contains(t, out, "Signed in as ann")
	assert.Contains(t, out, "Billing questions")
	assert.Equal(t, session.ViewChat, h.app.currentView())
	assert.Equal(t, "docchat (ann · chat)> ", h.app.prompt())
}

func TestLogin_RejectedShowsDetail(t *testing.T) {
	stubPasswords(t, "wrong")
	h := newHarness(t, "ann@example.com\n")
	h.api.authErr = &client.APIError{Status: 401, Detail: "Incorrect email or password", Err: common.ErrUnauthenticated}

	h.app.Execute(context.Background(), "login")

	assert.Contains(t, h.out.String(), "Incorrect email or password")
	assert.NotContains(t, h.out.String(), "session has ended")
	assert.Empty(t, h.app.Token())
}

func TestRegister_PasswordMismatchMakesNoCall(t *testing.T) {
	stubPasswords(t, "longpassword", "otherpassword")
	h := newHarness(t, "ann\nann@example.com\n")
	h.api.authErr = &client.APIError{Status: 500, Err: common.ErrTransport}

	h.app.Execute(context.Background(), "register")

	assert.Contains(t, h.out.String(), "passwords do not match")
	assert.Empty(t, h.app.Token())
}

func TestOAuth(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	h.app.Execute(ctx, "oauth")
	assert.Contains(t, h.out.String(), "http://localhost:8000/auth/google/login")

	h.app.Execute(ctx, "oauth "+h.api.token)
	assert.Contains(t, h.out.String(), "Signed in as ann")
	assert.Equal(t, h.api.token, h.app.Token())
}

func TestChat_PlainTextIsSentAndCodeCanBeCopied(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.api.chatReply = &models.ChatReply{Answer: "Use this:\n\n```go\nfmt.Println(1)\n```\n", ConversationID: "c9"}
	ctx := context.Background()

	h.app.Execute(ctx, "what is in the report?")

	out := h.out.String()
	assert.Contains(t, out, "Use this:")
	assert.Contains(t, out, "[copy 1]")
	assert.Contains(t, out, "New conversation started")
	assert.Equal(t, "c9", h.app.store.Active())

	h.app.Execute(ctx, "copy 1")
	assert.Equal(t, "fmt.Println(1)", h.clip.text)
	assert.Contains(t, h.out.String(), "Copied!")

	h.app.Execute(ctx, "copy 7")
	assert.Contains(t, h.out.String(), "no code block 7")
}

func TestChat_FailureShowsErrorReply(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.api.chatErr = &client.APIError{Status: 500, Detail: "model unavailable", Err: common.ErrTransport}

	h.app.Execute(context.Background(), "send hello")

	out := h.out.String()
	assert.Contains(t, out, common.ChatErrorReply)
	assert.Contains(t, out, "model unavailable")
	assert.Empty(t, h.app.store.Active())
}

func TestOpen_ShowsHistoryAndHandlesMissing(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	ctx := context.Background()

	h.app.Execute(ctx, "list")
	h.app.Execute(ctx, "open 1")
	out := h.out.String()
	assert.Contains(t, out, "How much?")
	assert.Contains(t, out, "curl /price")
	assert.Equal(t, "c1", h.app.store.Active())

	h.app.Execute(ctx, "open 2")
	assert.Contains(t, h.out.String(), "Conversation Setup no longer exists")
	assert.Empty(t, h.app.store.Active())
}

func TestRenameAndDelete(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	ctx := context.Background()
	h.app.Execute(ctx, "list")

	h.app.Execute(ctx, "rename 2 Install   guide")
	assert.Contains(t, h.out.String(), `Renamed to "Install   guide"`)

	calls := stubConfirm(t, false)
	h.app.Execute(ctx, "delete 1")
	assert.Equal(t, 1, *calls)
	assert.Empty(t, h.api.deleted)

	stubConfirm(t, true)
	h.app.Execute(ctx, "delete 1")
	assert.Equal(t, []string{"c1"}, h.api.deleted)
	assert.Contains(t, h.out.String(), "Conversation deleted")

	h.app.Execute(ctx, "rename 1")
	assert.Contains(t, h.out.String(), "Usage: rename <n|id> <title>")
}

func TestUnauthenticated_TearsDownSession(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.api.listErr = &client.APIError{Status: 401, Err: common.ErrUnauthenticated}

	h.app.Execute(context.Background(), "list")

	assert.Contains(t, h.out.String(), "Your session has ended")
	assert.Empty(t, h.app.Token())
	assert.Equal(t, session.ViewSignIn, h.app.currentView())
}

func TestUpload_RejectsAndReportsSuccess(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	dir := t.TempDir()
	pdf := filepath.Join(dir, "report.pdf")
	exe := filepath.Join(dir, "notes.exe")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o600))
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o600))

	h.app.Execute(context.Background(), "upload "+pdf+" "+exe+" "+filepath.Join(dir, "missing.md"))
	h.app.pipeline.Wait()

	require.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), "Successfully uploaded report.pdf!")
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return h.app.currentView() == session.ViewChat
	}, time.Second, 5*time.Millisecond)

	out := h.out.String()
	assert.Contains(t, out, "notes.exe - Invalid type")
	assert.Contains(t, out, "missing.md")
	assert.Equal(t, []string{"report.pdf"}, h.api.uploaded)

	h.app.Execute(context.Background(), "tasks")
	assert.Contains(t, h.out.String(), "100%")
}

func TestRemoveTask(t *testing.T) {
	h := newHarness(t, "")
	h.app.Execute(context.Background(), "remove 1")
	assert.Contains(t, h.out.String(), "Usage: remove <n>")
}

func TestFiles(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.app.Execute(context.Background(), "files")
	assert.Contains(t, h.out.String(), "report.pdf")
	assert.Contains(t, h.out.String(), "5 MB")
}

func TestAdmin_NonAdminIsForbidden(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	h.app.Execute(context.Background(), "admin stats")

	assert.Contains(t, h.out.String(), "Admin access required")
	assert.Zero(t, h.api.adminCalls)
	assert.Equal(t, session.ViewChat, h.app.currentView())
}

func TestAdmin_AsAdmin(t *testing.T) {
	h := newHarness(t, "")
	h.api.user.IsAdmin = true
	h.signIn(t)
	ctx := context.Background()

	h.app.Execute(ctx, "admin stats")
	assert.Contains(t, h.out.String(), "Total users")
	assert.Equal(t, session.ViewAdmin, h.app.currentView())

	h.app.Execute(ctx, "admin users -page 2 -search bo")
	assert.Contains(t, h.out.String(), "bob")

	stubConfirm(t, true)
	h.app.Execute(ctx, "admin block 5")
	assert.True(t, h.api.blocked[5])
	h.app.Execute(ctx, "admin unblock 5")
	assert.False(t, h.api.blocked[5])

	h.app.Execute(ctx, "admin users -bogus")
	assert.Contains(t, h.out.String(), "Usage: admin")
}

func TestProfileEdit(t *testing.T) {
	h := newHarness(t, "Ann Lee\n\n")
	h.api.user.Bio = "old bio"
	h.signIn(t)

	h.app.Execute(context.Background(), "profile edit")

	assert.Equal(t, models.Profile{FullName: "Ann Lee", Bio: "old bio"}, h.api.lastProfile)
	assert.Contains(t, h.out.String(), "Profile updated successfully!")
	assert.Equal(t, "Ann Lee", h.app.sessions.Current().User.FullName)
}

func TestChangePassword(t *testing.T) {
	stubPasswords(t, "current", "new-password", "new-password")
	h := newHarness(t, "")
	h.signIn(t)

	h.app.Execute(context.Background(), "password")
	assert.Contains(t, h.out.String(), "Password changed successfully!")
}

func TestAsk_Streams(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.stream.chunks = []string{"Hel", "lo"}

	h.app.Execute(context.Background(), "ask say hi")
	assert.Contains(t, h.out.String(), "Hello\n")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.app.Execute(context.Background(), "logout")

	assert.Empty(t, h.app.Token())
	assert.Contains(t, h.out.String(), "Signed out")
	assert.Equal(t, "docchat (signed out)> ", h.app.prompt())
}
