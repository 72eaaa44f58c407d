package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	hclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/netx"
	"github.com/dmitrijs2005/docchat/internal/timex"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultMaxIdleDuration = 60 * time.Second

	chatErrConversationNotFound = "Conversation not found"
)

// HTTPClient talks to the Content API over JSON/HTTP using the hertz client.
type HTTPClient struct {
	client *hclient.Client
	server string
	tokens TokenSource
}

var _ ContentAPI = (*HTTPClient)(nil)

// NewHTTPClient creates a Content API client for server. A nil tokens means
// every call is anonymous.
func NewHTTPClient(server string, tokens TokenSource) (*HTTPClient, error) {
	normalized, err := netx.NormalizeBaseURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := hclient.NewClient(
		hclient.WithDialTimeout(defaultDialTimeout),
		hclient.WithMaxIdleConnDuration(defaultMaxIdleDuration),
		hclient.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPClient{client: c, server: normalized, tokens: tokens}, nil
}

// OAuthLoginURL is the page that starts the browser sign-in flow. The
// browser ends on a callback carrying the credential, which is then handed
// to the session.
func (c *HTTPClient) OAuthLoginURL() string {
	return c.server + endpointGoogleLogin
}

// call describes one request/response exchange.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the TokenSource when set
	token string
	anon  bool
	kind  routeKind
	// prepare customizes the request instead of a JSON body
	prepare func(req *protocol.Request)
}

func (c *HTTPClient) bearer(cl call) string {
	if cl.anon {
		return ""
	}
	if cl.token != "" {
		return cl.token
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *HTTPClient) do(ctx context.Context, cl call, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	uri := c.server + cl.path
	if len(cl.query) > 0 {
		uri += "?" + cl.query.Encode()
	}

	req.SetMethod(cl.method)
	req.SetRequestURI(uri)
	if token := c.bearer(cl); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	switch {
	case cl.prepare != nil:
		cl.prepare(req)
	case cl.body != nil:
		bodyBytes, err := sonic.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
		req.SetBody(bodyBytes)
	}

	if err := c.send(ctx, req, resp); err != nil {
		return transportError(err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return mapStatus(status, parseDetail(resp.Body()), cl.kind)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return &APIError{Status: status, Detail: "malformed response: " + err.Error(), Err: common.ErrTransport}
	}
	return nil
}

// send honors the context deadline, which hertz does not derive from ctx.
func (c *HTTPClient) send(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, hasDeadline := ctx.Deadline()

	var err error
	if hasDeadline {
		err = c.client.DoDeadline(ctx, req, resp, deadline)
	} else {
		err = c.client.Do(ctx, req, resp)
	}
	if err != nil {
		// hertz reports an expired deadline with its own timeout error
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return ctx.Err()
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out tokenResponse
	err := c.do(ctx, call{
		method: consts.MethodPost,
		path:   endpointLogin,
		body:   loginRequest{Email: email, Password: password},
		anon:   true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &AuthResult{AccessToken: out.AccessToken, User: out.User}, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var out tokenResponse
	err := c.do(ctx, call{
		method: consts.MethodPost,
		path:   endpointRegister,
		body:   registerRequest{Username: username, Email: email, Password: password},
		anon:   true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &AuthResult{AccessToken: out.AccessToken, User: out.User}, nil
}

func (c *HTTPClient) ProfileWithToken(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointProfile, token: token}, &out); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointProfile}, &out); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	var out profileUpdateResponse
	if err := c.do(ctx, call{method: consts.MethodPut, path: endpointProfile, body: p}, &out); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out.Profile, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) error {
	err := c.do(ctx, call{
		method: consts.MethodPut,
		path:   endpointProfilePassword,
		body:   passwordRequest{CurrentPassword: current, NewPassword: next},
	}, nil)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (c *HTTPClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var out []conversationDTO
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointConversations}, &out); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	convs := make([]models.Conversation, 0, len(out))
	for _, d := range out {
		convs = append(convs, d.toModel())
	}
	return convs, nil
}

func (c *HTTPClient) GetConversation(ctx context.Context, id string) ([]models.Exchange, error) {
	var out conversationDetailDTO
	path := fmt.Sprintf(endpointConversationByID, url.PathEscape(id))
	if err := c.do(ctx, call{method: consts.MethodGet, path: path}, &out); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}

	exchanges := make([]models.Exchange, 0, len(out.Messages))
	for _, m := range out.Messages {
		// an unparseable timestamp stays zero; the list keeps server order
		ts, _ := timex.ParseISO(m.Timestamp)
		exchanges = append(exchanges, models.Exchange{
			ID:        m.ID,
			Question:  m.Question,
			Answer:    m.Answer,
			Timestamp: ts,
		})
	}
	return exchanges, nil
}

func (c *HTTPClient) RenameConversation(ctx context.Context, id, title string) (*models.Conversation, error) {
	var out conversationDTO
	path := fmt.Sprintf(endpointConversationByID, url.PathEscape(id))
	if err := c.do(ctx, call{method: consts.MethodPut, path: path, body: renameRequest{Title: title}}, &out); err != nil {
		return nil, fmt.Errorf("rename conversation %s: %w", id, err)
	}
	conv := out.toModel()
	return &conv, nil
}

func (c *HTTPClient) DeleteConversation(ctx context.Context, id string) error {
	path := fmt.Sprintf(endpointConversationByID, url.PathEscape(id))
	if err := c.do(ctx, call{method: consts.MethodDelete, path: path}, nil); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) Chat(ctx context.Context, question, conversationID string) (*models.ChatReply, error) {
	body := chatRequest{Question: question}
	if conversationID != "" {
		body.ConversationID = &conversationID
	}

	var out chatResponse
	if err := c.do(ctx, call{method: consts.MethodPost, path: endpointChat, body: body}, &out); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	// the chat endpoint reports some failures in a 200 body
	if out.Error != "" {
		sentinel := common.ErrTransport
		if out.Error == chatErrConversationNotFound {
			sentinel = common.ErrNotFound
		}
		return nil, fmt.Errorf("chat: %w", &APIError{Status: consts.StatusOK, Detail: out.Error, Err: sentinel})
	}

	return &models.ChatReply{Answer: out.Answer, ConversationID: out.ConversationID}, nil
}

func (c *HTTPClient) UploadFile(ctx context.Context, filename string, content io.Reader) (*models.StoredFile, error) {
	var out models.StoredFile
	err := c.do(ctx, call{
		method: consts.MethodPost,
		path:   endpointUpload,
		prepare: func(req *protocol.Request) {
			req.SetFileReader("file", filename, content)
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return &out, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	var out filesResponse
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointFilesList}, &out); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]models.FileRecord, 0, len(out.Files))
	for _, f := range out.Files {
		files = append(files, models.FileRecord{
			Filename:   f.Filename,
			Size:       f.Size,
			UploadedAt: timex.FromEpochSeconds(f.UploadedAt),
		})
	}
	return files, nil
}

func (c *HTTPClient) AdminStats(ctx context.Context) (*models.StatsOverview, error) {
	var out models.StatsOverview
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointAdminStats, kind: routeAdmin}, &out); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) AdminUsers(ctx context.Context, f models.UserFilter) (*models.UserList, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}

	var out userListDTO
	if err := c.do(ctx, call{method: consts.MethodGet, path: endpointAdminUsers, query: q, kind: routeAdmin}, &out); err != nil {
		return nil, fmt.Errorf("admin users: %w", err)
	}

	list := &models.UserList{
		Users:    make([]models.AdminUser, 0, len(out.Users)),
		Total:    out.Total,
		Page:     out.Page,
		PageSize: out.PageSize,
	}
	for _, u := range out.Users {
		list.Users = append(list.Users, u.toModel())
	}
	return list, nil
}

func (c *HTTPClient) SetUserBlocked(ctx context.Context, userID int64, blocked bool) error {
	action := "unblock"
	var body any
	if blocked {
		action = "block"
		body = blockRequest{}
	}

	path := fmt.Sprintf(endpointAdminUserBlock, userID, action)
	if err := c.do(ctx, call{method: consts.MethodPost, path: path, body: body, kind: routeAdmin}, nil); err != nil {
		return fmt.Errorf("%s user %d: %w", action, userID, err)
	}
	return nil
}

// IsUnauthenticated is a shorthand used by presentation code.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, common.ErrUnauthenticated)
}
