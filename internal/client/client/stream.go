package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
	"github.com/dmitrijs2005/docchat/internal/netx"
)

const (
	streamDoneMarker  = "[DONE]"
	streamErrorPrefix = "Error:"
	streamReadLimit   = 1 << 20
)

// StreamClient asks one-off questions over the streaming chat websocket.
// Streamed answers are not stored in any conversation.
type StreamClient struct {
	url    string
	tokens TokenSource
	log    logging.Logger
}

func NewStreamClient(server string, tokens TokenSource, log logging.Logger) (*StreamClient, error) {
	base, err := netx.NormalizeBaseURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	wsURL, err := netx.WebSocketURL(base, endpointStreamChat)
	if err != nil {
		return nil, err
	}
	return &StreamClient{url: wsURL, tokens: tokens, log: log}, nil
}

// Ask sends question and calls onChunk for every streamed piece of the
// answer until the end marker arrives. It returns the assembled answer.
func (s *StreamClient) Ask(ctx context.Context, question string, onChunk func(string)) (string, error) {
	var opts websocket.DialOptions
	if s.tokens != nil {
		if token := s.tokens.Token(); token != "" {
			opts.HTTPHeader = http.Header{}
			opts.HTTPHeader.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	conn, _, err := websocket.Dial(ctx, s.url, &opts)
	if err != nil {
		return "", transportError(err)
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "done"); closeErr != nil {
			s.log.Debug(ctx, "failed to close websocket", "error", closeErr)
		}
	}()
	conn.SetReadLimit(streamReadLimit)

	if err := conn.Write(ctx, websocket.MessageText, []byte(question)); err != nil {
		return "", transportError(err)
	}

	var answer strings.Builder
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return answer.String(), transportError(err)
		}

		chunk := string(data)
		switch {
		case chunk == streamDoneMarker:
			return answer.String(), nil
		case strings.HasPrefix(chunk, streamErrorPrefix):
			detail := strings.TrimSpace(strings.TrimPrefix(chunk, streamErrorPrefix))
			return answer.String(), &APIError{Detail: detail, Err: common.ErrTransport}
		}

		answer.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
}
