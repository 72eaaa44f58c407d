// Package netx holds URL helpers for talking to the Content API.
package netx

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL ensures server has a scheme and drops any path, query
// or trailing slash, so endpoint paths can be appended directly.
func NormalizeBaseURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// WebSocketURL maps an http(s) base URL onto ws(s) and appends path.
func WebSocketURL(base, path string) (string, error) {
	normalized, err := NormalizeBaseURL(base)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(normalized, "https://"):
		return "wss://" + strings.TrimPrefix(normalized, "https://") + path, nil
	default:
		return "ws://" + strings.TrimPrefix(normalized, "http://") + path, nil
	}
}
