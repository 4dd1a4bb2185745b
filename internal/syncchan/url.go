package syncchan

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// PushURL derives the push channel endpoint from the origin the client was
// served from: http becomes ws, https becomes wss, host and port are kept
// and the path is always /ws.
func PushURL(origin string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", fmt.Errorf("syncchan: parse origin: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("syncchan: unsupported origin scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("syncchan: origin %q has no host", origin)
	}
	u.Path = wire.PushPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}
