// Package domain defines the gateway access token and the request facts it is validated against.
package domain

import (
	"net"
	"strings"
	"time"
)

// Client constraint prefixes carried in Token.ClientID.
const (
	ClientIPPrefix      = "ip."
	ClientRefererPrefix = "ref."
)

// Token is a time-limited grant for a named group, optionally bound to a client
// IP address or HTTP referer. A decoded Token is immutable.
type Token struct {
	GroupName      string
	ClientID       string
	ExpirationDate time.Time
	IsValid        bool
}

// IsExpired reports whether the token has expired at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpirationDate)
}

// RequestInfo carries the parts of an inbound request a token constraint is checked against.
type RequestInfo struct {
	// RemoteAddr is the requester address, with or without a port.
	RemoteAddr string
	// Referer is the Referer header value.
	Referer string
}

// RemoteIP returns RemoteAddr without its port.
func (r RequestInfo) RemoteIP() string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.Trim(r.RemoteAddr, "[]")
}

// IsLocal reports whether the request originates from a loopback address.
func (r RequestInfo) IsLocal() bool {
	ip := net.ParseIP(r.RemoteIP())
	return ip != nil && ip.IsLoopback()
}

// MatchesClient reports whether the request satisfies a token client constraint.
// An empty constraint always matches; an unknown prefix never does.
func (r RequestInfo) MatchesClient(clientID string) bool {
	if clientID == "" {
		return true
	}

	lower := strings.ToLower(clientID)
	switch {
	case strings.HasPrefix(lower, ClientIPPrefix):
		if r.IsLocal() {
			return true
		}
		return strings.EqualFold(clientID[len(ClientIPPrefix):], r.RemoteIP())
	case strings.HasPrefix(lower, ClientRefererPrefix):
		if r.Referer == "" {
			return false
		}
		return strings.Contains(strings.ToLower(r.Referer), lower[len(ClientRefererPrefix):])
	default:
		return false
	}
}
