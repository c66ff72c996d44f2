// Package gateway attaches the bearer credential to outgoing API requests
// and transparently recovers from credential expiry.
package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session is the slice of the session manager the transport needs.
type Session interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context)
}

// publicPaths are the authentication endpoints that must never carry a
// bearer credential and never trigger recovery.
var publicPaths = []string{
	"/auth/login",
	"/auth/refresh",
	"/account/register",
	"/account/password",
}

// AuthTransport is an http.RoundTripper that decides, per request, whether
// to attach the current credential, and on a 401 coalesces all concurrent
// failures into a single refresh before retrying each original request once.
type AuthTransport struct {
	base    http.RoundTripper
	session Session
	apiBase *url.URL
	logger  *zap.Logger
	group   singleflight.Group
}

// New builds an AuthTransport in front of base (http.DefaultTransport when
// nil). Requests whose URL does not live under apiBase pass through
// untouched: external map, geocoding and payment providers must never see
// our credential.
func New(base http.RoundTripper, session Session, apiBase string, logger *zap.Logger) (*AuthTransport, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		base:    base,
		session: session,
		apiBase: u,
		logger:  logger,
	}, nil
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.targetsAPI(req.URL) || t.isPublic(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	token := t.session.Token()
	if token == "" {
		// Unauthenticated request proceeds; the server rejects it if the
		// endpoint requires auth.
		return t.base.RoundTrip(req)
	}

	resp, err := t.base.RoundTrip(withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// Expired credential. All requests failing while a refresh is in flight
	// subscribe to that one call instead of issuing their own: the backend
	// rotates the refresh credential on each use, so a second refresh would
	// invalidate the first.
	newToken, refreshErr, _ := t.group.Do("refresh", func() (any, error) {
		return t.session.Refresh(req.Context())
	})
	if refreshErr != nil {
		t.logger.Warn("token refresh failed, forcing logout", zap.Error(refreshErr))
		t.session.Logout(req.Context())
		return resp, nil
	}

	retry, ok := rewind(req)
	if !ok {
		// The body was already consumed and cannot be replayed.
		return resp, nil
	}

	// Done with the original 401; drain it so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// At most one refresh-retry cycle per request: a second 401 comes back
	// to the caller as a final authorization error.
	return t.base.RoundTrip(withBearer(retry, newToken.(string)))
}

func (t *AuthTransport) targetsAPI(u *url.URL) bool {
	return u.Host == t.apiBase.Host && strings.HasPrefix(u.Path, t.apiBase.Path)
}

func (t *AuthTransport) isPublic(path string) bool {
	rel := strings.TrimPrefix(path, t.apiBase.Path)
	for _, p := range publicPaths {
		if strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}

// withBearer clones the request with the credential attached. RoundTrippers
// must not mutate the caller's request.
func withBearer(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return clone
}

// rewind produces a replayable copy of the original request, or reports that
// its body cannot be re-read.
func rewind(req *http.Request) (*http.Request, bool) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone.Body = body
	return clone, true
}
