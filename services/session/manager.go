package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"powerme/models"
	"powerme/signal"
	"powerme/utils"

	"go.uber.org/zap"
)

// Navigator abstracts the routing side effects of the session lifecycle
// (forced return to the landing page on logout).
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// Manager owns the credential for the process lifetime. All mutations of the
// token and profile funnel through its methods; callers never write either
// directly, so the pair can never get out of sync.
//
// The auth endpoints it calls are public: the request gateway passes them
// through untouched, so the manager keeps its own HTTP client. That client
// carries a cookie jar because the refresh credential travels as an HttpOnly
// cookie, never in a visible header.
type Manager struct {
	store   CredentialStore
	baseURL string
	http    *http.Client
	nav     Navigator
	logger  *zap.Logger

	// User is the reactive identity the view layer renders from.
	User *signal.Signal[*models.UserProfile]

	mu      sync.Mutex
	current *models.Credential
}

// NewManager builds a session manager around the given credential store.
// A nil httpClient gets a default client with a fresh cookie jar.
func NewManager(store CredentialStore, baseURL string, httpClient *http.Client, nav Navigator, logger *zap.Logger) *Manager {
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			logger.Sugar().Fatalf("session: failed to create cookie jar: %v", err)
		}
		httpClient = &http.Client{Jar: jar, Timeout: 15 * time.Second}
	}
	return &Manager{
		store:   store,
		baseURL: baseURL,
		http:    httpClient,
		nav:     nav,
		logger:  logger,
		User:    signal.New[*models.UserProfile](nil),
	}
}

// IsAuthenticated reports whether a user is currently trusted.
func (m *Manager) IsAuthenticated() bool {
	return m.User.Get() != nil
}

// Token returns the current access token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Restore rebuilds the session from the credential store at process start.
// It is optimistic: no network call is made, the token's continued validity
// is checked lazily by the first authenticated request.
func (m *Manager) Restore() {
	cred, err := m.store.Load()
	if err != nil {
		m.logger.Warn("session restore failed", zap.Error(err))
		return
	}
	if cred == nil {
		return
	}

	m.mu.Lock()
	m.current = cred
	m.mu.Unlock()
	user := cred.User
	m.User.Set(&user)

	if exp, err := utils.PeekTokenExpiry(cred.Token); err == nil {
		m.logger.Debug("session restored",
			zap.String("email", cred.User.Email),
			zap.Time("tokenExpiry", exp))
	} else {
		m.logger.Debug("session restored", zap.String("email", cred.User.Email))
	}
}

type loginResponse struct {
	AccessToken string             `json:"accessToken"`
	User        models.UserProfile `json:"user"`
}

// Login exchanges credentials for a token and profile. It does not persist
// anything: committing the session, and choosing where, is the caller's
// decision via CommitSession.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	payload := map[string]string{"email": email, "password": password}
	resp, err := m.postJSON(ctx, "/auth/login", payload)
	if err != nil {
		return nil, NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		if msg == "Account not activated" {
			return nil, AccountNotActivatedError{Email: email}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, InvalidCredentialsError{}
		}
		return nil, NetworkError{Err: fmt.Errorf("login failed with status %d", resp.StatusCode)}
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NetworkError{Err: fmt.Errorf("failed to decode login response: %w", err)}
	}

	m.logger.Info("login succeeded", zap.String("email", body.User.Email))
	return &models.Credential{Token: body.AccessToken, User: body.User}, nil
}

// CommitSession writes the credential through the store and installs the
// profile. remember selects the durable backend.
func (m *Manager) CommitSession(token string, user models.UserProfile, remember bool) error {
	if err := m.store.Save(token, user, remember); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = &models.Credential{Token: token, User: user, Persistent: remember}
	m.mu.Unlock()
	m.User.Set(&user)
	return nil
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh exchanges the cookie-carried refresh credential for a new access
// token and persists it in the same backend as the current session. The
// gateway coalesces concurrent callers, so this method itself stays simple.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	resp, err := m.postJSON(ctx, "/auth/refresh", nil)
	if err != nil {
		return "", NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", RefreshInvalidError{Status: resp.StatusCode}
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", NetworkError{Err: fmt.Errorf("failed to decode refresh response: %w", err)}
	}
	if body.AccessToken == "" {
		return "", RefreshInvalidError{Status: resp.StatusCode}
	}

	m.mu.Lock()
	cred := m.current
	if cred != nil {
		cred.Token = body.AccessToken
	}
	m.mu.Unlock()

	if cred != nil {
		if err := m.store.Save(body.AccessToken, cred.User, cred.Persistent); err != nil {
			m.logger.Warn("failed to persist refreshed token", zap.Error(err))
		}
	}

	m.logger.Debug("access token refreshed")
	return body.AccessToken, nil
}

// Logout notifies the server best-effort, then unconditionally clears local
// state and returns to the landing page. It always succeeds locally and is
// safe to call when already logged out.
func (m *Manager) Logout(ctx context.Context) {
	token := m.Token()
	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
			if resp, err := m.http.Do(req); err != nil {
				m.logger.Debug("logout notification failed", zap.Error(err))
			} else {
				resp.Body.Close()
			}
		}
	}

	m.store.Clear()
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.User.Set(nil)

	if m.nav != nil {
		m.nav.NavigateTo("/")
	}
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

// Register creates a new account. The account stays unusable until the
// activation link sent by email is followed.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) error {
	resp, err := m.postJSON(ctx, "/account/register", req)
	if err != nil {
		return NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		if msg == "" {
			msg = fmt.Sprintf("registration failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("registration rejected: %s", msg)
	}
	return nil
}

// ForgotPassword asks the backend to email a reset link.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	path := "/account/password/forgot/" + url.PathEscape(email)
	resp, err := m.postJSON(ctx, path, nil)
	if err != nil {
		return NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("password reset request failed with status %d", resp.StatusCode)
	}
	return nil
}

// ResetPassword finalizes a password reset with the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	payload := map[string]string{"token": token, "newPassword": newPassword}
	resp, err := m.postJSON(ctx, "/account/password/reset", payload)
	if err != nil {
		return NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("password reset failed with status %d", resp.StatusCode)
	}
	return nil
}

func (m *Manager) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return m.http.Do(req)
}

// readErrorMessage extracts the human message from a backend error body,
// accepting both the plain {message} shape and RFC 7807 {detail}.
func readErrorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Message
}
