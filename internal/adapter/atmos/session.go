package atmos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/user/atmos-energy/internal/usage"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Session is the authenticated state returned by Login. It is not safe for
// concurrent use.
type Session struct {
	formID string
	jar    http.CookieJar
	active bool
}

func (s *Session) FormID() string {
	if s == nil {
		return ""
	}
	return s.formID
}

// Active reports whether the session has logged in and not yet logged out.
// Portal-side expiry is only noticed by the next download.
func (s *Session) Active() bool {
	return s != nil && s.active
}

// Login fetches the login form, extracts its form id and submits the
// credentials. The portal answers a rejected login by rendering the
// authenticate page again instead of redirecting to the landing page.
func (c *Client) Login(ctx context.Context, creds usage.Credentials) (*Session, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, ErrMissingCredentials)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %w", ErrAuthentication, err)
	}
	hc := c.httpClient(jar, true)

	c.logger.Debug("fetching login form")
	_, page, err := c.do(ctx, hc, http.MethodGet, c.url(loginFormPath), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch login form: %w", ErrAuthentication, err)
	}

	formID, err := ExtractFormID(page)
	if err != nil {
		c.logger.Error("could not find login form id, portal markup may have changed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	c.logger.Debug("got login form id", zap.String("form_id", formID))

	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
		"formId":   {formID},
	}

	c.logger.Debug("submitting login form")
	resp, _, err := c.do(ctx, hc, http.MethodPost, c.url(authenticatePath), form)
	if err != nil {
		return nil, fmt.Errorf("%w: submit login form: %w", ErrAuthentication, err)
	}

	if strings.HasSuffix(resp.Request.URL.Path, authenticatePath) {
		c.logger.Error("login failed, please check your credentials")
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, ErrCredentialsRejected)
	}

	return &Session{
		formID: formID,
		jar:    jar,
		active: true,
	}, nil
}

// Logout ends the portal session. The session is unusable afterwards even
// when the request fails; logging out twice returns ErrSessionState.
func (c *Client) Logout(ctx context.Context, s *Session) error {
	if !s.Active() {
		return fmt.Errorf("%w: logout without an active session", ErrSessionState)
	}
	s.active = false

	c.logger.Debug("logging out of the account center")
	if _, _, err := c.do(ctx, c.httpClient(s.jar, true), http.MethodGet, c.url(logoutPath), nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// WithSession logs in, runs fn and always logs out afterwards. Logout is
// best effort: its failure is logged and never replaces fn's result.
func (c *Client) WithSession(ctx context.Context, creds usage.Credentials, fn func(*Session) error) error {
	s, err := c.Login(ctx, creds)
	if err != nil {
		return err
	}

	defer func() {
		// The caller's context may already be done; the portal session
		// should still be released.
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		if err := c.Logout(logoutCtx, s); err != nil {
			c.logger.Warn("logout failed", zap.Error(err))
		}
	}()

	return fn(s)
}
