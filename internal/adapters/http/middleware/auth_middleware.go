package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/backend"
	"clinic-console/internal/config"
	"clinic-console/internal/core/domain"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/jwt"
	"clinic-console/internal/pkg/listquery"
	"clinic-console/internal/pkg/seal"
)

const sessionLocal = "session"

// LoginPath is where unauthenticated requests are sent
const LoginPath = "/login"

// MsgSessionExpired is flashed on the login page after a 401
const MsgSessionExpired = "Your session has expired. Please login again."

// Session is the signed-in user of one request
type Session struct {
	Token string
	// Owner identifies the session in the preview and snapshot stores
	// without exposing the token
	Owner   string
	User    *domain.User
	Backend *backend.Session
}

// CurrentSession returns the session stored by AuthMiddleware
func CurrentSession(c *fiber.Ctx) *Session {
	s, _ := c.Locals(sessionLocal).(*Session)
	return s
}

// OwnerOf derives the session owner key from the backend token
func OwnerOf(token string) string {
	return seal.HashToken(token)
}

// SessionCookies issues and clears the sealed token cookie
type SessionCookies struct {
	cfg    *config.Config
	sealer *seal.Sealer
}

// NewSessionCookies creates the cookie helper
func NewSessionCookies(cfg *config.Config, sealer *seal.Sealer) *SessionCookies {
	return &SessionCookies{cfg: cfg, sealer: sealer}
}

// Set seals token into the session cookie. The cookie expires with the
// token when it carries an exp claim.
func (s *SessionCookies) Set(c *fiber.Ctx, token string) error {
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    sealed,
		Path:     "/",
		Expires:  jwt.ExpiryOr(token, time.Now().Add(s.cfg.Session.MaxAge)),
		Secure:   s.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: s.cfg.Cookie.SameSite,
		Domain:   s.cfg.Cookie.Domain,
	})
	return nil
}

// Clear removes the session cookie
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		Secure:   s.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: s.cfg.Cookie.SameSite,
		Domain:   s.cfg.Cookie.Domain,
	})
}

// Token returns the unsealed backend token of the request, if any
func (s *SessionCookies) Token(c *fiber.Ctx) (string, error) {
	sealed := c.Cookies(s.cfg.Session.CookieName)
	if sealed == "" {
		return "", domain.ErrSessionRequired
	}
	return s.sealer.Open(sealed)
}

// AuthMiddleware resolves the session from the token cookie. Requests
// without a usable session are redirected to the login page.
func AuthMiddleware(cookies *SessionCookies, client *backend.Client, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := cookies.Token(c)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionRequired) {
				cookies.Clear(c)
			}
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}

		if _, err := jwt.CheckExpiry(token, time.Now()); errors.Is(err, jwt.ErrTokenExpired) {
			cookies.Clear(c)
			return c.Redirect(listquery.WithFlash(LoginPath, listquery.Flash{Error: MsgSessionExpired}), fiber.StatusSeeOther)
		}

		api := client.WithToken(token)
		user, err := api.CurrentUser(c.Context())
		if err != nil {
			if apierror.Classify(err).Kind == apierror.KindUnauthorized {
				cookies.Clear(c)
				return c.Redirect(listquery.WithFlash(LoginPath, listquery.Flash{Error: MsgSessionExpired}), fiber.StatusSeeOther)
			}
			logger.Warn("resolve current user failed", zap.Error(err))
			return fiber.NewError(fiber.StatusBadGateway, messageFor(err))
		}

		c.Locals(sessionLocal, &Session{
			Token:   token,
			Owner:   OwnerOf(token),
			User:    user,
			Backend: api,
		})
		return c.Next()
	}
}

// GuestOnly sends signed-in users away from the login page
func GuestOnly(cookies *SessionCookies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := cookies.Token(c)
		if err == nil {
			if _, err := jwt.CheckExpiry(token, time.Now()); err == nil || errors.Is(err, jwt.ErrTokenInvalid) {
				return c.Redirect("/dashboard", fiber.StatusSeeOther)
			}
		}
		return c.Next()
	}
}

func messageFor(err error) string {
	if apierror.Classify(err).Kind == apierror.KindNetwork {
		return apierror.MsgDisconnected
	}
	return apierror.MsgGeneric
}
