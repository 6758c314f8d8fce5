package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/internal/service"
)

const (
	localSession = "session"
	localToken   = "session_token"
)

// SessionAuthenticator resolves a bearer token into a session.
type SessionAuthenticator interface {
	CurrentSession(ctx context.Context, token string) (*model.Session, error)
}

// MembershipChecker reports whether an email is in the admin directory.
type MembershipChecker interface {
	IsMember(ctx context.Context, email string) (bool, error)
}

// RequireAdmin admits requests carrying a valid session whose email is in
// the admin directory. The session is available to later handlers.
func RequireAdmin(auth SessionAuthenticator, directory MembershipChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return respondError(c, service.ErrUnauthenticated)
		}

		sess, err := auth.CurrentSession(c.Context(), token)
		if err != nil {
			return respondError(c, err)
		}

		member, err := directory.IsMember(c.Context(), sess.Email)
		if err != nil {
			return respondError(c, err)
		}
		if !member {
			log.Warn().
				Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
				Str("email", sess.Email).
				Str("path", c.Path()).
				Msg("session is not in the admin directory")
			return respondError(c, service.ErrForbidden)
		}

		c.Locals(localSession, sess)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// sessionFrom returns the session stored by RequireAdmin.
func sessionFrom(c *fiber.Ctx) (*model.Session, string, bool) {
	sess, ok := c.Locals(localSession).(*model.Session)
	if !ok {
		return nil, "", false
	}
	token, _ := c.Locals(localToken).(string)
	return sess, token, true
}
