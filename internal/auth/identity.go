package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coaching-service/internal/domain"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// AuthorityUser is granted to every resolved account.
const AuthorityUser = "USER"

// Identity is the verified caller of one request.
type Identity struct {
	UserID      string
	Email       string
	Authorities []string
}

func newIdentity(user *domain.User) *Identity {
	return &Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Authorities: []string{AuthorityUser},
	}
}

func bindIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
}

// IdentityFromContext returns the identity bound by the Gate, if any.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(identityKey).(*Identity)
	return id, ok && id != nil
}

// RequireIdentity rejects requests the Gate left unauthenticated.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
