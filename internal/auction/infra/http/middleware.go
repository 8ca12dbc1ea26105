package http

import (
	"strings"

	userdomain "github.com/atelier-works/atelier-engine/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const profileLocalKey = "profile"

// JWTAuth verifies the bearer session token, resolves the actor's profile
// and stores it in the request locals. Anything failing along the way is a
// 401 with no further processing.
func JWTAuth(secret string, profiles userdomain.ProfileRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return unauthorized(c)
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			return unauthorized(c)
		}

		subject, err := parsed.Claims.GetSubject()
		if err != nil || subject == "" {
			return unauthorized(c)
		}
		actorID, err := uuid.Parse(subject)
		if err != nil {
			return unauthorized(c)
		}

		profile, err := profiles.GetByID(c.Context(), actorID)
		if err != nil {
			log.Warn("Auth: token subject has no profile",
				zap.String("actorID", actorID.String()),
				zap.Error(err),
			)
			return unauthorized(c)
		}

		c.Locals(profileLocalKey, profile)
		return c.Next()
	}
}

// CronAuth guards the sweep trigger with a shared secret: the caller must
// present exactly `Bearer <secret>`. Mismatch means no processing at all.
func CronAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" || bearerToken(c) != secret {
			return unauthorized(c)
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

func actorProfile(c *fiber.Ctx) *userdomain.Profile {
	profile, _ := c.Locals(profileLocalKey).(*userdomain.Profile)
	return profile
}
