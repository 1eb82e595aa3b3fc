package services

import (
	"strings"

	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies bearer tokens and enforces capability checks on
// protected routes.
type AuthMiddleware struct {
	context.DefaultService

	jwt      *JWTService
	postgres *PostgresService
}

const AUTH_SVC = "auth_svc"

func (svc AuthMiddleware) Id() string {
	return AUTH_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	svc.jwt = svc.Service(JWT_SVC).(*JWTService)
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// RequiredAuth validates the Authorization header and stores the caller's
// user id in locals.
func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := svc.authenticate(c)
		if err != nil {
			return err
		}
		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

// RequireCapability authenticates the caller and checks the capability set.
// Superadmins hold every capability implicitly.
func (svc *AuthMiddleware) RequireCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := svc.authenticate(c)
		if err != nil {
			return err
		}

		user, err := svc.postgres.GetUserByID(userID)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Invalid credentials")
		}
		if !user.HasCapability(capability) {
			return shared.NewForbiddenError(nil, "You do not have access to this resource")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

func (svc *AuthMiddleware) authenticate(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", shared.NewUnauthorizedError(nil, "Authorization header required")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", shared.NewUnauthorizedError(nil, "Bearer token required")
	}

	claims, err := svc.jwt.VerifyJWT(token)
	if err != nil {
		return "", shared.NewUnauthorizedError(err, "Invalid or expired token")
	}
	return claims.UserID, nil
}
