package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by every access token: user_id and role, fixed at login.
type TokenIdentity struct {
	UserId uuid.UUID
	Role   string
}

// ParseToken validates an HS256 access token and extracts the identity.
// Shared between the HTTP middleware and the websocket handshake.
func ParseToken(tokenStr string) (*TokenIdentity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &TokenIdentity{UserId: userID, Role: role}, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Unauthorized, token missing or invalid"})
	}

	identity, err := ParseToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
	}

	ctx.Locals("user_id", identity.UserId)
	ctx.Locals("role", identity.Role)
	return ctx.Next()
}

// RequireRoles guards a route group to the listed roles. Must run after
// JwtMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role, _ := ctx.Locals("role").(string)
		for _, allowed := range roles {
			if role == allowed {
				return ctx.Next()
			}
		}
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Forbidden, insufficient permissions"})
	}
}

// Identity pulls the authenticated identity out of the request context.
func Identity(ctx *fiber.Ctx) (uuid.UUID, string) {
	userID, _ := ctx.Locals("user_id").(uuid.UUID)
	role, _ := ctx.Locals("role").(string)
	return userID, role
}
