package identity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity the auth collaborator attached to the request.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Image   string
}

// ClaimsFromCtx extracts identity claims from the verified JWT in Fiber
// locals. ok is false when the request carries no valid token.
func ClaimsFromCtx(c *fiber.Ctx) (*Claims, bool) {
	token, tok := c.Locals("user").(*jwt.Token)
	if !tok || token == nil {
		return nil, false
	}

	mapClaims, tok := token.Claims.(jwt.MapClaims)
	if !tok {
		return nil, false
	}

	email, _ := mapClaims["email"].(string)
	if email == "" {
		return nil, false
	}

	claims := &Claims{Email: email}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	claims.Image, _ = mapClaims["picture"].(string)
	return claims, true
}
