package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// Locals keys para la identidad en Fiber.
const (
	LocalActorID = "actor_id"
	LocalStoreID = "store_id"
)

// IdentityMiddleware lee un Bearer Token JWT opcional y deja el actor en c.Locals.
// Sin header la petición sigue como actor vacío; un token presente pero inválido se rechaza con 401.
// No aplica reglas de autorización.
func IdentityMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActorID, claims.ActorID)
		c.Locals(LocalStoreID, claims.StoreID)
		return c.Next()
	}
}

// GetActorID devuelve el actor del contexto; vacío si la petición no trajo token.
func GetActorID(c *fiber.Ctx) entity.ActorID {
	s, _ := c.Locals(LocalActorID).(string)
	return entity.ActorID(s)
}

// GetStoreID devuelve la tienda del token, si la tiene.
func GetStoreID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalStoreID).(string)
	return s
}
