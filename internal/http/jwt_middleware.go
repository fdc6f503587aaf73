package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-match/internal/service"
)

const travelerIDKey = "traveler_id"

// AccessTokenParser valida un access token y devuelve sus claims.
type AccessTokenParser interface {
	ParseAccessToken(token string) (service.Claims, error)
}

// JWTAuthMiddleware exige un bearer token valido y deja el id del viajero en el contexto.
func JWTAuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(travelerIDKey, claims.TravelerID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// TravelerID devuelve el viajero autenticado por JWTAuthMiddleware.
func TravelerID(c *gin.Context) (string, bool) {
	id := c.GetString(travelerIDKey)
	return id, id != ""
}
