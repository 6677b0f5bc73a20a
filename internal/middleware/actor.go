package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/rota-api/internal/handler"
	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/pkg/auth"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

const HeaderXActorID = "X-Actor-ID"

type ActorConfig struct {
	// JWTSecret enables HS256 bearer tokens. Empty disables token parsing.
	JWTSecret string
	Issuer    string
}

// Actor resolves who is making the request, for audit stamping only: the
// "sub" claim of a valid bearer token, else the X-Actor-ID header, else the
// system actor. A bearer token that fails verification is rejected.
func Actor(config ActorConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderXActorID))

		if token, ok := bearer(c.GetHeader("Authorization")); ok && config.JWTSecret != "" {
			sub, err := auth.Subject(auth.Config{Secret: config.JWTSecret, Issuer: config.Issuer}, token)
			if err != nil {
				handler.Error(c, apperrors.Unauthorized(err))
				return
			}
			actor = sub
		}

		c.Set(handler.ContextActorID, model.Actor(actor))
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
