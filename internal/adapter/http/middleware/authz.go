package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/configs"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// Require verifies the bearer token and, when roles are given, checks the
// principal holds one of them. The resolved identity lands in the gin context.
func (a *Authz) Require(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		ident, ok := a.verify(raw)
		if !ok {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		if len(roles) > 0 && !hasRole(ident.Role, roles) {
			forbidden(c, "insufficient_role", "missing required role")
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// verify parses and validates a raw token outside a request context (the
// websocket attach uses it for query-parameter tokens).
func (a *Authz) verify(raw string) (security.Identity, bool) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.Security.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew

	if err != nil || !token.Valid {
		return security.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return security.Identity{}, false
	}
	if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
		return security.Identity{}, false
	}

	ident := security.Identity{}
	if sub, ok := claims["sub"].(string); ok {
		ident.UserID = sub
	}
	if role, ok := claims["role"].(string); ok {
		ident.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	if tg, ok := claims["tg_chat_id"].(float64); ok {
		ident.TelegramChatID = int64(tg)
	}
	if ident.UserID == "" || ident.Role == "" {
		return security.Identity{}, false
	}
	return ident, true
}

// VerifyToken exposes token verification for non-middleware callers.
func (a *Authz) VerifyToken(raw string) (security.Identity, bool) {
	return a.verify(raw)
}

// IdentityFrom returns the identity stored by Require.
func IdentityFrom(c *gin.Context) (security.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return security.Identity{}, false
	}
	ident, ok := v.(security.Identity)
	return ident, ok
}

func hasRole(have string, want []string) bool {
	for _, r := range want {
		if have == r {
			return true
		}
	}
	return false
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "error_description": desc})
}
