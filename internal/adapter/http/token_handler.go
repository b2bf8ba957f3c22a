package http

import (
	"net/http"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/configs"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type TokenHandler struct {
	cfg configs.Config
}

func NewTokenHandler(cfg configs.Config) *TokenHandler {
	return &TokenHandler{cfg: cfg}
}

// POST /token (form or JSON)
// Accepts: login, secret
func (h *TokenHandler) IssueToken(c *gin.Context) {
	login := c.PostForm("login")
	secret := c.PostForm("secret")
	if login == "" || secret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	acc, ok := security.Accounts[login]
	if !ok || !acc.Enabled || secret != acc.Secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   h.cfg.Security.Issuer,
		"aud":   h.cfg.Security.Audience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(h.cfg.Security.TTL).Unix(),
		"sub":   acc.ID,
		"role":  acc.Role,
		"email": acc.Email,
	}
	if acc.TelegramChatID != 0 {
		claims["tg_chat_id"] = acc.TelegramChatID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int64(h.cfg.Security.TTL.Seconds()),
	})
}
