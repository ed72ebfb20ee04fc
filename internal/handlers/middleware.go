package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	cronSecretQuery  = "secret"
	cronSecretHeader = "X-Cron-Secret"

	errSecretMissing       = "missing cron secret"
	errSecretInvalid       = "invalid cron secret"
	errSecretNotConfigured = "cron secret not configured"
)

// cronSecretMiddleware accepts the shared secret from ?secret=, X-Cron-Secret
// or "Authorization: Bearer <secret>". An unset secret rejects everything.
func (h *Handler) cronSecretMiddleware(c *gin.Context) {
	if h.cronSecret == "" {
		if h.log != nil {
			h.log.Warnw("cron_secret_not_configured", "path", c.FullPath())
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": errSecretNotConfigured,
		})
		return
	}

	provided := presentedSecret(c)
	if provided == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": errSecretMissing,
		})
		return
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cronSecret)) != 1 {
		if h.log != nil {
			h.log.Warnw("cron_secret_rejected", "path", c.FullPath(), "client_ip", c.ClientIP())
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": errSecretInvalid,
		})
		return
	}

	c.Next()
}

func presentedSecret(c *gin.Context) string {
	if s := c.Query(cronSecretQuery); s != "" {
		return s
	}
	if s := c.GetHeader(cronSecretHeader); s != "" {
		return s
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
