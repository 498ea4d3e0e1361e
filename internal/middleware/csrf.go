package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenHeader is the header name for CSRF token
	CSRFTokenHeader = "X-CSRF-Token"
	// CSRFFormField is the hidden form field carrying the token on page forms
	CSRFFormField = "csrf_token"
	// CSRFTokenLength is the length of the CSRF token in bytes
	CSRFTokenLength = 32
	// CSRFContextKey is where RequireCSRF leaves the session's token for templates
	CSRFContextKey = "csrf_token"
)

// CSRFToken represents a CSRF token with expiration
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFConfig contains configuration for CSRF protection
type CSRFConfig struct {
	TokenDuration time.Duration // How long tokens are valid
}

// CSRFMiddleware handles CSRF protection, one token per browser session
type CSRFMiddleware struct {
	config CSRFConfig
	tokens map[string]*CSRFToken // sessionID -> CSRFToken
	mu     sync.Mutex
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(config CSRFConfig) *CSRFMiddleware {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}

	return &CSRFMiddleware{
		config: config,
		tokens: make(map[string]*CSRFToken),
	}
}

// Token returns the live token of a session, generating one when missing or expired
func (m *CSRFMiddleware) Token(sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tokens[sessionID]; ok && time.Now().Before(t.ExpiresAt) {
		return t.Token, nil
	}

	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(bytes)

	m.tokens[sessionID] = &CSRFToken{
		Token:     token,
		ExpiresAt: time.Now().Add(m.config.TokenDuration),
	}
	return token, nil
}

// ValidateToken validates a CSRF token for a session
func (m *CSRFMiddleware) ValidateToken(sessionID, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	csrfToken, exists := m.tokens[sessionID]
	if !exists {
		return false
	}

	if time.Now().After(csrfToken.ExpiresAt) {
		delete(m.tokens, sessionID)
		return false
	}

	return subtle.ConstantTimeCompare([]byte(csrfToken.Token), []byte(token)) == 1
}

// RequireCSRF validates the session token on state-changing requests.
// Safe methods only get the token placed in the context for rendering.
// Must run after Session.
func (m *CSRFMiddleware) RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Success: false,
				Error:   "Sessão não encontrada",
			})
			return
		}

		token, err := m.Token(sess.ID())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
				Success: false,
				Error:   "Falha ao gerar token CSRF",
			})
			return
		}
		c.Set(CSRFContextKey, token)

		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			c.Next()
			return
		}

		sent := c.GetHeader(CSRFTokenHeader)
		if sent == "" && !isJSON(c) {
			sent = c.PostForm(CSRFFormField)
		}

		if sent == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Success: false,
				Error:   "Token CSRF ausente",
			})
			return
		}

		if !m.ValidateToken(sess.ID(), sent) {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Success: false,
				Error:   "Token CSRF inválido ou expirado",
			})
			return
		}

		c.Next()
	}
}

// CleanupExpiredTokens removes expired CSRF tokens
func (m *CSRFMiddleware) CleanupExpiredTokens() {
	now := time.Now()
	m.mu.Lock()
	for sessionID, token := range m.tokens {
		if now.After(token.ExpiresAt) {
			delete(m.tokens, sessionID)
		}
	}
	m.mu.Unlock()
}

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// CSRFTokenFrom returns the token RequireCSRF stored in the context
func CSRFTokenFrom(c *gin.Context) string {
	return c.GetString(CSRFContextKey)
}
