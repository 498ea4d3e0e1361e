package middleware

import (
	"net/http"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName é o cookie que identifica a sessão do navegador
	SessionCookieName = "sta_session"

	// SessionKey é a chave da sessão no contexto gin
	SessionKey = "session"
)

// SessionConfig contém a configuração do cookie de sessão
type SessionConfig struct {
	TTL          time.Duration
	CookieSecure bool
	CookiePath   string
}

// Session associa cada requisição a uma sessão em memória.
// Só ids emitidos pelo servidor e ainda vivos no store são aceitos; cookie
// ausente, malformado, expirado ou desconhecido gera uma sessão nova com id novo.
func Session(store *service.SessionStore, config SessionConfig) gin.HandlerFunc {
	if config.CookiePath == "" {
		config.CookiePath = "/"
	}

	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookieName)
		sess, ok := store.Get(id)
		if !ok {
			if id != "" {
				logger.FromGin(c).Debug().Msg("Cookie de sessão desconhecido, emitindo nova sessão")
			}
			id = uuid.New().String()
			sess = store.GetOrCreate(id)
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			SessionCookieName,
			id,
			int(config.TTL.Seconds()),
			config.CookiePath,
			"",
			config.CookieSecure,
			true,
		)

		c.Set(SessionKey, sess)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), id))

		c.Next()
	}
}

// CurrentSession retorna a sessão associada pela middleware Session
func CurrentSession(c *gin.Context) *service.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(*service.Session); ok {
			return sess
		}
	}
	return nil
}
