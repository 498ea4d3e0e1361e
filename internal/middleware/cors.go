package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS applies rs/cors to requests under pathPrefix and answers their preflights.
// Registered on the engine so preflights for unknown methods still reach it.
// Credentials are allowed only when origins is an explicit list.
func CORS(pathPrefix string, origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Navegadores recusam credenciais com origem curinga; só listas explícitas levam o cookie
	credentials := true
	for _, o := range origins {
		if o == "*" {
			credentials = false
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", CSRFTokenHeader, HeaderRequestID, HeaderTraceID},
		ExposedHeaders:   []string{HeaderRequestID, HeaderTraceID},
		AllowCredentials: credentials,
		MaxAge:           300,
	})

	return func(ctx *gin.Context) {
		if !strings.HasPrefix(ctx.Request.URL.Path, pathPrefix) {
			ctx.Next()
			return
		}

		c.HandlerFunc(ctx.Writer, ctx.Request)

		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
