package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"WChat/global"
	"WChat/tools/security"
)

// CtxUserIDKey is where the middleware leaves the verified user id for
// downstream handlers.
const CtxUserIDKey = "authUserID"

// CookieName matches what the auth handlers set at login/signup.
const CookieName = "jwt"

type Options struct {
	EnableAuthorizationBearer bool // accept Authorization: Bearer as well as the cookie
}

func DefaultOptions() *Options {
	return &Options{EnableAuthorizationBearer: true}
}

// Middleware verifies the request's JWT and stores the subject user id in
// the gin context. It does not touch the database; handlers that need the
// full user record load it themselves.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := ""
		if v, err := c.Cookie(CookieName); err == nil {
			token = strings.TrimSpace(v)
		}
		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized - No token provided",
			})
			return
		}

		claims, err := security.Verify(global.JwtOptions(), token, "")
		if err != nil || claims.UserID() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized - Invalid token",
			})
			return
		}

		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

// AuthUserID reads the id the middleware stored, empty if the route was
// not behind auth.
func AuthUserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserIDKey)
	s, _ := v.(string)
	return s
}
