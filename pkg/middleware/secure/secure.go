package secure

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// New applies baseline security headers. TLS is terminated upstream so no
// redirect is attempted. Development mode skips the headers entirely so the
// swagger UI can load its assets.
func New(production bool) gin.HandlerFunc {
	cfg := secure.DefaultConfig()
	cfg.SSLRedirect = false
	cfg.IsDevelopment = !production
	cfg.ContentSecurityPolicy = apiCSP
	if !production {
		cfg.STSSeconds = 0
	}
	return secure.New(cfg)
}
