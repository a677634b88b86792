package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *gin.Context) pkgAuth.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return pkgAuth.Identity{}
	}
	identity, _ := val.(pkgAuth.Identity)
	return identity
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
