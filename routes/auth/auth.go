package auth

import (
	"github.com/gin-gonic/gin"

	"chatfree/controllers"
	"chatfree/store"
)

// RegisterPublic registers the unauthenticated auth routes.
func RegisterPublic(r *gin.Engine, s store.Store) {
	r.POST("/register", controllers.Register(s))
	r.POST("/login", controllers.Login(s))
}

// RegisterProtected registers auth routes behind the bearer middleware.
func RegisterProtected(g *gin.RouterGroup, s store.Store) {
	g.POST("/logout", controllers.Logout())
}
