package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatfree/controllers"
	"chatfree/middleware"
	"chatfree/store"

	authRoutes "chatfree/routes/auth"
	chatRoutes "chatfree/routes/chat"
)

func RegisterRoutes(r *gin.Engine, s store.Store, ai controllers.Completer) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "chatfree backend running"})
	})

	authRoutes.RegisterPublic(r, s)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, s)
	chatRoutes.Register(protected, s, ai)
}
