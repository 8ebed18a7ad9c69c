package chat

import (
	"github.com/gin-gonic/gin"

	"chatfree/controllers"
	"chatfree/middleware"
	"chatfree/store"
)

// Register registers chat routes (protected). The message endpoint carries a
// rate limit since it fans out to the completion API.
func Register(g *gin.RouterGroup, s store.Store, ai controllers.Completer) {
	g.GET("/chat", controllers.ListChats(s))
	g.POST("/chat/new", controllers.CreateChat(s))
	g.GET("/chat/:chatId", controllers.GetChat(s))
	g.POST("/chat/:chatId/message", middleware.RateLimit(), controllers.SendMessage(s, ai))
	g.DELETE("/chat/:chatId", controllers.DeleteChat(s))
}
