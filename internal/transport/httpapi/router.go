package httpapi

import (
	"papertrade/internal/transport/httpapi/middleware"

	"github.com/gin-gonic/gin"
)

const SessionCookie = middleware.SessionCookie

// NewRouter wires the API. Register and login are the only routes outside
// the session guard.
func NewRouter(ctrl *Controller, sessionStore middleware.Session) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	api := router.Group("/api")
	{
		api.POST("/register", ctrl.Register)
		api.POST("/login", ctrl.Login)

		authed := api.Group("", middleware.Auth(sessionStore))
		{
			authed.POST("/logout", ctrl.Logout)
			authed.GET("/quote", ctrl.Quote)
			authed.POST("/buy", ctrl.Buy)
			authed.POST("/sell", ctrl.Sell)
			authed.POST("/deposit", ctrl.Deposit)
			authed.POST("/withdraw", ctrl.Withdraw)
			authed.GET("/portfolio", ctrl.Portfolio)
			authed.GET("/history", ctrl.History)
			authed.GET("/statement", ctrl.Statement)
			authed.POST("/account/username", ctrl.ChangeUsername)
			authed.POST("/account/password", ctrl.ChangePassword)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	return router
}
