package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ptminh/auth-server/controllers"
	"github.com/ptminh/auth-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimitRegister(), controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLogin)
			auth.POST("/forgot-password", middleware.RateLimitForgotPassword(), controllers.ForgotPassword)
			auth.POST("/reset-password", controllers.ResetPassword)
			auth.POST("/verify-email", controllers.VerifyEmail)
		}

		api.POST("/waitlist", middleware.RateLimitWaitlist(), controllers.JoinWaitlist)

		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
			protected.DELETE("/me", controllers.DeleteAccount)
			protected.POST("/resend-verification", controllers.ResendVerification)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/invite-codes", controllers.CreateInviteCodes)
			admin.GET("/invite-codes", controllers.ListInviteCodes)
			admin.GET("/waitlist", controllers.ListWaitlist)
		}
	}
}
