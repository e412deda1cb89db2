package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ptminh/auth-server/admission"
	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/controllers"
	"github.com/ptminh/auth-server/routes"
	"github.com/ptminh/auth-server/utils"
)

func main() {
	cfg := config.Load()

	// DB connection + AutoMigrate
	config.ConnectDB()

	retryCfg := admission.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.RetryMaxAttempts
	retryCfg.BaseDelay = cfg.RetryBaseDelay
	controllers.InitAdmission(admission.NewLedger(config.DB, retryCfg))

	if cfg.SMTPHost != "" {
		utils.Mail = utils.SMTPMailer{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, allowed := range cfg.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Auth server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	routes.SetupRoutes(r)

	log.Printf("Server listening on port %s (signup mode: %s)\n", cfg.Port, cfg.SignupMode)
	r.Run(":" + cfg.Port)
}
