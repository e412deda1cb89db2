package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/middleware"
	"github.com/ptminh/auth-server/models"
	"github.com/ptminh/auth-server/utils"
)

type VerifyEmailReq struct {
	Token string `json:"token" binding:"required"`
}

func VerifyEmail(c *gin.Context) {
	var req VerifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var tok models.EmailVerificationToken
	err := config.DB.Where("digest = ? AND expires_at > ?", utils.TokenDigest(req.Token), time.Now()).
		First(&tok).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}

	if err := config.DB.Model(&models.User{}).
		Where("id = ?", tok.UserID).
		Update("email_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not verify email"})
		return
	}

	config.DB.Delete(&tok)

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func ResendVerification(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	if u.EmailVerified {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is already verified"})
		return
	}

	sendVerificationMail(u)

	c.JSON(http.StatusOK, gin.H{"message": "Verification mail sent"})
}
