package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/models"
	"github.com/ptminh/auth-server/utils"
)

type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword always answers with the same body so the endpoint cannot
// be used to check whether an address has an account.
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		if raw, err := utils.NewRandomToken(); err == nil {
			tok := models.PasswordResetToken{
				Digest:    utils.TokenDigest(raw),
				UserID:    user.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			if err := config.DB.Create(&tok).Error; err == nil {
				_ = utils.Mail.Send(user.Email, "Reset your password",
					"Use this token to set a new password: "+raw)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that address has an account, a reset mail is on its way"})
}

type ResetPasswordReq struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword consumes a reset token and sets the new password. The
// token is spent with a conditional update on used_at, so two concurrent
// resets with the same token cannot both succeed.
func ResetPassword(c *gin.Context) {
	var req ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	digest := utils.TokenDigest(req.Token)

	var tok models.PasswordResetToken
	if err := config.DB.Where("digest = ?", digest).First(&tok).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.PasswordResetToken{}).
		Where("digest = ? AND used_at IS NULL AND expires_at > ?", digest, now).
		Update("used_at", now)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	if err := config.DB.Model(&models.User{}).
		Where("id = ?", tok.UserID).
		Update("password_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
