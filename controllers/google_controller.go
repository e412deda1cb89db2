package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/models"
	"github.com/ptminh/auth-server/utils"
)

type GoogleLoginReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLogin signs in with a verified Google ID token. Existing accounts
// always get in; a new account is only created in open mode, every other
// mode sends the visitor through the regular admission flow first.
func GoogleLogin(c *gin.Context) {
	var req GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.IDToken, config.C.GoogleClientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token has no email"})
		return
	}

	var user models.User
	err = config.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if config.C.SignupMode != config.ModeOpen {
			c.JSON(http.StatusForbidden, gin.H{"message": "No account for this Google user, registration requires admission"})
			return
		}
		// password sign-in stays disabled until the user sets one via reset
		placeholder, hashErr := utils.NewRandomToken()
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
		hash, hashErr := utils.HashPassword(placeholder)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
		user = models.User{
			Name:          name,
			Email:         email,
			PasswordHash:  hash,
			EmailVerified: true, // Google already verified it
		}
		if err := config.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not look up account"})
		return
	}

	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), roleOf(user), config.C.JWTExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"email_verified": user.EmailVerified,
		},
	})
}
