package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ptminh/auth-server/admission"
	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/middleware"
	"github.com/ptminh/auth-server/models"
	"github.com/ptminh/auth-server/utils"
)

type RegisterReq struct {
	Name       string `json:"name" binding:"required,min=1"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	InviteCode string `json:"invite_code"`
}

// Register creates an account subject to the configured admission mode.
// In the invite modes the code is claimed before the account is created;
// a claim that succeeds stays consumed even if account creation fails.
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	switch config.C.SignupMode {
	case config.ModeOpen:
		createAccount(c, req)

	case config.ModeInvite:
		if req.InviteCode == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "An invite code is required"})
			return
		}
		registerWithCode(c, req)

	case config.ModeInviteOrWaitlist:
		if req.InviteCode == "" {
			out := Ledger.JoinWaitlist(c.Request.Context(), req.Email)
			switch out.Status {
			case admission.StatusJoinedWaitlist, admission.StatusAlreadyOnWaitlist:
				// same body either way, membership is not probeable
				c.JSON(http.StatusOK, gin.H{"message": "You're on the waitlist, we'll be in touch"})
			default:
				respondAdmissionFailure(c, out)
			}
			return
		}
		registerWithCode(c, req)

	case config.ModeWaitlist:
		c.JSON(http.StatusForbidden, gin.H{"message": "Registration is invite-only right now, you can join the waitlist"})

	default: // closed
		c.JSON(http.StatusForbidden, gin.H{"message": "Registration is currently closed"})
	}
}

func registerWithCode(c *gin.Context, req RegisterReq) {
	out := Ledger.ClaimCode(c.Request.Context(), req.InviteCode, req.Email)
	switch out.Status {
	case admission.StatusClaimed:
		createAccount(c, req)
	case admission.StatusAlreadyClaimedOrInvalid:
		c.JSON(http.StatusForbidden, gin.H{"message": "Invite code is invalid or has already been used"})
	default:
		respondAdmissionFailure(c, out)
	}
}

func createAccount(c *gin.Context, req RegisterReq) {
	var count int64
	config.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email is already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      false,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		// constraint backstop for the pre-check race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
		return
	}

	sendVerificationMail(user)

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"email_verified": user.EmailVerified,
			"created_at":     user.CreatedAt,
		},
	})
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
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

func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.CtxUserPublic)})
}

// DeleteAccount removes the authenticated user's row. Claimed invite codes
// and waitlist entries are audit state and stay behind.
func DeleteAccount(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	if err := config.DB.Delete(&models.User{}, u.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func roleOf(u models.User) string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

func sendVerificationMail(user models.User) {
	raw, err := utils.NewRandomToken()
	if err != nil {
		return
	}
	tok := models.EmailVerificationToken{
		Digest:    utils.TokenDigest(raw),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(48 * time.Hour),
	}
	if err := config.DB.Create(&tok).Error; err != nil {
		return
	}
	_ = utils.Mail.Send(user.Email, "Verify your email",
		"Welcome! Confirm your address with this token: "+raw)
}
