package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/models"
)

type CreateInviteCodesReq struct {
	Count int `json:"count" binding:"required,min=1,max=100"`
}

// CreateInviteCodes mints a batch of fresh single-use codes.
func CreateInviteCodes(c *gin.Context) {
	var req CreateInviteCodesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	codes := make([]models.InviteCode, req.Count)
	for i := range codes {
		codes[i] = models.InviteCode{Code: uuid.NewString()}
	}

	if err := config.DB.Create(&codes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create invite codes"})
		return
	}

	out := make([]string, len(codes))
	for i, ic := range codes {
		out[i] = ic.Code
	}
	c.JSON(http.StatusCreated, gin.H{"codes": out})
}

func ListInviteCodes(c *gin.Context) {
	var codes []models.InviteCode
	if err := config.DB.Order("created_at DESC").Find(&codes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list invite codes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func ListWaitlist(c *gin.Context) {
	var entries []models.WaitlistEntry
	if err := config.DB.Order("created_at ASC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list waitlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
