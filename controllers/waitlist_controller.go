package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ptminh/auth-server/admission"
	"github.com/ptminh/auth-server/config"
)

type JoinWaitlistReq struct {
	Email string `json:"email" binding:"required,email"`
}

// JoinWaitlist adds an email to the waitlist. Joined and already-on get
// the same body, so the endpoint leaks nothing about who is enrolled.
func JoinWaitlist(c *gin.Context) {
	if config.C.SignupMode != config.ModeWaitlist && config.C.SignupMode != config.ModeInviteOrWaitlist {
		c.JSON(http.StatusForbidden, gin.H{"message": "The waitlist is not open"})
		return
	}

	var req JoinWaitlistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	out := Ledger.JoinWaitlist(c.Request.Context(), req.Email)
	switch out.Status {
	case admission.StatusJoinedWaitlist, admission.StatusAlreadyOnWaitlist:
		c.JSON(http.StatusOK, gin.H{"message": "You're on the waitlist, we'll be in touch"})
	default:
		respondAdmissionFailure(c, out)
	}
}
