package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ptminh/auth-server/admission"
)

// Ledger is the admission-control ledger shared by the handlers, wired up
// in main after the DB connection exists.
var Ledger *admission.Ledger

func InitAdmission(l *admission.Ledger) {
	Ledger = l
}

// respondAdmissionFailure maps a terminal ledger failure to a generic
// response. Causes are logged server-side only.
func respondAdmissionFailure(c *gin.Context, out admission.Outcome) {
	log.Printf("admission failure (%s): %v", out.Status, out.Err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Something went wrong, please try again later"})
}
