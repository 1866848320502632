package handler

import (
	"net/http"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/contact"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitContact(c *gin.Context) {
	var req contact.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	msg, err := h.Contact.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListContacts(c *gin.Context) {
	sess, _ := sessionFrom(c)
	msgs, err := h.Contact.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	sess, _ := sessionFrom(c)
	if err := h.Contact.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
