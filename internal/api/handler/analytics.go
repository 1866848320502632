package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetComplaintStats(c *gin.Context) {
	sess, _ := sessionFrom(c)
	stats, err := h.Analytics.GetComplaintStats(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
