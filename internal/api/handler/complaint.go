package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/complaint"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/upload"

	"github.com/gin-gonic/gin"
)

const evidenceField = "evidence"

type statusRequest struct {
	Status string `json:"status"`
}

// CreateComplaint accepts multipart/form-data with up to five files under "evidence".
func (h *Handler) CreateComplaint(c *gin.Context) {
	sess, _ := sessionFrom(c)

	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		respondError(c, apperr.Validation("multipart form expected"))
		return
	}

	in := complaint.CreateInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		Latitude:    formValue(form, "latitude"),
		Longitude:   formValue(form, "longitude"),
		Files:       evidenceFiles(form.File[evidenceField]),
	}

	created, err := h.Complaints.CreateComplaint(c.Request.Context(), sess, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetMyComplaints(c *gin.Context) {
	sess, _ := sessionFrom(c)
	list, err := h.Complaints.GetMyComplaints(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAllComplaints supports ?category= (exact match) and ?sortBy=newest|oldest|status|title.
func (h *Handler) GetAllComplaints(c *gin.Context) {
	sess, _ := sessionFrom(c)
	list, err := h.Complaints.GetAllComplaints(c.Request.Context(), sess, complaint.ListQuery{
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sortBy", config.SortNewest),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	sess, _ := sessionFrom(c)
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	updated, err := h.Complaints.UpdateComplaintStatus(c.Request.Context(), sess, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetComplaintMarkers(c *gin.Context) {
	sess, _ := sessionFrom(c)
	markers, err := h.Complaints.GetComplaintMarkers(c.Request.Context(), sess, c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func evidenceFiles(headers []*multipart.FileHeader) []upload.File {
	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, upload.File{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files
}
