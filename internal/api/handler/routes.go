package handler

import (
	"net/http"
	"time"

	"campusreport/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), gin.Recovery())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tokens := h.Auth.Tokens()
	authed := RequireAuth(tokens, false)
	supervisors := RequireRole(models.SupervisorRoles...)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", authed, h.Me)
	}

	complaints := r.Group("/complaints", authed)
	{
		complaints.POST("", h.CreateComplaint)
		complaints.GET("/my", h.GetMyComplaints)
		complaints.GET("/all", supervisors, h.GetAllComplaints)
		complaints.GET("/map", supervisors, h.GetComplaintMarkers)
		complaints.PUT("/:id/status", supervisors, h.UpdateComplaintStatus)
	}

	r.GET("/analytics/complaints", authed, supervisors, h.GetComplaintStats)

	r.POST("/contact", h.SubmitContact)
	contactAdmin := r.Group("/contact", authed, RequireRole(models.RoleAdmin))
	{
		contactAdmin.GET("/all", h.ListContacts)
		contactAdmin.DELETE("/:id", h.DeleteContact)
	}

	r.GET("/ws/complaints", RequireAuth(tokens, true), supervisors, h.ServeComplaintFeed)

	return r
}

// EdgeOptions configures the middleware in front of the gin engine.
type EdgeOptions struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// WrapEdge applies CORS and per-IP rate limiting around the router.
func WrapEdge(next http.Handler, opts EdgeOptions) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})

	h := corsHandler(next)
	if opts.RateLimitReqs > 0 && opts.RateLimitWindow > 0 {
		h = httprate.LimitByIP(opts.RateLimitReqs, opts.RateLimitWindow)(h)
	}
	return h
}
