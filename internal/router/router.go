// Package router wires the gin HTTP surface: webhook delivery, the
// retrieval engine's ask/index/stats/reindex endpoints, and the outer-shell
// CRUD routes for clients, meetings, summaries, hypotheses, and leads.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/dkoraitest/consultant-copilot/internal/handler"
	"github.com/dkoraitest/consultant-copilot/internal/middleware"
)

// Params holds every handler the router dispatches to.
type Params struct {
	dig.In

	RAGHandler    *handler.RAGHandler
	CRUDHandler   *handler.CRUDHandler
	ExtrasHandler *handler.ExtrasHandler
}

// New builds the configured gin engine.
func New(p Params) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.TracingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		registerWebhookRoutes(api, p.RAGHandler)
		registerRAGRoutes(api, p.RAGHandler)
		registerCRUDRoutes(api, p.CRUDHandler)
		registerExtrasRoutes(api, p.ExtrasHandler)
	}

	return r
}

func registerWebhookRoutes(r *gin.RouterGroup, h *handler.RAGHandler) {
	webhook := r.Group("/webhook")
	{
		webhook.POST("/fireflies", h.HandleFirefliesWebhook)
	}
}

func registerRAGRoutes(r *gin.RouterGroup, h *handler.RAGHandler) {
	rag := r.Group("/rag")
	{
		rag.POST("/ask", h.HandleAsk)
		rag.POST("/index", h.HandleIndex)
		rag.GET("/stats", h.HandleStats)
		rag.DELETE("/index/:meeting_id", h.HandleDeleteIndex)
		rag.POST("/reindex/:meeting_id", h.HandleReindex)
		rag.GET("/meetings/:meeting_id/context", h.HandleMeetingContext)
	}
}

func registerCRUDRoutes(r *gin.RouterGroup, h *handler.CRUDHandler) {
	clients := r.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClientNames)
		clients.GET("/:id", h.GetClient)
	}

	meetings := r.Group("/meetings")
	{
		meetings.GET("", h.ListMeetingTitles)
		meetings.GET("/:id", h.GetMeeting)
	}

	r.POST("/summaries", h.CreateSummary)
}

func registerExtrasRoutes(r *gin.RouterGroup, extras *handler.ExtrasHandler) {
	r.GET("/clients/:id/hypotheses", extras.ListHypotheses)
	r.POST("/hypotheses", extras.CreateHypothesis)

	r.GET("/leads", extras.ListLeads)
	r.POST("/leads", extras.CreateLead)
}
