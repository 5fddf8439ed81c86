package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/common"
	"github.com/suPer8Hu/codeassist/internal/httpapi/handlers"
	"github.com/suPer8Hu/codeassist/internal/httpapi/middleware"
)

type Options struct {
	JWTSecret string
	// CORSOrigins lists browser origins allowed to call the API; empty
	// disables CORS handling.
	CORSOrigins []string
}

func NewRouter(h *handlers.Handler, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Recovery(logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// everything under /api needs a token when JWT_SECRET is set
	api := r.Group("/api")
	api.Use(middleware.AuthRequired(opts.JWTSecret))

	api.GET("/models", h.ListProviders)
	api.GET("/models/:provider", h.ListModels)
	api.POST("/context/select", h.SelectContext)

	api.GET("/chats", h.ListChats)
	api.POST("/chats", h.CreateChat)
	api.GET("/chats/:id", h.GetChat)
	api.PUT("/chats/:id", h.PutChat)
	api.DELETE("/chats/:id", h.DeleteChat)
	api.POST("/chats/:id/fork", h.ForkChat)
	api.POST("/chats/:id/duplicate", h.DuplicateChat)
	api.PATCH("/chats/:id/description", h.UpdateDescription)
	api.PUT("/chats/:id/metadata", h.UpdateMetadata)
	api.GET("/chats/:id/snapshot", h.GetSnapshot)
	api.PUT("/chats/:id/snapshot", h.PutSnapshot)
	api.DELETE("/chats/:id/snapshot", h.DeleteSnapshot)
	api.GET("/url-ids/:candidate", h.FreeURLID)

	api.GET("/preview", h.PreviewState)
	api.PUT("/preview/status", h.SetPreviewStatus)
	api.POST("/preview/output", h.PreviewOutput)

	return r
}
