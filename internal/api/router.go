package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/handlers"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/middleware"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/cache"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/email"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/tasks"
)

// Services are the dependencies of the public API.
// Notifier may be nil, in which case no emails are queued.
type Services struct {
	Submission  services.ISubmissionService
	Negotiation services.INegotiationService
	Notifier    tasks.IInquiryNotifier
}

// SetupRouter configures and returns the main Gin engine.
// The caller owns rateLimiter and closes it on shutdown.
func SetupRouter(cfg *config.Config, svc Services, rateLimiter *middleware.RateLimiterMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware(cfg.AppBaseURL))
	if rateLimiter != nil {
		r.Use(rateLimiter.Limit())
	}

	jsonApiHandler := handlers.NewJsonApiHandler(cfg, svc.Submission, svc.Negotiation, svc.Notifier)
	restInquiryHandler := handlers.NewRestInquiryHandler(svc.Negotiation)

	v1 := r.Group("/v1")
	{
		// Role checks for JSON API methods happen inside the handler.
		v1.POST("/api", jsonApiHandler.HandleRequest)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		inquiries := v1.Group("/inquiry")
		inquiries.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			inquiries.GET("/seller", middleware.RoleMiddleware(models.RoleSeller), restInquiryHandler.ListForSeller)
			inquiries.GET("/buyer", middleware.RoleMiddleware(models.RoleBuyer), restInquiryHandler.ListForBuyer)
			inquiries.GET("/:id", restInquiryHandler.GetInquiry)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine.
// rdb may be nil when mock services are disabled; getTestEmail then reports an error.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			if rdb == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Mock email capture is not enabled"})
				return
			}
			var args []string // Expect ["template_id", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateID, email]"})
				return
			}
			getTestEmail(c, rdb, email.MockEmailKey(args[1], args[0]))
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// getTestEmail polls Redis briefly for a captured email and deletes it once read.
func getTestEmail(c *gin.Context, store cache.Store, key string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var captured email.MockEmail
	found := false
	for i := 0; i < 10; i++ { // Poll up to ~2 seconds
		ok, err := cache.GetJSON(ctx, store, key, &captured)
		if err != nil {
			log.Printf("Service API: Error getting key %s from Redis: %v", key, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		if ok {
			found = true
			store.Del(ctx, key)
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", key)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": captured})
}
