package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"barter/pkg/circuitbreaker"
	"barter/pkg/config"
	"barter/pkg/database"
	"barter/pkg/logger"
	"barter/pkg/models"
	"barter/pkg/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	st      *store.Store
	breaker *circuitbreaker.CircuitBreaker
	log     = zap.NewNop().Sugar()
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log, err = logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Infow("starting barter service", "environment", cfg.Environment)

	db, err := database.Open(context.Background(), cfg, log, logger.Gorm(log, cfg.LogLevel))
	if err != nil {
		log.Fatalw("database setup failed", "error", err)
	}

	st = store.New(db, store.WithContractDocRoot(cfg.ContractDocRoot))
	breaker = circuitbreaker.New(cfg.BreakerMaxFailures, cfg.BreakerTimeout, cfg.BreakerWindow, store.IsStorageFailure)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := setupRouter()

	log.Infow("barter service listening", "address", cfg.ServerAddress)
	if err := server.Run(cfg.ServerAddress); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(requestLogger())
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")

	api.POST("/companies", createCompany)
	api.GET("/companies", listCompanies)
	api.GET("/companies/:id", getCompany)
	api.PATCH("/companies/:id", updateCompany)
	api.DELETE("/companies/:id", deleteCompany)
	api.GET("/companies/:id/services", getCompanyServices)
	api.GET("/companies/:id/deals", getCompanyDeals)
	api.GET("/companies/:id/reviews/written", getReviewsWritten)
	api.GET("/companies/:id/reviews/received", getReviewsReceived)
	api.GET("/companies/:id/rating", getCompanyRating)

	api.POST("/services", createService)
	api.GET("/services", listServices)
	api.GET("/services/:id", getService)
	api.PATCH("/services/:id", updateService)
	api.POST("/services/:id/deactivate", deactivateService)
	api.DELETE("/services/:id", deleteService)
	api.GET("/services/:id/deals", getServiceDeals)

	api.POST("/deals", createDeal)
	api.GET("/deals", listDeals)
	api.GET("/deals/:id", getDeal)
	api.PATCH("/deals/:id", updateDeal)
	api.DELETE("/deals/:id", deleteDeal)
	api.GET("/deals/:id/contracts", getDealContracts)
	api.GET("/deals/:id/reviews", getDealReviews)

	api.POST("/contracts", createContract)
	api.GET("/contracts/:id", getContract)
	api.PATCH("/contracts/:id", updateContract)
	api.DELETE("/contracts/:id", deleteContract)

	api.POST("/reviews", createReview)
	api.GET("/reviews/:id", getReview)
	api.PATCH("/reviews/:id", updateReview)
	api.DELETE("/reviews/:id", deleteReview)

	r.GET("/manage/health", healthCheck)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		log.Infow("request",
			"requestID", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"clientIP", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// guarded runs a store call through the circuit breaker.
func guarded(fn func() error) error {
	if breaker == nil {
		return fn()
	}
	return breaker.Execute(fn)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrUniqueViolation), errors.Is(err, models.ErrForeignKeyViolation):
		status = http.StatusConflict
	case errors.Is(err, models.ErrCheckViolation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotNullViolation):
		status = http.StatusBadRequest
	case errors.Is(err, circuitbreaker.ErrOpen):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func uintQuery(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func boolQuery(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	return &v, true
}

func pageQuery(c *gin.Context) (store.Page, bool) {
	page := store.Page{}
	for key, dest := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
			return page, false
		}
		*dest = v
	}
	return page, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return false
	}
	return true
}

func healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := st.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	state := circuitbreaker.StateClosed
	if breaker != nil {
		state = breaker.State()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"breaker": state.String(),
	})
}
