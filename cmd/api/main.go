package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"advisory-portal/internal/cleanup"
	"advisory-portal/internal/config"
	"advisory-portal/internal/database"
	"advisory-portal/internal/handlers"
	"advisory-portal/internal/models"
	"advisory-portal/internal/notify"
	"advisory-portal/internal/ratelimit"
	"advisory-portal/internal/rera"
	"advisory-portal/internal/scheduler"
	"advisory-portal/internal/scoring"
	"advisory-portal/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	db           *database.DB
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
	queueWorker  *scheduler.QueueWorker
	verifier     *rera.Verifier
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/advisory_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		// Get port as string, handle 0 as empty
		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "advisory_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "advisory_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "advisory_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		// Initialize schema with GORM AutoMigrate
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using PostgreSQL (legacy listing store, read-only advisory features)")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "advisory_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "advisory_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "advisory_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiter for registry-facing endpoints
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.Rera.MaxRequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.Rera.MaxRequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("FRONTEND_ORIGIN", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes available on both database backends
	r.GET("/health", healthCheck)
	r.GET("/api/properties", getProperties)
	r.GET("/api/properties/:id", getProperty)

	r.GET("/api/search", searchProperties)
	r.GET("/api/search/facets", getSearchFacets)
	r.POST("/api/search/reindex", reindexAllProperties)
	r.GET("/api/filter", filterProperties)

	r.GET("/api/ratelimit/stats", getRateLimitStats)
	r.GET("/api/queue/stats", getQueueStats)

	// Advisory features require the GORM store
	if gormDB != nil {
		scale := scoring.NewScale(appConfig.Grading.Thresholds)

		// Registry verification stack
		registryLimiter := ratelimit.NewRegistryLimiter(1, appConfig.Rera.GetBulkDelay(), 300*time.Millisecond)
		breaker := rera.NewCircuitBreaker(2, 30*time.Minute)
		client := rera.NewClient(rera.ClientConfig{
			BaseURL:          appConfig.Rera.RegistryBaseURL,
			Timeout:          appConfig.Rera.GetTimeout(),
			MaxRetries:       appConfig.Rera.MaxRetries,
			RetryDelay:       appConfig.Rera.GetRetryDelay(),
			UserAgent:        appConfig.Rera.UserAgent,
			HeadlessFallback: appConfig.Rera.HeadlessFallback,
		})
		verifier = rera.NewVerifier(gormDB.DB(), client, registryLimiter, breaker, rera.VerifierConfig{
			BulkDelay:       appConfig.Rera.GetBulkDelay(),
			StalenessWindow: appConfig.Rera.GetStalenessWindow(),
			Location:        appConfig.GetLocation(),
		})

		// Lead nurturing
		sender := notify.NewWhatsAppSender(appConfig.Nurture)
		nurtureEngine := notify.NewEngine(gormDB.DB(), sender)

		// Scheduler and verification queue worker
		appScheduler = scheduler.NewScheduler(gormDB.DB(), verifier, nurtureEngine, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()

		queueWorker = scheduler.NewQueueWorker(gormDB.DB(), verifier)
		queueWorker.Start()
		defer queueWorker.Stop()
		log.Println("Queue worker started")

		// Property management
		r.POST("/api/properties", createProperty)
		r.PUT("/api/properties/:id", updateProperty)
		r.DELETE("/api/properties/:id", removeProperty)

		// Property scoring
		scoreHandler := handlers.NewScoreHandler(gormDB, scale)
		r.GET("/api/score-catalog", scoreHandler.GetCatalog)
		r.GET("/api/property-scores", scoreHandler.ListScores)
		r.GET("/api/property-scores-stats", scoreHandler.GetScoringStats)
		r.GET("/api/property-scores/:id", scoreHandler.GetScore)
		r.POST("/api/property-scores/:id", scoreHandler.SaveScore)
		r.PATCH("/api/property-scores/:id", scoreHandler.SaveScore)
		r.DELETE("/api/property-scores/:id", scoreHandler.DeleteScore)

		// Legal audit reports and customer assignments
		reportHandler := handlers.NewReportHandler(gormDB)
		r.GET("/api/legal-audit-reports", reportHandler.ListReports)
		r.POST("/api/legal-audit-reports", reportHandler.CreateReport)
		r.GET("/api/legal-audit-reports-stats", reportHandler.GetReportStats)
		r.GET("/api/legal-audit-reports/:id", reportHandler.GetReport)
		r.PUT("/api/legal-audit-reports/:id", reportHandler.UpdateReport)
		r.DELETE("/api/legal-audit-reports/:id", reportHandler.DeleteReport)
		r.POST("/api/legal-audit-reports/:id/assign-customer", reportHandler.AssignCustomer)
		r.DELETE("/api/legal-audit-reports/:id/remove-customer/:customerId", reportHandler.RemoveCustomer)
		r.GET("/api/legal-audit-reports/:id/assignments", reportHandler.ListAssignments)

		r.GET("/api/customers", reportHandler.ListCustomers)
		r.POST("/api/customers", reportHandler.CreateCustomer)
		r.GET("/api/customers/:id/reports", reportHandler.ListCustomerReports)

		// City and zone reference data
		refHandler := handlers.NewReferenceHandler(gormDB)
		r.GET("/api/cities", refHandler.ListCities)
		r.POST("/api/cities", refHandler.SaveCity)
		r.DELETE("/api/cities/:id", refHandler.DeleteCity)
		r.GET("/api/zones", refHandler.ListZones)
		r.POST("/api/zones", refHandler.SaveZone)
		r.DELETE("/api/zones/:id", refHandler.DeleteZone)

		// RERA registry verification (rate limited: these hit the registry)
		reraHandler := handlers.NewReraHandler(gormDB, verifier)
		r.POST("/api/rera-data/verify", rateLimitMiddleware(), reraHandler.VerifySingle)
		r.POST("/api/rera-data/bulk-verify", rateLimitMiddleware(), reraHandler.VerifyBulk)
		r.POST("/api/rera-data/auto-sync", rateLimitMiddleware(), reraHandler.TriggerAutoSync)
		r.GET("/api/rera-data/status-summary", reraHandler.GetStatusSummary)
		r.GET("/api/rera-data/records", reraHandler.ListRecords)
		r.GET("/api/rera-data/records/:reraId", reraHandler.GetRecord)
		r.GET("/api/rera-data/records/:reraId/history", reraHandler.GetHistory)
		r.GET("/api/rera-data/changes/recent", reraHandler.GetRecentChanges)

		// Lead capture and nurturing
		leadHandler := handlers.NewLeadHandler(gormDB, nurtureEngine)
		r.POST("/api/leads", leadHandler.CaptureLead)
		r.GET("/api/leads", leadHandler.ListLeads)
		r.PATCH("/api/leads/:id/stage", leadHandler.UpdateStage)
		r.POST("/api/nurturing/run", leadHandler.RunNurtureCycle)
		r.GET("/api/nurturing/rules", leadHandler.GetNurtureRules)
		r.GET("/api/nurturing/logs", leadHandler.GetNurtureLogs)

		// Admin API routes (requires authentication in production)
		adminHandler := handlers.NewAdminHandler(gormDB, appScheduler, queueWorker, cleanup.CleanupConfig{
			RetentionDays:    appConfig.Cleanup.RetentionDays,
			MaxDeletionCount: appConfig.Cleanup.MaxDeletionCount,
		})

		admin := r.Group("/api/admin")
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/activity", adminHandler.GetRecentActivity)
			admin.GET("/queue/stats", adminHandler.GetQueueStats)
			admin.POST("/auto-sync/trigger", adminHandler.TriggerAutoSync)
			admin.POST("/cleanup/run", adminHandler.RunCleanup)
			admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
		}

		log.Println("Advisory API routes registered")
	} else {
		log.Println("Advisory features disabled: MySQL/GORM store required")
	}

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getProperties(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", "created_at")

	var properties []models.Property
	var err error

	if gormDB != nil {
		properties, err = gormDB.GetPropertiesWithSort(sortBy)
	} else {
		properties, err = db.GetAllProperties()
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func getProperty(c *gin.Context) {
	id := c.Param("id")
	var property *models.Property
	var err error

	if gormDB != nil {
		property, err = gormDB.GetPropertyByID(id)
	} else {
		property, err = db.GetPropertyByID(id)
	}

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

type propertyRequest struct {
	Title        string   `json:"title" binding:"required"`
	ImageURL     string   `json:"image_url"`
	CityID       *uint    `json:"city_id"`
	ZoneID       *uint    `json:"zone_id"`
	Price        *int     `json:"price"`
	Area         *float64 `json:"area"`
	Bedrooms     *int     `json:"bedrooms"`
	PropertyType string   `json:"property_type"`
	Address      string   `json:"address"`
	Developer    string   `json:"developer"`
	ReraNumber   string   `json:"rera_number"`
}

func createProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	property := &models.Property{
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		CityID:       req.CityID,
		ZoneID:       req.ZoneID,
		Price:        req.Price,
		Area:         req.Area,
		Bedrooms:     req.Bedrooms,
		PropertyType: req.PropertyType,
		Address:      req.Address,
		Developer:    req.Developer,
		ReraNumber:   req.ReraNumber,
	}

	if err := gormDB.SaveProperty(property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Keep the search index in step with the store
	if err := searchClient.IndexProperty(property); err != nil {
		log.Printf("Warning: Failed to index property %s: %v", property.ID, err)
	}

	c.JSON(http.StatusCreated, property)
}

func updateProperty(c *gin.Context) {
	id := c.Param("id")

	existing, err := gormDB.GetPropertyByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	existing.Title = req.Title
	existing.ImageURL = req.ImageURL
	existing.CityID = req.CityID
	existing.ZoneID = req.ZoneID
	existing.Price = req.Price
	existing.Area = req.Area
	existing.Bedrooms = req.Bedrooms
	existing.PropertyType = req.PropertyType
	existing.Address = req.Address
	existing.Developer = req.Developer
	existing.ReraNumber = req.ReraNumber

	if err := gormDB.SaveProperty(existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.IndexProperty(existing); err != nil {
		log.Printf("Warning: Failed to index property %s: %v", existing.ID, err)
	}

	c.JSON(http.StatusOK, existing)
}

func removeProperty(c *gin.Context) {
	id := c.Param("id")

	if _, err := gormDB.GetPropertyByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	// Logical deletion; cleanup physically deletes after retention
	if err := gormDB.MarkPropertyAsRemoved(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.DeleteProperty(id); err != nil {
		log.Printf("Warning: Failed to remove property %s from index: %v", id, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property removed"})
}

func searchProperties(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// If no query, get all from database
	if query == "" {
		var properties []models.Property
		var err error

		if gormDB != nil {
			properties, err = gormDB.GetAllProperties()
		} else {
			properties, err = db.GetAllProperties()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, properties)
		return
	}

	// Search using Meilisearch
	properties, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func filterProperties(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	params := search.FilterParams{
		Query: query,
		Limit: limit,
	}

	// Price range
	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		if minPrice, err := strconv.Atoi(minPriceStr); err == nil {
			params.MinPrice = &minPrice
		}
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		if maxPrice, err := strconv.Atoi(maxPriceStr); err == nil {
			params.MaxPrice = &maxPrice
		}
	}

	// Bedrooms
	for _, bStr := range c.QueryArray("bedrooms") {
		if b, err := strconv.Atoi(bStr); err == nil {
			params.Bedrooms = append(params.Bedrooms, b)
		}
	}

	// Property types
	if types := c.QueryArray("property_type"); len(types) > 0 {
		params.PropertyTypes = types
	}

	// Location
	if cityStr := c.Query("city_id"); cityStr != "" {
		if cityID, err := strconv.ParseUint(cityStr, 10, 32); err == nil {
			id := uint(cityID)
			params.CityID = &id
		}
	}
	if zoneStr := c.Query("zone_id"); zoneStr != "" {
		if zoneID, err := strconv.ParseUint(zoneStr, 10, 32); err == nil {
			id := uint(zoneID)
			params.ZoneID = &id
		}
	}

	if sortBy := c.Query("sort_by"); sortBy != "" {
		params.SortBy = sortBy
	}

	properties, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func getSearchFacets(c *gin.Context) {
	facetsParam := c.DefaultQuery("facets", "property_type,bedrooms")
	facets := strings.Split(facetsParam, ",")

	facetDist, err := searchClient.GetFacets(facets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facets": facetDist,
	})
}

// reindexAllProperties re-indexes all properties from database to Meilisearch
func reindexAllProperties(c *gin.Context) {
	log.Println("[Reindex] Starting full reindex of all properties")

	var properties []models.Property
	var err error

	if gormDB != nil {
		properties, err = gormDB.GetAllProperties()
	} else {
		properties, err = db.GetAllProperties()
	}

	if err != nil {
		log.Printf("[Reindex] Error fetching properties from database: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch properties from database",
		})
		return
	}

	if err := searchClient.IndexProperties(properties); err != nil {
		log.Printf("[Reindex] Error indexing properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to index properties",
		})
		return
	}

	log.Printf("[Reindex] Indexed %d properties", len(properties))
	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex completed",
		"indexed": len(properties),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// rateLimitMiddleware returns a Gin middleware that enforces rate limiting
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.AllowRequest() {
			stats := rateLimiter.GetStats()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getRateLimitStats returns current rate limiter statistics
func getRateLimitStats(c *gin.Context) {
	stats := rateLimiter.GetStats()
	c.JSON(http.StatusOK, stats)
}

// getQueueStats returns current queue worker statistics
func getQueueStats(c *gin.Context) {
	if queueWorker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Queue worker is not available (requires MySQL/GORM)",
		})
		return
	}

	stats := queueWorker.GetQueueStats()
	c.JSON(http.StatusOK, stats)
}
