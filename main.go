package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatroom-service/internal/db"
	"chatroom-service/internal/files"
	"chatroom-service/internal/handlers"
	"chatroom-service/internal/middleware"
	"chatroom-service/internal/observability"
	"chatroom-service/internal/rabbitmq"
	"chatroom-service/internal/room"
	"chatroom-service/internal/settings"
	"chatroom-service/internal/telemetry"
	"chatroom-service/internal/ws"
)

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		provider, err := observability.InitTracer(context.Background(), "chatroom-service", endpoint)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer provider.Shutdown(context.Background())
		}
	}

	amqpURL := getEnv("AMQP_URL", "")
	if eventPublisher, err := observability.NewAMQPPublisher(amqpURL, getEnv("EVENTS_EXCHANGE", "room_events")); err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(amqpURL, getEnv("AUDIT_EXCHANGE", "audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.chatroom", "chatroom-service", getEnv("ENVIRONMENT", "dev"))

	settingsRepo := settings.NewRepo(database)
	fileRepo := files.NewRepo(database)

	blobStore, err := files.NewBlobStore(getEnv("FILES_DIR", "./data/files"))
	if err != nil {
		log.Fatalf("failed to init blob store: %v", err)
	}

	limits := room.DefaultLimits()
	limits.MaxConnections = getEnvInt("MAX_CONNECTIONS", limits.MaxConnections)
	limits.MaxConnsPerOrigin = getEnvInt("MAX_CONNS_PER_ORIGIN", limits.MaxConnsPerOrigin)

	chatRoom := room.New(func() (string, error) {
		return settingsRepo.RoomPassword(context.Background())
	}, limits)

	hub := ws.NewHub()
	roomWS := ws.NewRoomWebSocketHandler(hub, chatRoom, settingsRepo)

	fileHandler := handlers.NewFileHandler(fileRepo, blobStore, hub, settingsRepo, emitter)
	adminHandler := handlers.NewAdminHandler(settingsRepo, emitter)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chatroom-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/ws", roomWS.Handle)

	router.GET("/files", fileHandler.List)
	router.GET("/files/search", fileHandler.Search)
	router.GET("/files/categories", fileHandler.Categories)
	router.POST("/files", fileHandler.Upload)
	router.GET("/files/:file_id/content", fileHandler.Download)
	router.DELETE("/files/:file_id", fileHandler.Delete)

	router.GET("/announcement", adminHandler.Announcement)
	router.GET("/site-status", adminHandler.SiteStatus)

	adminAuth := middleware.AdminAuth(settingsRepo)
	admin := router.Group("/admin", adminAuth)
	admin.PUT("/announcement", adminHandler.SetAnnouncement)
	admin.PUT("/site-enabled", adminHandler.SetSiteEnabled)
	admin.PUT("/room-password", adminHandler.SetRoomPassword)
	admin.PUT("/delete-password", adminHandler.SetDeletePassword)
	admin.PUT("/admin-password", adminHandler.SetAdminPassword)

	handlers.RegisterDebugRoutes(router, emitter, getEnv("DEBUG_ROUTES", "") == "true")

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
