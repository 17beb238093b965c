package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/database"
	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/internal/calendar"
	"github.com/neiist-dev/activities-backend/internal/member"
	"github.com/neiist-dev/activities-backend/internal/notification"
	"github.com/neiist-dev/activities-backend/internal/notion"
	"github.com/neiist-dev/activities-backend/internal/signup"
	"github.com/neiist-dev/activities-backend/internal/syncjob"
	"github.com/neiist-dev/activities-backend/routes"
	"github.com/neiist-dev/activities-backend/utils"
)

func main() {
	cfg := config.Load()

	database.Connect(cfg)
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis unavailable, caching and rate limiting degraded: %v", err)
	}
	utils.InitializeKafka(cfg)

	db := database.DB
	if err := db.AutoMigrate(
		&member.Member{},
		&activity.Event{},
		&activity.Properties{},
		&signup.Signup{},
		&syncjob.SyncRun{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ Auto-migration failed: %v", err)
	}
	log.Println("✅ Database migrated")

	// Repositories and services
	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)

	memberRepo := member.NewRepository(db)
	memberSvc := member.NewService(memberRepo, cfg, auditSvc)

	activityRepo := activity.NewRepository(db)
	notionClient := notion.NewClient(cfg.NotionAPIKey, cfg.NotionDatabaseID, cfg.ExternalCallLimit)
	activitySvc := activity.NewService(activityRepo, notionClient, auditSvc)

	signupRepo := signup.NewRepository(db)
	signupSvc := signup.NewService(signupRepo, activityRepo, auditSvc)
	signupExporter := signup.NewExporter(signupRepo, activityRepo)

	var mirror *calendar.Mirror
	if cfg.GoogleServiceAccountKey != "" {
		googleAPI, err := calendar.NewGoogleClient(context.Background(), cfg.GoogleServiceAccountKey)
		if err != nil {
			log.Fatalf("❌ Google Calendar setup failed: %v", err)
		}
		mirror = calendar.NewMirror(googleAPI, cfg)
	} else {
		log.Println("⚠️ No service account key, calendar mirroring disabled")
	}

	syncRepo := syncjob.NewRepository(db)
	scheduler := syncjob.NewScheduler(cfg, activitySvc, memberSvc, mirror, syncRepo, auditSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Scheduler setup failed: %v", err)
	}

	notification.NewConsumer(cfg, memberRepo).Start(context.Background())

	// HTTP server
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.Setup(router, cfg, routes.Handlers{
		Activity: activity.NewHandler(activitySvc),
		Signup:   signup.NewHandler(signupSvc, signupExporter),
		Member:   member.NewHandler(memberSvc),
		Calendar: calendar.NewHandler(memberSvc, activitySvc, cfg.CalendarSummaryPrefix),
		Sync:     syncjob.NewHandler(scheduler),
		Audit:    auditlog.NewHandler(auditSvc),
	})

	log.Printf("✅ Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
