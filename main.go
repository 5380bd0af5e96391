package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"timeclock/config"
	"timeclock/controllers"
	"timeclock/jobs"
	"timeclock/middleware"
	"timeclock/repository"
	"timeclock/routes"
	"timeclock/storage"
	"timeclock/utils"
)

func main() {
	cfg := config.Load()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Printf("Running in %s mode", gin.Mode())

	db := config.NewDatabase(cfg.MongoURI, cfg.MongoDatabase)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Printf("Index bootstrap failed, continuing: %v", err)
	}
	cancel()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	store := repository.NewMongoStore(db)

	var images storage.ImageStore
	s3, err := storage.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.ImageHost, cfg.S3UseSSL, cfg.ImageMaxBytes)
	if err != nil {
		log.Printf("Image storage disabled: %v", err)
	} else {
		images = s3
	}

	var mailer utils.Mailer
	if m := utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.AlertEmailFrom, cfg.AlertEmailTo); m != nil {
		mailer = m
	} else {
		log.Println("SMTP not configured, flagged punch alerts are disabled")
	}

	h := controllers.NewHandler(cfg, store, images, mailer)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	middleware.InitMetrics(prometheus.DefaultRegisterer)
	r.Use(middleware.PrometheusMiddleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", controllers.DeviceHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
		}))
	}

	scheduler, err := jobs.Schedule(h.Cleaner, cfg.CleanupAt, cfg.TimesheetRetentionDays, cfg.ImageRetentionDays)
	if err != nil {
		log.Printf("Daily cleanup not scheduled: %v", err)
	} else {
		defer scheduler.Stop()
		log.Printf("Daily cleanup scheduled at %s %s", cfg.CleanupAt, cfg.Timezone)
	}

	routes.InitializeRoutes(r, h)

	log.Printf("Listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
