package main

import (
	"log"
	"time"

	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	authRoutes "lms/routers/authRoutes"
	certificateRoutes "lms/routers/certificateRoutes"
	courseRoutes "lms/routers/courseRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Outbound email
	dispatcher := utils.NewEmailDispatcher(
		config.AppConfig.SendgridApiKey,
		config.AppConfig.EmailSender,
		config.AppConfig.EmailFromName,
	)
	if err := dispatcher.Verify(); err != nil {
		log.Printf("Warning: email dispatcher not fully configured: %v", err)
	}
	defer dispatcher.Close()
	utils.Mail = dispatcher

	// Certificate artifact rendering
	controllers.Artifacts = utils.NewPNGCertificateGenerator(
		config.AppConfig.BaseURL,
		config.AppConfig.PublicDir,
		config.AppConfig.CertFontPath,
		config.AppConfig.CertLogoPath,
		time.Duration(config.AppConfig.ArtifactTimeoutSec)*time.Second,
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve certificate artifacts and other static files
	app.Static("/", config.AppConfig.PublicDir)

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	certificateRoutes.SetupCertificateRoutes(app)

	// Approval reminder cron
	scheduler := utils.InitializeCertificateSchedulers()
	defer scheduler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
