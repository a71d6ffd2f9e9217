package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edupulse/studentsuccess-api/internal/config"
	"github.com/edupulse/studentsuccess-api/internal/database"
	"github.com/edupulse/studentsuccess-api/internal/handler"
	"github.com/edupulse/studentsuccess-api/internal/middleware"
	"github.com/edupulse/studentsuccess-api/internal/models"
	"github.com/edupulse/studentsuccess-api/internal/repository"
	"github.com/edupulse/studentsuccess-api/internal/router"
	"github.com/edupulse/studentsuccess-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.StudentCourse{},
		&models.StudentGoal{},
		&models.Course{},
		&models.Enrollment{},
		&models.CourseGrade{},
		&models.CourseComment{},
		&models.Performance{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, dashboard caching disabled")
	}

	var events *nats.Conn
	if cfg.NATSURL != "" {
		events, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer events.Close()
	} else {
		logger.Warn().Msg("nats url not configured, event publishing disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	courseService := service.NewCourseService(courseRepo, userRepo, validate, events, cfg.EventSubjectBase, logger)
	studentService := service.NewStudentService(studentRepo, userRepo, courseRepo, validate, logger)
	performanceService := service.NewPerformanceService(performanceRepo, validate, logger)
	dashboardService := service.NewDashboardService(studentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, validate, logger)
	courseHandler := handler.NewCourseHandler(courseService, validate, logger)
	studentHandler := handler.NewStudentHandler(studentService, dashboardService, validate, logger)
	performanceHandler := handler.NewPerformanceHandler(performanceService, validate, logger)
	teacherHandler := handler.NewTeacherHandler(authService, courseService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		CourseHandler:      courseHandler,
		StudentHandler:     studentHandler,
		PerformanceHandler: performanceHandler,
		TeacherHandler:     teacherHandler,
		JWTMiddleware:      middleware.Protected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("server started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
