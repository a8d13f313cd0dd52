package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/fitness-coach/internal/api"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/events"
	"alcyxob/fitness-coach/internal/logging"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/memory"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"alcyxob/fitness-coach/internal/service"
	"alcyxob/fitness-coach/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// repositories is one storage backend seen through the repository interfaces.
type repositories struct {
	users        repository.UserRepository
	exercises    repository.ExerciseRepository
	programs     repository.ProgramRepository
	assignments  repository.AssignmentRepository
	instances    repository.InstanceRepository
	workoutLogs  repository.WorkoutLogRepository
	uploads      repository.UploadRepository
	appointments repository.AppointmentRepository
	close        func()
}

// @title Fitness Coach API
// @version 1.0
// @description API for trainers to build workout programs, assign them to clients and follow their progress.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Info("starting fitness coach server")

	// --- Repositories ---
	repos, err := openRepositories(cfg.Database)
	if err != nil {
		log.Fatalf("could not open %s database: %v", cfg.Database.Driver, err)
	}
	defer repos.close()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3)
	if err != nil {
		log.Fatalf("failed to initialize S3 storage: %v", err)
	}

	// --- Events ---
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.WithField("topic", cfg.Kafka.Topic).Info("publishing assignment events to kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("failed to close event publisher: %v", err)
		}
	}()

	// --- Initialize Services ---
	assignmentService := service.NewAssignmentService(repos.users, repos.programs, repos.assignments, repos.instances, publisher)
	services := api.Services{
		Auth:       service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Trainer:    service.NewTrainerService(repos.users),
		Client:     service.NewClientService(repos.instances, repos.uploads, fileStorage),
		Exercise:   service.NewExerciseService(repos.exercises),
		Program:    service.NewProgramService(repos.programs, repos.exercises),
		Assignment: assignmentService,
		Tracking:   service.NewTrackingService(repos.instances, assignmentService),
		Workout:    service.NewWorkoutService(repos.assignments, repos.workoutLogs),
		Progress:   service.NewProgressService(repos.users, repos.programs, repos.assignments, repos.workoutLogs),

		Appointment: service.NewAppointmentService(repos.users, repos.appointments),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	if gin.IsDebugging() {
		router.Use(gin.Logger())
	}
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	log.Info("server exiting")
}

func openRepositories(cfg config.DatabaseConfig) (*repositories, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store, data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			exercises:    store.Exercises(),
			programs:     store.Programs(),
			assignments:  store.Assignments(),
			instances:    store.Instances(),
			workoutLogs:  store.WorkoutLogs(),
			uploads:      store.Uploads(),
			appointments: store.Appointments(),
			close:        func() {},
		}, nil

	case config.DriverMongo:
		dbClient, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		appDB := dbClient.Database(cfg.Name)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
				log.Errorf("index creation finished with errors: %v", err)
				return
			}
			log.Info("database indexes ensured")
		}()

		return &repositories{
			users:        mongo.NewMongoUserRepository(appDB),
			exercises:    mongo.NewMongoExerciseRepository(appDB),
			programs:     mongo.NewMongoProgramRepository(appDB),
			assignments:  mongo.NewMongoAssignmentRepository(appDB),
			instances:    mongo.NewMongoInstanceRepository(appDB),
			workoutLogs:  mongo.NewMongoWorkoutLogRepository(appDB),
			uploads:      mongo.NewMongoUploadRepository(appDB),
			appointments: mongo.NewMongoAppointmentRepository(appDB),
			close: func() {
				if err := mongo.DisconnectDB(dbClient); err != nil {
					log.Errorf("failed to disconnect MongoDB: %v", err)
				}
			},
		}, nil
	}
	return nil, errors.New("unknown database driver " + cfg.Driver)
}
