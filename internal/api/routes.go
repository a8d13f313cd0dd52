package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/metrics"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Auth       service.AuthService
	Trainer    service.TrainerService
	Client     service.ClientService
	Exercise   service.ExerciseService
	Program    service.ProgramService
	Assignment service.AssignmentService
	Tracking   service.TrackingService
	Workout    service.WorkoutService
	Progress   service.ProgressService

	Appointment service.AppointmentService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	trainerHandler := NewTrainerHandler(svc.Trainer, svc.Progress)
	programHandler := NewProgramHandler(svc.Program)
	assignmentHandler := NewAssignmentHandler(svc.Assignment, svc.Workout)
	instanceHandler := NewInstanceHandler(svc.Tracking, svc.Client)
	clientHandler := NewClientHandler(svc.Progress, svc.Tracking, svc.Workout)
	appointmentHandler := NewAppointmentHandler(svc.Appointment)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.GetTrainerExercises)
			// Clients read exercises referenced by their instances
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
		}

		// --- Trainer Specific Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerApiGroup.GET("/clients/:clientId/dashboard", trainerHandler.GetClientDashboard)

			// --- Program Templates ---
			trainerApiGroup.POST("/programs", programHandler.CreateProgram)
			trainerApiGroup.GET("/programs", programHandler.GetPrograms)
			trainerApiGroup.GET("/programs/:programId", programHandler.GetProgram)
			trainerApiGroup.PUT("/programs/:programId", programHandler.UpdateProgram)
			trainerApiGroup.DELETE("/programs/:programId", programHandler.DeleteProgram)
			trainerApiGroup.POST("/programs/:programId/duplicate", programHandler.DuplicateProgram)

			// --- Assignments ---
			trainerApiGroup.POST("/assignments", assignmentHandler.AssignProgram)
			trainerApiGroup.POST("/assignments/bulk", assignmentHandler.BulkAssignProgram)
			trainerApiGroup.GET("/assignments", assignmentHandler.ListAssignments)
			trainerApiGroup.GET("/assignments/:assignmentId", assignmentHandler.GetAssignment)
			trainerApiGroup.PATCH("/assignments/:assignmentId/status", assignmentHandler.UpdateAssignmentStatus)
			trainerApiGroup.PATCH("/assignments/:assignmentId/notes", assignmentHandler.UpdateAssignmentNotes)
			trainerApiGroup.DELETE("/assignments/:assignmentId", assignmentHandler.DeleteAssignment)
			trainerApiGroup.GET("/assignments/:assignmentId/workouts", assignmentHandler.GetWorkoutLogs)
			trainerApiGroup.GET("/assignments/:assignmentId/summary", assignmentHandler.GetWorkoutSummary)

			// --- Exercise Instances ---
			trainerApiGroup.GET("/instances", instanceHandler.ListInstances)
			trainerApiGroup.GET("/instances/:instanceId", instanceHandler.GetInstance)
			trainerApiGroup.PATCH("/instances/:instanceId/status", instanceHandler.UpdateInstanceStatus)
			trainerApiGroup.PUT("/instances/:instanceId/feedback", instanceHandler.SubmitTrainerFeedback)
			trainerApiGroup.GET("/instances/:instanceId/video", instanceHandler.GetVideoDownloadURL)

			// --- Appointments ---
			trainerApiGroup.POST("/appointments", appointmentHandler.ScheduleAppointment)
			trainerApiGroup.GET("/appointments", appointmentHandler.ListAppointments)
			trainerApiGroup.GET("/appointments/today", appointmentHandler.GetTodayAppointments)
			trainerApiGroup.GET("/appointments/:appointmentId", appointmentHandler.GetAppointment)
			trainerApiGroup.PUT("/appointments/:appointmentId", appointmentHandler.RescheduleAppointment)
			trainerApiGroup.PATCH("/appointments/:appointmentId/status", appointmentHandler.UpdateAppointmentStatus)
			trainerApiGroup.DELETE("/appointments/:appointmentId", appointmentHandler.DeleteAppointment)
		}

		// --- Client Specific Routes ---
		clientApiGroup := protected.Group("/client")
		clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientApiGroup.GET("/dashboard", clientHandler.GetDashboard)
			clientApiGroup.GET("/schedule", clientHandler.GetWeeklySchedule)
			clientApiGroup.POST("/workouts", clientHandler.LogWorkout)

			clientApiGroup.GET("/assignments", assignmentHandler.ListAssignments)
			clientApiGroup.GET("/assignments/:assignmentId", assignmentHandler.GetAssignment)
			clientApiGroup.GET("/assignments/:assignmentId/workouts", assignmentHandler.GetWorkoutLogs)
			clientApiGroup.GET("/assignments/:assignmentId/summary", assignmentHandler.GetWorkoutSummary)

			clientApiGroup.GET("/instances", instanceHandler.ListInstances)
			clientApiGroup.GET("/instances/:instanceId", instanceHandler.GetInstance)
			clientApiGroup.PATCH("/instances/:instanceId/status", instanceHandler.UpdateInstanceStatus)
			clientApiGroup.POST("/instances/:instanceId/upload-url", instanceHandler.RequestUploadURL)
			clientApiGroup.POST("/instances/:instanceId/upload-confirm", instanceHandler.ConfirmUpload)
			clientApiGroup.GET("/instances/:instanceId/video", instanceHandler.GetVideoDownloadURL)

			clientApiGroup.GET("/appointments", appointmentHandler.ListAppointments)
			clientApiGroup.GET("/appointments/:appointmentId", appointmentHandler.GetAppointment)
		}
	}
}
