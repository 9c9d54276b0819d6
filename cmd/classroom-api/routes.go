package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/handler"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classroom-api/pkg/middleware/requestid"
	"github.com/noah-isme/classroom-api/pkg/signer"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

type services struct {
	auth          *service.AuthService
	directory     *service.DirectoryService
	schools       *service.SchoolService
	students      *service.StudentService
	attendance    *service.AttendanceService
	grades        *service.GradeService
	transfers     *service.TransferService
	messages      *service.MessageService
	comments      *service.CommentService
	notifications *service.NotificationService
	backups       *service.BackupService
	exports       *service.ExportService
	reports       *service.ReportService
	metrics       *service.MetricsService
	streamTokens  *signer.TokenSigner
	store         storage.KeyedStore
}

func newRouter(cfg *config.Config, logr *zap.Logger, s services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(s.metrics))

	metricsHandler := handler.NewMetricsHandler(s.metrics, s.store)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(s.auth)
	directoryHandler := handler.NewDirectoryHandler(s.directory)
	schoolHandler := handler.NewSchoolHandler(s.schools)
	studentHandler := handler.NewStudentHandler(s.students)
	attendanceHandler := handler.NewAttendanceHandler(s.attendance)
	gradeHandler := handler.NewGradeHandler(s.grades)
	transferHandler := handler.NewTransferHandler(s.transfers)
	messageHandler := handler.NewMessageHandler(s.messages)
	commentHandler := handler.NewCommentHandler(s.comments)
	notificationHandler := handler.NewNotificationHandler(s.notifications, s.streamTokens)
	backupHandler := handler.NewBackupHandler(s.backups, 0)
	exportHandler := handler.NewExportHandler(s.exports)
	reportHandler := handler.NewReportHandler(s.reports)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/comments/suggest", commentHandler.Suggest)
	api.GET("/notifications/stream", notificationHandler.Stream)

	secured := api.Group("")
	secured.Use(middleware.JWT(s.auth), middleware.Audit(logr.Named("audit")))

	secured.GET("/auth/me", authHandler.Me)
	secured.PUT("/auth/password", authHandler.ChangePassword)

	secured.GET("/stats", middleware.RequireAdmin(), metricsHandler.Snapshot)

	secured.GET("/teachers", directoryHandler.List)
	admin := secured.Group("/teachers", middleware.RequireAdmin())
	admin.POST("", directoryHandler.Add)
	admin.DELETE("/:email", directoryHandler.Delete)
	admin.POST("/:email/lock", directoryHandler.ToggleLock)
	admin.POST("/:email/reset-password", directoryHandler.ResetPassword)

	secured.GET("/schools", schoolHandler.ListSchools)
	secured.POST("/schools", schoolHandler.CreateSchool)
	secured.DELETE("/schools/:id", schoolHandler.DeleteSchool)
	secured.POST("/schools/reorder", schoolHandler.ReorderSchools)
	secured.GET("/classes", schoolHandler.ListClasses)
	secured.POST("/classes", schoolHandler.CreateClass)
	secured.DELETE("/classes/:id", schoolHandler.DeleteClass)
	secured.POST("/classes/reorder", schoolHandler.ReorderClasses)
	secured.GET("/subjects", schoolHandler.ListSubjects)
	secured.POST("/subjects", schoolHandler.CreateSubject)
	secured.DELETE("/subjects/:id", schoolHandler.DeleteSubject)
	secured.POST("/subjects/reorder", schoolHandler.ReorderSubjects)
	secured.GET("/subjects/:id/grid", schoolHandler.Grid)
	secured.PUT("/subjects/:id/grid", schoolHandler.SaveGrid)
	secured.GET("/settings/sharing", schoolHandler.Sharing)
	secured.PUT("/settings/sharing", schoolHandler.SaveSharing)

	secured.GET("/students", studentHandler.List)
	secured.POST("/students", studentHandler.Create)
	secured.POST("/students/bulk", studentHandler.BulkCreate)
	secured.GET("/students/:id", studentHandler.Get)
	secured.PATCH("/students/:id", studentHandler.Update)
	secured.DELETE("/students/:id", studentHandler.Delete)
	secured.GET("/seating", studentHandler.SeatingChart)
	secured.POST("/seating/assign", studentHandler.AssignSeat)

	secured.GET("/attendance/sessions", attendanceHandler.Sessions)
	secured.POST("/attendance/sessions", attendanceHandler.AddSession)
	secured.PATCH("/attendance/sessions/:id", attendanceHandler.UpdateDate)
	secured.DELETE("/attendance/sessions/:id", attendanceHandler.DeleteSession)
	secured.PUT("/attendance/status", attendanceHandler.SetStatus)
	secured.GET("/attendance/summary", attendanceHandler.Summary)

	secured.GET("/grades", gradeHandler.Sheet)
	secured.PUT("/grades/scores", gradeHandler.SaveScores)
	secured.POST("/grades/columns", gradeHandler.AddColumn)
	secured.POST("/grades/columns/delete", gradeHandler.DeleteColumn)
	secured.POST("/grades/columns/rename", gradeHandler.RenameColumn)
	secured.POST("/grades/columns/reorder", gradeHandler.ReorderColumns)
	secured.PUT("/grades/formulas", gradeHandler.SetFormula)
	secured.POST("/grades/formulas/clear", gradeHandler.ClearFormula)
	secured.POST("/grades/designated", gradeHandler.ToggleDesignatedColumn)
	secured.GET("/grades/distribution", gradeHandler.Distribution)
	secured.GET("/grades/commentary", gradeHandler.Commentary)

	secured.GET("/transfers", transferHandler.Pending)
	secured.POST("/transfers", transferHandler.Offer)
	secured.GET("/transfers/recipients", transferHandler.Recipients)
	secured.POST("/transfers/:id/accept", transferHandler.Accept)
	secured.DELETE("/transfers/:id", transferHandler.Reject)

	secured.POST("/messages", messageHandler.Send)
	secured.GET("/messages/threads", messageHandler.Threads)
	secured.GET("/messages/threads/:id", messageHandler.ViewThread)
	secured.DELETE("/messages/threads/:id", messageHandler.DeleteThread)
	secured.GET("/groups", messageHandler.Groups)
	secured.POST("/groups", messageHandler.CreateGroup)
	secured.DELETE("/groups/:id", messageHandler.DeleteGroup)

	secured.GET("/comments", commentHandler.Bank)
	secured.GET("/comments/:name", commentHandler.Category)
	secured.POST("/comments", commentHandler.Add)
	secured.POST("/comments/delete", commentHandler.Remove)

	secured.GET("/notifications", notificationHandler.Badges)
	secured.POST("/notifications/stream-token", notificationHandler.StreamToken)

	secured.GET("/backup", backupHandler.Export)
	secured.POST("/backup", backupHandler.Import)
	secured.GET("/backup/classes/:id", backupHandler.ExportClass)

	secured.GET("/export/grades", exportHandler.GradeSheet)
	secured.GET("/export/attendance", exportHandler.AttendanceSheet)

	secured.GET("/reports/classes/:id", reportHandler.ClassReport)

	return r
}
