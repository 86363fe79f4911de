package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/escola-hub/escola-server/config"
	"github.com/escola-hub/escola-server/internal/application/command"
	"github.com/escola-hub/escola-server/internal/application/query"
	"github.com/escola-hub/escola-server/internal/infrastructure/external/genai"
	"github.com/escola-hub/escola-server/internal/infrastructure/grading"
	"github.com/escola-hub/escola-server/internal/infrastructure/persistence/jsonfile"
	"github.com/escola-hub/escola-server/internal/interface/tcp"
)

func main() {
	// Local development reads a .env file; in production the variables
	// come from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Info("starting",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", string(cfg.App.Environment)))

	store := jsonfile.New(cfg.Storage.Path, logger)

	var calculator grading.Calculator = grading.WeightedCalculator{}
	if cfg.Features.EnableGradingPlugin {
		calculator = grading.Select(cfg.Grading.PluginPath, logger)
	}

	topics := genai.New(genai.Config{
		BaseURL: cfg.Topics.BaseURL,
		Model:   cfg.Topics.Model,
		APIKey:  cfg.Topics.APIKey,
		Timeout: cfg.Topics.RequestTimeout,
	}, logger)

	handlers := tcp.Handlers{
		LoginAdmin: query.NewLoginAdminHandler(query.AdminCredentials{
			User:     cfg.Admin.User,
			Password: cfg.Admin.Password,
		}),
		LoginTeacher:       query.NewLoginTeacherHandler(store),
		LoginStudent:       query.NewLoginStudentHandler(store),
		StudentRecord:      query.NewGetStudentRecordHandler(store),
		RegistryInfo:       query.NewGetRegistryInfoHandler(store),
		ClassStudents:      query.NewGetClassStudentsHandler(store),
		ClassReport:        query.NewGetClassReportHandler(store),
		SubjectAssignments: query.NewGetSubjectAssignmentsHandler(store),
		Deliveries:         query.NewGetAssignmentDeliveriesHandler(store),
		StudentAssignments: query.NewGetStudentAssignmentsHandler(store),
		ListLessons:        query.NewListLessonsHandler(store),
		GenerateTopics:     query.NewGenerateTopicsHandler(topics, cfg.Features.EnableAITopics),

		RegisterClassGroup: command.NewRegisterClassGroupHandler(store),
		RegisterTeacher:    command.NewRegisterTeacherHandler(store),
		RegisterSubject:    command.NewRegisterSubjectHandler(store),
		RegisterStudent:    command.NewRegisterStudentHandler(store),
		RecordAttendance:   command.NewRecordAttendanceHandler(store),
		PublishAssignment:  command.NewPublishAssignmentHandler(store),
		RecordNPScores:     command.NewRecordNPScoresHandler(store),
		ScoreAssignment:    command.NewScoreAssignmentHandler(store),
		SubmitAssignment:   command.NewSubmitAssignmentHandler(store),
		ComputeFinalGrades: command.NewComputeFinalGradesHandler(store, calculator),
		RecordLesson:       command.NewRecordLessonHandler(store),
	}

	dispatcher := tcp.NewDispatcher(handlers, store, logger)
	server := tcp.NewServer(tcp.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		PollInterval: cfg.Server.PollInterval,
	}, dispatcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// newLogger builds the process logger from the observability settings.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Observability.LogFormat) == "text" || cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
