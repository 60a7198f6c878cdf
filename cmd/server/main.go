package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/MADANW/MuhsinAI/internal/config"
	"github.com/MADANW/MuhsinAI/internal/handler"
	infradb "github.com/MADANW/MuhsinAI/internal/infrastructure/database"
	"github.com/MADANW/MuhsinAI/internal/infrastructure/llm"
	"github.com/MADANW/MuhsinAI/internal/probe"
	"github.com/MADANW/MuhsinAI/internal/router"
	"github.com/MADANW/MuhsinAI/internal/usecase"
	dbpkg "github.com/MADANW/MuhsinAI/pkg/database"
	"github.com/MADANW/MuhsinAI/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "muhsinai-server",
	Short: "MuhsinAI conversational scheduling API server",
	Long: `MuhsinAI API server is a high-performance HTTP service built on the
Hertz framework. It turns natural-language prompts into structured schedules
through a language model and keeps a per-user conversation history.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("config loaded successfully", "config_file", cfgFile)
	slog.Info("MuhsinAI API server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz's own logging through slog
	hertzLogger := logger.NewHertzSlogAdapter(slog.Default())
	hlog.SetLogger(hertzLogger)

	// Open database
	db, err := dbpkg.Open(cfg.Database, slog.Default())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// User components
	userRepo := infradb.NewUserRepository(db)
	userUsecase := usecase.NewUserUsecase(userRepo, slog.Default())
	userHandler := handler.NewUserHandler(userUsecase, cfg.JWT, slog.Default())

	slog.Info("user module initialized")

	// Chat components
	modelClient := llm.NewClient(cfg.OpenAI, slog.Default())
	chatRepo := infradb.NewChatRepository(db)
	chatUsecase := usecase.NewChatUsecase(chatRepo, modelClient, slog.Default())
	prober := probe.New(modelClient, slog.Default())
	chatHandler := handler.NewChatHandler(chatUsecase, prober, slog.Default())

	slog.Info("chat module initialized", "model", cfg.OpenAI.Model)

	healthHandler := handler.NewHealthHandler(db)

	// Advisory startup probe: a failure is logged, never fatal.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		status := prober.Check(ctx)
		slog.Info("model probe finished", "state", status.State, "error", status.Error)
	}()

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	// Setup routes
	router.Setup(h, userHandler, chatHandler, healthHandler)

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	if err := dbpkg.Close(db, slog.Default()); err != nil {
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
