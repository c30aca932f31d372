package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prsharma/careerchat/internal/api"
	"github.com/prsharma/careerchat/internal/config"
	"github.com/prsharma/careerchat/internal/core"
	"github.com/prsharma/careerchat/internal/notify"
	"github.com/prsharma/careerchat/internal/profile"
	"github.com/prsharma/careerchat/internal/store"
)

func main() {
	config.LoadConfig()

	logger, err := newLogger(config.AppConfig.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbStore.Close()

	persona, err := profile.Load(config.AppConfig.ProfileDir, config.AppConfig.PersonaName)
	if err != nil {
		logger.Fatal("Failed to load profile", zap.Error(err))
	}

	llmService := core.NewLLMService(config.AppConfig.OpenAIAPIKey, logger)

	var notifier notify.Notifier
	if config.AppConfig.PushoverToken != "" && config.AppConfig.PushoverUser != "" {
		notifier = notify.NewPushoverNotifier(config.AppConfig.PushoverToken, config.AppConfig.PushoverUser)
	} else {
		logger.Warn("Pushover credentials not set, notifications will only be logged")
		notifier = &notify.NopNotifier{Logger: logger}
	}

	ragService, err := core.NewRAGService(context.Background(), dbStore, llmService, persona.Text(),
		config.AppConfig.ChunkMaxChars, config.AppConfig.ChunkOverlap, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RAG service", zap.Error(err))
	}

	chatService := core.NewChatService(dbStore, ragService, llmService, notifier, persona,
		config.AppConfig.RetrievalTopK, logger)

	apiHandler := api.NewAPIHandler(chatService)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting gracefully")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
