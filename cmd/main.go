package main

import (
	"log/slog"
	"os"

	httpapi "github.com/immxrtalbeast/vibe_chat/internal/api/http"
	"github.com/immxrtalbeast/vibe_chat/internal/config"
	"github.com/immxrtalbeast/vibe_chat/internal/repository"
	"github.com/immxrtalbeast/vibe_chat/internal/service"
	"github.com/immxrtalbeast/vibe_chat/lib/logger/slogpretty"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	roomRepo := repository.NewInMemoryRoomRepository()
	userRepo := repository.NewInMemoryUserRepository()

	roomService := service.NewRoomService(roomRepo, cfg.Matching.OfferDelay, log)
	sessionService := service.NewSessionService(userRepo, roomService, log)

	sessionController := httpapi.NewSessionController(sessionService, log)
	statsController := httpapi.NewStatsController(sessionService, roomService)

	router := httpapi.SetupRouter(sessionController, statsController, cfg.HTTP.AllowedOrigins)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
