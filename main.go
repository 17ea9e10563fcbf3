package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	openai "github.com/sashabaranov/go-openai"

	"vidscribe/config"
	"vidscribe/handlers"
	"vidscribe/internal/asr"
	"vidscribe/internal/ffmpeg"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/structuring"
	"vidscribe/internal/worker"
	"vidscribe/middleware"
)

func main() {
	config.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		config.Log.Fatalf("Failed to load configuration: %v", err)
	}

	apiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		apiCfg.BaseURL = cfg.OpenAIBaseURL
	}
	api := openai.NewClientWithConfig(apiCfg)

	extractor := ffmpeg.NewExtractor(cfg.TempDir, config.Log)
	extractor.BinaryPath = cfg.FFmpegPath

	sessions := pipeline.NewManager(
		extractor,
		asr.NewClient(api, cfg.WhisperModel),
		structuring.NewClient(api, cfg.ChatModel),
		config.Log,
	)

	dispatcher := worker.NewDispatcher(cfg.Workers, cfg.JobQueueSize, config.Log)
	dispatcher.Run()

	h := handlers.NewApplicationHandler(config.Log, extractor, sessions, dispatcher, cfg.MaxUploadBytes())

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes()) + (1 << 20), // headroom for multipart framing
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "vidscribe is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	apiV1.Post("/audio/extract", h.ExtractAudio)

	apiV1.Post("/transcriptions", h.CreateTranscription)
	apiV1.Get("/transcriptions/:id", h.GetTranscription)
	apiV1.Patch("/transcriptions/:id/segments/:segmentId", h.UpdateSegmentText)
	apiV1.Post("/transcriptions/:id/segments/:segmentId/highlight", h.ToggleHighlight)
	apiV1.Patch("/transcriptions/:id/sections/:sectionId", h.UpdateSectionTitle)
	apiV1.Get("/transcriptions/:id/highlights", h.GetHighlights)
	apiV1.Get("/transcriptions/:id/subtitles", h.GetSubtitles)

	apiV1.Post("/transcriptions/:id/playback/position", h.UpdatePosition)
	apiV1.Post("/transcriptions/:id/playback/mode", h.SetPlaybackMode)
	apiV1.Get("/transcriptions/:id/playback", h.GetPlaybackState)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		config.Log.Info("Shutting down...")
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	config.Log.Infof("Starting vidscribe on port %s...", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		config.Log.Fatalf("Server stopped: %v", err)
	}
}
