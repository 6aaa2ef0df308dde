package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hamzasiddiq/dost-ai/backend/internal/config"
	"github.com/hamzasiddiq/dost-ai/backend/internal/handler"
	"github.com/hamzasiddiq/dost-ai/backend/internal/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/ai"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/conversation"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/recognition"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/speech"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	records, err := session.NewRecordStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	state := session.NewState(records)

	knowledgeSvc := knowledge.NewService(state, nil)

	// Initialize AI service
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI, cfg.Knowledge.ContextBudget)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	// Initialize speech pipeline
	var pipeline *speech.Pipeline
	{
		var synth speech.Synthesizer
		if cfg.Speech.Enabled {
			synth = speech.NewTTSClient(cfg.Speech)
			log.Println("Online speech synthesis initialized")
		} else {
			log.Println("语音合成后端未配置，在线播报不可用")
		}

		var offline speech.OfflineEngine
		if engine, err := speech.NewLocalEngine(); err != nil {
			log.Printf("offline speech unavailable: %v", err)
		} else {
			offline = engine
		}

		var player speech.Player
		if p := speech.NewExecPlayer(); p != nil {
			player = p
		}

		pipeline = speech.NewPipeline(synth, offline, player)
	}

	var recognizer recognition.Recognizer
	if ws := recognition.NewWSRecognizer(cfg.Speech); ws != nil {
		recognizer = ws
		log.Println("Speech recognition backend configured")
	} else {
		log.Println("语音识别后端未配置，语音输入不可用")
	}

	var generator conversation.Generator
	if aiSvc != nil {
		generator = aiSvc
	}
	conversationSvc := conversation.NewService(state, generator, pipeline)

	router := handler.NewRouter(state, conversationSvc, knowledgeSvc, pipeline, recognizer)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Dost AI backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
