package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/confeet-agent/internal/application/config"
	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/application/metric"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/media"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/memory"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/rest"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/session"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/socket"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/handlers"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/server"
	"github.com/qrave1/confeet-agent/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	sessionProvider, err := session.NewProvider(cfg.AccessToken)
	if err != nil {
		slog.Error("read access token", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	user := sessionProvider.GetUser()
	if user == nil {
		slog.Error("access token expired, log in again")
		os.Exit(1)
	}

	slog.Info("Running agent", slog.Bool("debug", cfg.Debug), slog.String(constant.UserID, user.ID))

	transport := socket.NewTransport(socket.Options{
		ReconnectInterval: cfg.Socket.ReconnectInterval,
		HeartbeatInterval: cfg.Socket.HeartbeatInterval,
		HandshakeTimeout:  cfg.Socket.HandshakeTimeout,
	})

	callState := runtime.NewCallState()

	messageRepo := memory.NewMessageRepository()
	unreadRepo := memory.NewUnreadRepository()
	typingRepo := memory.NewTypingRepository()
	notificationRepo := memory.NewNotificationRepository()
	lastMessageRepo := memory.NewLastMessageRepository()

	mediaProvider := media.NewRoomProvider(user.ID, cfg.ICEServers())
	historyClient := rest.NewHistoryClient(cfg.APIURL, cfg.AccessToken)

	deliveryUsecase := usecase.NewDeliveryUsecase(
		transport,
		sessionProvider,
		historyClient,
		messageRepo,
		unreadRepo,
		typingRepo,
		notificationRepo,
		lastMessageRepo,
	)
	callClientUsecase := usecase.NewCallClientUsecase(
		transport,
		sessionProvider,
		deliveryUsecase,
		callState,
		cfg.Call.RingTimeout,
	)
	callReceiverUsecase := usecase.NewCallReceiverUsecase(
		transport,
		sessionProvider,
		mediaProvider,
		notificationRepo,
		callState,
	)

	// Подписки ставятся до подключения, чтобы не потерять первые кадры
	deliveryUsecase.Start(ctx)
	callReceiverUsecase.Start(ctx)

	transport.OnConnectionChange(func(connected bool) {
		slog.Info("signaling link changed", slog.Bool("connected", connected))
	})

	if err := transport.Connect(ctx, cfg.Socket.URL, user.ID); err != nil {
		slog.Error("connect to signaling server", slog.Any(constant.Error, err), slog.String(constant.URL, cfg.Socket.URL))
		os.Exit(1)
	}

	callHandler := handlers.NewCallHandler(callClientUsecase, callReceiverUsecase, sessionProvider)
	chatHandler := handlers.NewChatHandler(deliveryUsecase)
	connectionHandler := handlers.NewConnectionHandler(transport, mediaProvider, sessionProvider)

	echoSrv := server.New(cfg, callHandler, chatHandler, connectionHandler)

	metricsSrv := metric.NewServer(transport)

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down agent due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	callReceiverUsecase.Stop()
	deliveryUsecase.Stop()
	transport.Disconnect()
	mediaProvider.LeaveRoom(context.Background())

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
