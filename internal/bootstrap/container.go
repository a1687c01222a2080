package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"support-desk-be/internal/config"
	"support-desk-be/internal/controller"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/repository/memory"
	"support-desk-be/internal/repository/unitofwork"
	"support-desk-be/internal/service"
	"support-desk-be/internal/websocket"
	pktNats "support-desk-be/pkg/nats"
)

const (
	closeTopic        = "conversation_closed"
	analyticsCacheTTL = 1 * time.Minute
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ConversationController controller.IConversationController
	AdminController        controller.IAdminController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Realtime
	WebSocketHub     *websocket.Hub
	WebSocketHandler *websocket.Handler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. In-memory state
	buffer := memory.NewMessageBuffer()
	analyticsCache := memory.NewAnalyticsCache(analyticsCacheTTL)

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(closeTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, closeTopic, natsPub)

	authService := service.NewAuthService(uowFactory, cfg.Auth.TokenTTL)
	conversationService := service.NewConversationService(
		uowFactory,
		buffer,
		wsHub,
		publisherService,
		natsPub,
		sysLogger,
	)
	adminService := service.NewAdminService(uowFactory, analyticsCache)

	// 5. Realtime handler
	wsHandler := websocket.NewHandler(wsHub, conversationService, buffer, wsLogger)

	// 6. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		ConversationController: controller.NewConversationController(conversationService),
		AdminController:        controller.NewAdminController(adminService),
		ConsumerService:        consumerService,
		WebSocketHub:           wsHub,
		WebSocketHandler:       wsHandler,
	}
}
