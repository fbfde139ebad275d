package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/auth"
	"github.com/andredale-lab/One-Coffee/internal/metrics"
	"github.com/andredale-lab/One-Coffee/internal/service"
	wsx "github.com/andredale-lab/One-Coffee/internal/ws"
)

type Server struct {
	convs    *service.ConversationService
	msgs     *service.MessageService
	invs     *service.InvitationService
	profiles *service.ProfileService
	log      *zap.SugaredLogger
}

// NewServer builds the fiber app with all routes mounted under /api/v1.
func NewServer(
	convs *service.ConversationService,
	msgs *service.MessageService,
	invs *service.InvitationService,
	profiles *service.ProfileService,
	wsHandler *wsx.Handler,
	verifier *auth.Verifier,
	readTimeout, writeTimeout time.Duration,
	log *zap.SugaredLogger,
) *fiber.App {
	s := &Server{convs: convs, msgs: msgs, invs: invs, profiles: profiles, log: log}

	app := fiber.New(fiber.Config{
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1", JWTAuth(verifier))

	v1.Get("/profiles", s.listProfiles)
	v1.Get("/profiles/me", s.myProfile)
	v1.Put("/profiles/me", s.updateProfile)

	v1.Post("/conversations", s.resolveConversation)
	v1.Get("/conversations", s.listConversations)
	v1.Get("/conversations/:id/messages", s.listMessages)
	v1.Post("/conversations/:id/messages", s.sendMessage)
	v1.Post("/conversations/:id/read", s.markRead)
	v1.Get("/unread-count", s.unreadCount)

	v1.Post("/invitations", s.sendInvitation)
	v1.Get("/invitations", s.listInvitations)
	v1.Post("/invitations/:id/respond", s.respondInvitation)

	v1.Get("/ws", wsHandler.Upgrade, websocket.New(wsHandler.Serve))

	return app
}
