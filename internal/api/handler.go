package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/service"
)

func actor(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Errorw("request failed", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) listProfiles(c *fiber.Ctx) error {
	out, err := s.profiles.ListCommunity(c.Context(), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"profiles": out})
}

func (s *Server) myProfile(c *fiber.Ctx) error {
	p, err := s.profiles.Get(c.Context(), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(p)
}

type updateProfileReq struct {
	Email string `json:"email"`
	service.ProfileUpdate
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	p, err := s.profiles.Update(c.Context(), actor(c), req.Email, req.ProfileUpdate)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(p)
}

type resolveConversationReq struct {
	UserID string `json:"user_id"`
}

func (s *Server) resolveConversation(c *fiber.Ctx) error {
	var req resolveConversationReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	conv, err := s.convs.ResolveOrCreate(c.Context(), actor(c), req.UserID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(conv)
}

func (s *Server) listConversations(c *fiber.Ctx) error {
	out, err := s.convs.ListForUser(c.Context(), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"conversations": out})
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	msgs, err := s.msgs.List(c.Context(), c.Params("id"), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

type sendMessageReq struct {
	Content string `json:"content"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	m, err := s.msgs.Append(c.Context(), c.Params("id"), actor(c), req.Content)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (s *Server) markRead(c *fiber.Ctx) error {
	if err := s.msgs.MarkRead(c.Context(), c.Params("id"), actor(c)); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) unreadCount(c *fiber.Ctx) error {
	n, err := s.msgs.UnreadCount(c.Context(), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

type sendInvitationReq struct {
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

func (s *Server) sendInvitation(c *fiber.Ctx) error {
	var req sendInvitationReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	inv, err := s.invs.Send(c.Context(), actor(c), req.ReceiverID, req.Message)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func (s *Server) listInvitations(c *fiber.Ctx) error {
	out, err := s.invs.ListForReceiver(c.Context(), actor(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"invitations": out})
}

type respondInvitationReq struct {
	Status models.InvitationStatus `json:"status"`
}

func (s *Server) respondInvitation(c *fiber.Ctx) error {
	var req respondInvitationReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	inv, err := s.invs.Respond(c.Context(), c.Params("id"), actor(c), req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(inv)
}
