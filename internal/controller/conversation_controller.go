package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-desk-be/internal/apperror"
	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/service"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Assign(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", serverutils.RequireRoles(constant.RoleCandidate), c.Create)
	h.Put(":id/assign", serverutils.RequireRoles(constant.RoleSupervisor), c.Assign)
	h.Put(":id/close", serverutils.RequireRoles(constant.RoleAdmin, constant.RoleSupervisor), c.Close)
	h.Get(":id", c.Show)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	userId, _ := serverutils.Identity(ctx)

	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateStruct(req); err != nil {
		return err
	}

	conversation, err := c.service.Create(ctx.Context(), userId, req.SupervisorId)
	if err != nil {
		return err
	}

	res := dto.CreateConversationResponse{
		Id:           conversation.Id,
		Status:       string(conversation.Status),
		SupervisorId: conversation.SupervisorId,
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *conversationController) Assign(ctx *fiber.Ctx) error {
	userId, _ := serverutils.Identity(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.ErrValidation
	}

	var req dto.AssignAgentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateStruct(req); err != nil {
		return err
	}

	conversation, err := c.service.Assign(ctx.Context(), conversationId, userId, req.AgentId)
	if err != nil {
		return err
	}

	res := dto.AssignAgentResponse{
		ConversationId: conversation.Id,
		AgentId:        *conversation.AgentId,
		SupervisorId:   conversation.SupervisorId,
	}

	return ctx.JSON(serverutils.SuccessResponse("Success assign agent", res))
}

func (c *conversationController) Close(ctx *fiber.Ctx) error {
	userId, role := serverutils.Identity(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.ErrValidation
	}

	conversation, err := c.service.Close(ctx.Context(), conversationId, userId, entity.UserRole(role))
	if err != nil {
		return err
	}

	res := dto.CloseConversationResponse{
		ConversationId: conversation.Id,
		Status:         string(conversation.Status),
	}

	return ctx.JSON(serverutils.SuccessResponse("Success close conversation", res))
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	userId, role := serverutils.Identity(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.ErrValidation
	}

	conversation, messages, err := c.service.Read(ctx.Context(), conversationId, userId, entity.UserRole(role))
	if err != nil {
		return err
	}

	views := make([]dto.MessageView, len(messages))
	for i, msg := range messages {
		views[i] = dto.MessageView{
			SenderId:   msg.SenderId,
			SenderRole: string(msg.SenderRole),
			Content:    msg.Content,
			CreatedAt:  msg.CreatedAt,
		}
	}

	res := dto.ConversationDetailResponse{
		Id:           conversation.Id,
		Status:       string(conversation.Status),
		CandidateId:  conversation.CandidateId,
		SupervisorId: conversation.SupervisorId,
		AgentId:      conversation.AgentId,
		CreatedAt:    conversation.CreatedAt,
		Messages:     views,
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show conversation", res))
}
