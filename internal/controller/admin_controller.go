package controller

import (
	"github.com/gofiber/fiber/v2"

	"support-desk-be/internal/constant"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/service"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	SupervisorAnalytics(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(serverutils.RequireRoles(constant.RoleAdmin))
	h.Get("/analytics/supervisors", c.SupervisorAnalytics)
}

func (c *adminController) SupervisorAnalytics(ctx *fiber.Ctx) error {
	res, err := c.service.SupervisorAnalytics(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get supervisor analytics", res))
}
