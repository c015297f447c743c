package controller

import (
	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/serverutils"
	"kisan-advisory-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetCropSafety(ctx *fiber.Ctx) error
	ListAdvisories(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

// adminMiddleware runs after JwtMiddleware and requires the admin role claim.
func (c *adminController) adminMiddleware(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals("claims").(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}
	role, _ := claims["role"].(string)
	if role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Access denied: Admins only"))
	}
	return ctx.Next()
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/admin", serverutils.JwtMiddleware, c.adminMiddleware)
	h.Get("/safety/:crop", c.GetCropSafety)
	h.Get("/advisories", c.ListAdvisories)
}

func (c *adminController) GetCropSafety(ctx *fiber.Ctx) error {
	crop := ctx.Params("crop")
	if crop == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "crop parameter is required"))
	}

	res, err := c.service.GetCropSafety(ctx.UserContext(), crop)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Crop safety rules", res))
}

func (c *adminController) ListAdvisories(ctx *fiber.Ctx) error {
	var req dto.AdvisoryListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	records, total, err := c.service.ListAdvisories(ctx.UserContext(), req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Advisory records", fiber.Map{
		"total":   total,
		"records": records,
	}))
}
