package controller

import (
	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/serverutils"
	"kisan-advisory-be/internal/service"
	"kisan-advisory-be/pkg/errorsx"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	Receive(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IAdvisoryService
}

func NewMessageController(service service.IAdvisoryService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/messages")
	h.Post("", c.Receive)
}

func (c *messageController) Receive(ctx *fiber.Ctx) error {
	var req dto.InboundMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleMessage(ctx.UserContext(), req.ToMessage())
	if err != nil {
		if errorsx.HasReason(err, errorsx.ReasonInvalidPayload) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if ctx.UserContext().Err() != nil {
			return fiber.NewError(fiber.StatusRequestTimeout, "request cancelled")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message handled", res))
}
