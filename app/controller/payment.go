package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/0xBoji/realty-payments/app/entity"
	"github.com/0xBoji/realty-payments/app/factory"
	"github.com/0xBoji/realty-payments/app/mapper"
	"github.com/0xBoji/realty-payments/app/service"
	"github.com/0xBoji/realty-payments/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) CreateCheckout(ctx echo.Context) error {
	req, err := types.NewCheckoutRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	resp, err := c.paymentService.CreateCheckout(ctx.Request().Context(), req)
	if err != nil {
		var paymentErr *entity.PaymentError
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrProviderUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.As(err, &paymentErr) && paymentErr.Type == entity.ErrTypeValidation:
			return c.writePaymentError(ctx, http.StatusBadRequest, paymentErr)
		case errors.As(err, &paymentErr) && paymentErr.Type == entity.ErrTypeNetwork:
			c.logger.WithError(err).Error("Gateway unreachable during checkout")
			return c.writePaymentError(ctx, http.StatusBadGateway, paymentErr)
		case errors.As(err, &paymentErr) && paymentErr.Type == entity.ErrTypeGateway:
			c.logger.WithError(err).Error("Gateway rejected checkout")
			return c.writePaymentError(ctx, http.StatusBadGateway, paymentErr)
		default:
			c.logger.WithError(err).Error("Create checkout failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, resp)
}

// HandleVNPayReturn serves the browser redirect back from the domestic
// gateway. The verdict is advisory; the IPN endpoint is authoritative.
func (c *PaymentController) HandleVNPayReturn(ctx echo.Context) error {
	params := types.NewVNPayParamsFromContext(ctx)

	outcome := c.paymentService.HandleVNPayReturn(ctx.Request().Context(), params)
	return ctx.JSON(http.StatusOK, mapper.OutcomeToResponse(outcome))
}

// HandleVNPayIPN answers the gateway's server-to-server notification. The
// gateway expects HTTP 200 with its {RspCode, Message} shape on every call,
// including garbage input; anything else triggers retries.
func (c *PaymentController) HandleVNPayIPN(ctx echo.Context) error {
	params := types.NewVNPayParamsFromContext(ctx)

	result := c.paymentService.HandleVNPayIPN(ctx.Request().Context(), params)
	return ctx.JSON(http.StatusOK, &types.IPNResponse{RspCode: result.RspCode, Message: result.Message})
}

func (c *PaymentController) HandleStripeWebhook(ctx echo.Context) error {
	payload, signatureHeader, err := types.NewStripeWebhookFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	if err := c.paymentService.HandleStripeWebhook(ctx.Request().Context(), payload, signatureHeader); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return c.writeError(ctx, http.StatusBadRequest, "invalid webhook signature")
		}
		c.logger.WithError(err).Error("Handle stripe webhook failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.WebhookAckResponse{Received: true})
}

func (c *PaymentController) GetStripeSession(ctx echo.Context) error {
	sessionID := ctx.Param("id")
	if sessionID == "" {
		return c.writeError(ctx, http.StatusBadRequest, "session id is required")
	}

	session, err := c.paymentService.GetStripeSession(ctx.Request().Context(), sessionID)
	if err != nil {
		var paymentErr *entity.PaymentError
		switch {
		case errors.As(err, &paymentErr) && paymentErr.Type == entity.ErrTypeGateway:
			return c.writePaymentError(ctx, http.StatusNotFound, paymentErr)
		case errors.As(err, &paymentErr) && paymentErr.Type == entity.ErrTypeNetwork:
			c.logger.WithError(err).Error("Gateway unreachable during session lookup")
			return c.writePaymentError(ctx, http.StatusBadGateway, paymentErr)
		default:
			c.logger.WithError(err).Error("Get stripe session failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.SessionToResponse(session))
}

func (c *PaymentController) GetPendingPayment(ctx echo.Context) error {
	reference := ctx.Param("reference")
	if reference == "" {
		return c.writeError(ctx, http.StatusBadRequest, "reference is required")
	}

	pending, err := c.paymentService.GetPendingPayment(ctx.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, service.ErrPendingNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "pending payment not found")
		}
		c.logger.WithError(err).Error("Get pending payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.PendingToResponse(pending))
}

func (c *PaymentController) CancelPendingPayment(ctx echo.Context) error {
	reference := ctx.Param("reference")
	if reference == "" {
		return c.writeError(ctx, http.StatusBadRequest, "reference is required")
	}

	if err := c.paymentService.CancelPendingPayment(ctx.Request().Context(), reference); err != nil {
		if errors.Is(err, service.ErrPendingNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "pending payment not found")
		}
		c.logger.WithError(err).Error("Cancel pending payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Pending payment cancelled"})
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func (c *PaymentController) writePaymentError(ctx echo.Context, statusCode int, paymentErr *entity.PaymentError) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{
		Error: paymentErr.Message,
		Type:  string(paymentErr.Type),
		Code:  paymentErr.Code,
	})
}
