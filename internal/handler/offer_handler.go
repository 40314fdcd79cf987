package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/middleware"
	"github.com/placement-cell/drive-api/internal/service"
	"github.com/placement-cell/drive-api/internal/utils"
)

// OfferHandler manages offer letter routes.
type OfferHandler struct {
	service *service.OfferService
	logger  zerolog.Logger
}

// NewOfferHandler constructs the handler.
func NewOfferHandler(service *service.OfferService, logger zerolog.Logger) *OfferHandler {
	return &OfferHandler{
		service: service,
		logger:  logger.With().Str("component", "offer_handler").Logger(),
	}
}

// RegisterAdmin attaches the issuing route, restricted to placement staff.
func (h *OfferHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/:driveId/offers", h.issue)
}

// RegisterCandidate attaches the response route. Any authenticated caller may
// respond; candidates answer their own letters and staff record decisions
// received out of band.
func (h *OfferHandler) RegisterCandidate(router fiber.Router) {
	router.Post("/:driveId/offers/:offerId/respond",
		middleware.WithAuth(h.respond, middleware.AuthOptions{Role: middleware.AuthRoleAny}))
}

func (h *OfferHandler) issue(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	var payload dto.OfferIssueRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Issue(c.Context(), driveID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOfferContentEmpty):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrDriveOnHold):
			return utils.SendError(c, fiber.StatusConflict, "drive is on hold")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to issue offers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue offers")
	}

	return utils.SendSuccessWithWarnings(c, "offer letters issued", result, result.Warnings)
}

func (h *OfferHandler) respond(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}
	offerID, err := parseUintParam(c, "offerId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offer id")
	}

	var payload dto.OfferRespondRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Respond(c.Context(), driveID, offerID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOfferNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "offer letter not found")
		case errors.Is(err, service.ErrOfferExpired):
			return utils.SendError(c, fiber.StatusConflict, "offer letter has expired")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("offer_id", offerID).Msg("failed to record offer response")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record offer response")
	}

	return utils.SendSuccessWithWarnings(c, "offer response recorded", result, result.Warnings)
}
