package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/service"
	"github.com/placement-cell/drive-api/internal/utils"
)

// RoundHandler manages roster mutation and result declaration routes.
type RoundHandler struct {
	selections *service.SelectionService
	results    *service.ResultService
	logger     zerolog.Logger
}

// NewRoundHandler constructs the handler.
func NewRoundHandler(selections *service.SelectionService, results *service.ResultService, logger zerolog.Logger) *RoundHandler {
	return &RoundHandler{
		selections: selections,
		results:    results,
		logger:     logger.With().Str("component", "round_handler").Logger(),
	}
}

// Register attaches round mutation routes under the drives group.
func (h *RoundHandler) Register(router fiber.Router) {
	router.Put("/:driveId/rounds/:roundId/selected", h.updateSelected)
	router.Put("/:driveId/rounds/:roundId/appeared", h.updateAppeared)
	router.Post("/:driveId/rounds/:roundId/declare", h.declareResults)
}

func (h *RoundHandler) updateSelected(c *fiber.Ctx) error {
	driveID, roundID, ok := h.parseIDs(c)
	if !ok {
		return nil
	}

	var payload dto.SelectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.selections.UpdateSelected(c.Context(), driveID, roundID, payload)
	if err != nil {
		if status, message, handled := roundMutationError(err); handled {
			return utils.SendError(c, status, message)
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to update selection")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update selection")
	}

	return utils.SendSuccessWithWarnings(c, "selection updated", result, result.Warnings)
}

func (h *RoundHandler) updateAppeared(c *fiber.Ctx) error {
	driveID, roundID, ok := h.parseIDs(c)
	if !ok {
		return nil
	}

	var payload dto.SelectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.selections.UpdateAppeared(c.Context(), driveID, roundID, payload)
	if err != nil {
		if status, message, handled := roundMutationError(err); handled {
			return utils.SendError(c, status, message)
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to update appeared list")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update appeared list")
	}

	return utils.SendSuccessWithWarnings(c, "appeared list updated", result, result.Warnings)
}

func (h *RoundHandler) declareResults(c *fiber.Ctx) error {
	driveID, roundID, ok := h.parseIDs(c)
	if !ok {
		return nil
	}

	var payload dto.DeclareResultsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.results.Declare(c.Context(), driveID, roundID, payload)
	if err != nil {
		if status, message, handled := roundMutationError(err); handled {
			return utils.SendError(c, status, message)
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to declare results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to declare results")
	}

	return utils.SendSuccessWithWarnings(c, "results declared", result, result.Warnings)
}

func (h *RoundHandler) parseIDs(c *fiber.Ctx) (uint, uint, bool) {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		_ = utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
		return 0, 0, false
	}
	roundID, err := parseUintParam(c, "roundId")
	if err != nil {
		_ = utils.SendError(c, fiber.StatusBadRequest, "invalid round id")
		return 0, 0, false
	}
	return driveID, roundID, true
}

// roundMutationError maps the round-level sentinel errors onto HTTP statuses.
func roundMutationError(err error) (int, string, bool) {
	switch {
	case isValidationError(err):
		return fiber.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrCandidatesNotAppeared),
		errors.Is(err, service.ErrCandidatesNotApplicants),
		errors.Is(err, service.ErrAppearedExcludesSelected):
		return fiber.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrDriveNotFound):
		return fiber.StatusNotFound, "drive not found", true
	case errors.Is(err, service.ErrRoundNotFound):
		return fiber.StatusNotFound, "round not found", true
	case errors.Is(err, service.ErrDriveClosed):
		return fiber.StatusConflict, "drive is closed", true
	case errors.Is(err, service.ErrDriveOnHold):
		return fiber.StatusConflict, "drive is on hold", true
	}
	return 0, "", false
}
