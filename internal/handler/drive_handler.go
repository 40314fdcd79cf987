package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/service"
	"github.com/placement-cell/drive-api/internal/utils"
)

// DriveHandler manages drive lifecycle and roster routes.
type DriveHandler struct {
	service *service.DriveService
	logger  zerolog.Logger
}

// NewDriveHandler constructs the handler.
func NewDriveHandler(service *service.DriveService, logger zerolog.Logger) *DriveHandler {
	return &DriveHandler{
		service: service,
		logger:  logger.With().Str("component", "drive_handler").Logger(),
	}
}

// Register attaches drive routes.
func (h *DriveHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:driveId", h.get)
	router.Patch("/:driveId/status", h.setStatus)
	router.Post("/:driveId/applicants", h.registerApplicants)
	router.Post("/:driveId/rounds", h.addRound)
	router.Patch("/:driveId/rounds/:roundId", h.updateRound)
	router.Delete("/:driveId/rounds/:roundId", h.deleteRound)
	router.Get("/:driveId/rounds/:roundId/roster", h.roster)
	router.Get("/:driveId/candidates/:candidateId/progress", h.candidateProgress)
	router.Get("/:driveId/timeline", h.timeline)
}

func (h *DriveHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.DriveListRequest{
		Status:   c.Query("status"),
		Company:  c.Query("company"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list drives")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list drives")
	}

	return utils.SendSuccess(c, "drives retrieved", result)
}

func (h *DriveHandler) create(c *fiber.Ctx) error {
	var payload dto.DriveCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	drive, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateRoundNumber),
			errors.Is(err, service.ErrInvalidRoundWindow):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create drive")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create drive")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "drive created", drive)
}

func (h *DriveHandler) get(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	drive, err := h.service.Get(c.Context(), driveID)
	if err != nil {
		if errors.Is(err, service.ErrDriveNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to load drive")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load drive")
	}

	return utils.SendSuccess(c, "drive retrieved", drive)
}

func (h *DriveHandler) setStatus(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	var payload dto.DriveStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	drive, err := h.service.SetStatus(c.Context(), driveID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrDriveClosed):
			return utils.SendError(c, fiber.StatusConflict, "drive is closed")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to update drive status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update drive status")
	}

	return utils.SendSuccess(c, "drive status updated", drive)
}

func (h *DriveHandler) registerApplicants(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	var payload dto.RegisterApplicantsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	drive, err := h.service.RegisterApplicants(c.Context(), driveID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrDriveClosed):
			return utils.SendError(c, fiber.StatusConflict, "drive is closed")
		case errors.Is(err, service.ErrDriveOnHold):
			return utils.SendError(c, fiber.StatusConflict, "drive is on hold")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to register applicants")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to register applicants")
	}

	return utils.SendSuccess(c, "applicants registered", drive)
}

func (h *DriveHandler) addRound(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	var payload dto.RoundCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	drive, err := h.service.AddRound(c.Context(), driveID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidRoundWindow):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateRoundNumber):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrDriveClosed):
			return utils.SendError(c, fiber.StatusConflict, "drive is closed")
		case errors.Is(err, service.ErrDriveOnHold):
			return utils.SendError(c, fiber.StatusConflict, "drive is on hold")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to add round")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to add round")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "round added", drive)
}

func (h *DriveHandler) updateRound(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}
	roundID, err := parseUintParam(c, "roundId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round id")
	}

	var payload dto.RoundUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	drive, err := h.service.UpdateRound(c.Context(), driveID, roundID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidRoundWindow):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrRoundNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "round not found")
		case errors.Is(err, service.ErrRoundDeclared):
			return utils.SendError(c, fiber.StatusConflict, "round results have already been declared")
		case errors.Is(err, service.ErrDriveClosed):
			return utils.SendError(c, fiber.StatusConflict, "drive is closed")
		case errors.Is(err, service.ErrDriveOnHold):
			return utils.SendError(c, fiber.StatusConflict, "drive is on hold")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to update round")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update round")
	}

	return utils.SendSuccess(c, "round updated", drive)
}

func (h *DriveHandler) deleteRound(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}
	roundID, err := parseUintParam(c, "roundId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round id")
	}

	drive, err := h.service.DeleteRound(c.Context(), driveID, roundID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDriveNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		case errors.Is(err, service.ErrRoundNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "round not found")
		case errors.Is(err, service.ErrRoundDeclared):
			return utils.SendError(c, fiber.StatusConflict, "round results have already been declared")
		case errors.Is(err, service.ErrDriveClosed):
			return utils.SendError(c, fiber.StatusConflict, "drive is closed")
		case errors.Is(err, service.ErrDriveOnHold):
			return utils.SendError(c, fiber.StatusConflict, "drive is on hold")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to delete round")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete round")
	}

	return utils.SendSuccess(c, "round deleted", drive)
}

func (h *DriveHandler) roster(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}
	roundID, err := parseUintParam(c, "roundId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round id")
	}

	set := c.Query("set", service.RosterSelected)
	result, err := h.service.Roster(c.Context(), driveID, roundID, set)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRosterSet):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRoundNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "round not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("round_id", roundID).Msg("failed to load roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load roster")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "roster retrieved", result)
}

func (h *DriveHandler) candidateProgress(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}
	candidateID, err := parseUintParam(c, "candidateId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid candidate id")
	}

	progress, err := h.service.CandidateProgress(c.Context(), driveID, candidateID)
	if err != nil {
		if errors.Is(err, service.ErrProgressNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "candidate progress not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Uint("candidate_id", candidateID).Msg("failed to load candidate progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load candidate progress")
	}

	return utils.SendSuccess(c, "candidate progress retrieved", progress)
}

func (h *DriveHandler) timeline(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "driveId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid drive id")
	}

	entries, err := h.service.Timeline(c.Context(), driveID)
	if err != nil {
		if errors.Is(err, service.ErrDriveNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "drive not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("drive_id", driveID).Msg("failed to load drive timeline")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load drive timeline")
	}

	return utils.SendSuccess(c, "timeline retrieved", entries)
}
