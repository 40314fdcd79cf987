package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/repository"
)

// Sentinel errors shared across the drive engine services.
var (
	ErrDriveNotFound        = errors.New("drive not found")
	ErrRoundNotFound        = errors.New("round not found")
	ErrDriveClosed          = errors.New("drive is closed")
	ErrDriveOnHold          = errors.New("drive is on hold")
	ErrInvalidRoundWindow   = errors.New("round end time must be after start time")
	ErrDuplicateRoundNumber = errors.New("round number already exists for this drive")
	ErrRoundDeclared        = errors.New("round results have already been declared")
	ErrUnknownRosterSet     = errors.New("unknown roster set")
	ErrProgressNotFound     = errors.New("candidate progress record not found")
)

// Roster set names accepted by the roster endpoint.
const (
	RosterApplicants = "applicants"
	RosterAppeared   = "appeared"
	RosterSelected   = "selected"
)

// DriveService manages drive lifecycle, rounds, applicant registration and
// roster reads.
type DriveService struct {
	drives     repository.DriveRepository
	candidates repository.CandidateRepository
	progress   repository.ProgressRepository
	timeline   *TimelineService
	validator  *validator.Validate
	redis      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDriveService builds a DriveService. redisClient may be nil, which
// disables roster caching.
func NewDriveService(
	drives repository.DriveRepository,
	candidates repository.CandidateRepository,
	progress repository.ProgressRepository,
	timeline *TimelineService,
	validate *validator.Validate,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *DriveService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &DriveService{
		drives:     drives,
		candidates: candidates,
		progress:   progress,
		timeline:   timeline,
		validator:  validate,
		redis:      redisClient,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "drive_service").Logger(),
		now:        time.Now,
	}
}

// Create opens a new drive, optionally with its initial rounds.
func (s *DriveService) Create(ctx context.Context, req dto.DriveCreateRequest) (dto.DriveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveResponse{}, err
	}

	drive := models.Drive{
		CompanyName:         req.CompanyName,
		JobProfileID:        req.JobProfileID,
		Status:              models.DriveStatusInProgress,
		ApplicantCandidates: []uint{},
		SelectedCandidates:  []uint{},
	}

	seen := make(map[int]struct{}, len(req.Rounds))
	for _, roundReq := range req.Rounds {
		if _, dup := seen[roundReq.RoundNumber]; dup {
			return dto.DriveResponse{}, ErrDuplicateRoundNumber
		}
		seen[roundReq.RoundNumber] = struct{}{}

		round, err := s.buildRound(roundReq)
		if err != nil {
			return dto.DriveResponse{}, err
		}
		drive.Rounds = append(drive.Rounds, round)
	}

	if err := s.drives.Create(ctx, &drive); err != nil {
		return dto.DriveResponse{}, err
	}

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID: drive.ID,
		Action:  "drive.created",
		Summary: fmt.Sprintf("drive opened for %s with %d rounds", drive.CompanyName, len(drive.Rounds)),
	})

	return s.reload(ctx, drive.ID)
}

// List returns a filtered, paginated drive listing.
func (s *DriveService) List(ctx context.Context, req dto.DriveListRequest) (dto.DriveListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	drives, total, err := s.drives.List(ctx, repository.DriveFilter{
		Status:   req.Status,
		Company:  req.Company,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.DriveListResponse{}, err
	}

	now := s.now()
	items := make([]dto.DriveResponse, 0, len(drives))
	for _, drive := range drives {
		items = append(items, dto.NewDriveResponse(drive, now))
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return dto.DriveListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: maxInt(totalPages, 1),
		},
	}, nil
}

// Get returns a single drive with its rounds and offer letters. The response
// is cached under the drive's roster version; a cached round status may lag
// the round clock by at most the cache TTL.
func (s *DriveService) Get(ctx context.Context, driveID uint) (dto.DriveResponse, error) {
	version := rosterVersion(ctx, s.redis, driveID)
	key := driveDetailCacheKey(driveID, version)

	var cached dto.DriveResponse
	if readCachedRoster(ctx, s.redis, s.logger, key, &cached) {
		return cached, nil
	}

	drive, err := s.loadDrive(ctx, driveID)
	if err != nil {
		return dto.DriveResponse{}, err
	}

	response := dto.NewDriveResponse(drive, s.now())
	writeCachedRoster(ctx, s.redis, s.logger, key, response, s.cacheTTL)
	return response, nil
}

// SetStatus places a drive on hold or resumes it. A closed drive never
// reopens; closure only happens through final-round declaration.
func (s *DriveService) SetStatus(ctx context.Context, driveID uint, req dto.DriveStatusUpdateRequest) (dto.DriveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveResponse{}, err
	}

	drive, err := s.loadDrive(ctx, driveID)
	if err != nil {
		return dto.DriveResponse{}, err
	}
	if drive.Status == models.DriveStatusClosed {
		return dto.DriveResponse{}, ErrDriveClosed
	}

	drive.Status = models.DriveStatus(req.Status)
	if err := s.drives.Save(ctx, &drive); err != nil {
		return dto.DriveResponse{}, err
	}

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID:  drive.ID,
		Action:   "drive.status_changed",
		Summary:  fmt.Sprintf("drive status set to %s", drive.Status),
		Metadata: map[string]interface{}{"status": string(drive.Status)},
	})

	bumpRosterVersion(ctx, s.redis, s.logger, drive.ID)
	return s.reload(ctx, drive.ID)
}

// AddRound appends a new round to a mutable drive.
func (s *DriveService) AddRound(ctx context.Context, driveID uint, req dto.RoundCreateRequest) (dto.DriveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveResponse{}, err
	}

	drive, err := s.loadMutableDrive(ctx, driveID)
	if err != nil {
		return dto.DriveResponse{}, err
	}

	for _, existing := range drive.Rounds {
		if existing.RoundNumber == req.RoundNumber {
			return dto.DriveResponse{}, ErrDuplicateRoundNumber
		}
	}

	round, err := s.buildRound(req)
	if err != nil {
		return dto.DriveResponse{}, err
	}
	round.DriveID = drive.ID

	if err := s.drives.SaveRound(ctx, &round); err != nil {
		return dto.DriveResponse{}, err
	}

	bumpRosterVersion(ctx, s.redis, s.logger, drive.ID)
	return s.reload(ctx, drive.ID)
}

// UpdateRound edits an undeclared round's name or time window.
func (s *DriveService) UpdateRound(ctx context.Context, driveID, roundID uint, req dto.RoundUpdateRequest) (dto.DriveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveResponse{}, err
	}

	if _, err := s.loadMutableDrive(ctx, driveID); err != nil {
		return dto.DriveResponse{}, err
	}

	round, err := s.drives.GetRound(ctx, driveID, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DriveResponse{}, ErrRoundNotFound
		}
		return dto.DriveResponse{}, err
	}
	if round.IsDeclared() {
		return dto.DriveResponse{}, ErrRoundDeclared
	}

	if req.RoundName != nil {
		round.RoundName = *req.RoundName
	}
	if req.StartTime != nil {
		start, err := dto.ParseTime(*req.StartTime)
		if err != nil {
			return dto.DriveResponse{}, err
		}
		round.StartTime = start
	}
	if req.EndTime != nil {
		end, err := dto.ParseTime(*req.EndTime)
		if err != nil {
			return dto.DriveResponse{}, err
		}
		round.EndTime = end
	}

	if !round.EndTime.After(round.StartTime) {
		return dto.DriveResponse{}, ErrInvalidRoundWindow
	}

	round.Status = round.StatusAt(s.now())
	if err := s.drives.SaveRound(ctx, &round); err != nil {
		return dto.DriveResponse{}, err
	}

	bumpRosterVersion(ctx, s.redis, s.logger, driveID)
	return s.reload(ctx, driveID)
}

// DeleteRound removes an undeclared round from a mutable drive.
func (s *DriveService) DeleteRound(ctx context.Context, driveID, roundID uint) (dto.DriveResponse, error) {
	if _, err := s.loadMutableDrive(ctx, driveID); err != nil {
		return dto.DriveResponse{}, err
	}

	round, err := s.drives.GetRound(ctx, driveID, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DriveResponse{}, ErrRoundNotFound
		}
		return dto.DriveResponse{}, err
	}
	if round.IsDeclared() {
		return dto.DriveResponse{}, ErrRoundDeclared
	}

	if err := s.drives.DeleteRound(ctx, driveID, roundID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DriveResponse{}, ErrRoundNotFound
		}
		return dto.DriveResponse{}, err
	}

	bumpRosterVersion(ctx, s.redis, s.logger, driveID)
	return s.reload(ctx, driveID)
}

// RegisterApplicants adds candidates to the drive's applicant pool and to the
// first round's applicant set.
func (s *DriveService) RegisterApplicants(ctx context.Context, driveID uint, req dto.RegisterApplicantsRequest) (dto.DriveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DriveResponse{}, err
	}

	drive, err := s.loadMutableDrive(ctx, driveID)
	if err != nil {
		return dto.DriveResponse{}, err
	}

	ids := normalizeIDs(req.CandidateIDs)
	drive.ApplicantCandidates = unionIDs(drive.ApplicantCandidates, ids)
	if err := s.drives.Save(ctx, &drive); err != nil {
		return dto.DriveResponse{}, err
	}

	if len(drive.Rounds) > 0 {
		first := drive.Rounds[0]
		for _, round := range drive.Rounds[1:] {
			if round.RoundNumber < first.RoundNumber {
				first = round
			}
		}

		applicants := unionIDs(first.ApplicantStudents, ids)
		err := s.drives.ReplaceCandidateSets(ctx, drive.ID, first.ID, repository.CandidateSetUpdate{
			Applicants: &applicants,
		})
		if err != nil {
			return dto.DriveResponse{}, err
		}
	}

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID:  drive.ID,
		Action:   "applicants.registered",
		Summary:  fmt.Sprintf("%d candidates registered", len(ids)),
		Metadata: map[string]interface{}{"count": len(ids)},
	})

	bumpRosterVersion(ctx, s.redis, s.logger, drive.ID)
	return s.reload(ctx, drive.ID)
}

// Roster returns one of a round's candidate sets with directory details. The
// response is served from the version-keyed cache when possible.
func (s *DriveService) Roster(ctx context.Context, driveID, roundID uint, set string) (dto.RoundRosterResponse, error) {
	switch set {
	case RosterApplicants, RosterAppeared, RosterSelected:
	default:
		return dto.RoundRosterResponse{}, ErrUnknownRosterSet
	}

	version := rosterVersion(ctx, s.redis, driveID)
	key := rosterCacheKey(driveID, version, roundID, set)

	var cached dto.RoundRosterResponse
	if readCachedRoster(ctx, s.redis, s.logger, key, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	round, err := s.drives.GetRound(ctx, driveID, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoundRosterResponse{}, ErrRoundNotFound
		}
		return dto.RoundRosterResponse{}, err
	}

	var ids []uint
	switch set {
	case RosterApplicants:
		ids = round.ApplicantStudents
	case RosterAppeared:
		ids = round.AppearedStudents
	case RosterSelected:
		ids = round.SelectedStudents
	}

	candidates, err := s.candidates.ListByIDs(ctx, ids)
	if err != nil {
		return dto.RoundRosterResponse{}, err
	}

	summaries := make([]dto.CandidateSummary, 0, len(candidates))
	for _, candidate := range candidates {
		summaries = append(summaries, dto.NewCandidateSummary(candidate))
	}

	response := dto.RoundRosterResponse{
		DriveID:    driveID,
		RoundID:    roundID,
		RoundName:  round.RoundName,
		Set:        set,
		Candidates: summaries,
	}

	writeCachedRoster(ctx, s.redis, s.logger, key, response, s.cacheTTL)
	return response, nil
}

// CandidateProgress returns a candidate's progress record for the drive.
func (s *DriveService) CandidateProgress(ctx context.Context, driveID, candidateID uint) (dto.CandidateProgressResponse, error) {
	record, err := s.progress.GetByDriveAndCandidate(ctx, driveID, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateProgressResponse{}, ErrProgressNotFound
		}
		return dto.CandidateProgressResponse{}, err
	}

	return dto.NewCandidateProgressResponse(record), nil
}

// Timeline returns the drive's audit trail, newest first.
func (s *DriveService) Timeline(ctx context.Context, driveID uint) ([]dto.TimelineEntryResponse, error) {
	if _, err := s.loadDrive(ctx, driveID); err != nil {
		return nil, err
	}

	return s.timeline.ListByDrive(ctx, driveID)
}

func (s *DriveService) buildRound(req dto.RoundCreateRequest) (models.Round, error) {
	start, err := dto.ParseTime(req.StartTime)
	if err != nil {
		return models.Round{}, err
	}
	end, err := dto.ParseTime(req.EndTime)
	if err != nil {
		return models.Round{}, err
	}
	if !end.After(start) {
		return models.Round{}, ErrInvalidRoundWindow
	}

	round := models.Round{
		RoundNumber:       req.RoundNumber,
		RoundName:         req.RoundName,
		StartTime:         start,
		EndTime:           end,
		ApplicantStudents: []uint{},
		AppearedStudents:  []uint{},
		SelectedStudents:  []uint{},
	}
	round.Status = round.StatusAt(s.now())
	return round, nil
}

func (s *DriveService) loadDrive(ctx context.Context, driveID uint) (models.Drive, error) {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Drive{}, ErrDriveNotFound
		}
		return models.Drive{}, err
	}
	return drive, nil
}

func (s *DriveService) loadMutableDrive(ctx context.Context, driveID uint) (models.Drive, error) {
	drive, err := s.loadDrive(ctx, driveID)
	if err != nil {
		return models.Drive{}, err
	}

	switch drive.Status {
	case models.DriveStatusClosed:
		return models.Drive{}, ErrDriveClosed
	case models.DriveStatusHold:
		return models.Drive{}, ErrDriveOnHold
	}
	return drive, nil
}

func (s *DriveService) reload(ctx context.Context, driveID uint) (dto.DriveResponse, error) {
	drive, err := s.loadDrive(ctx, driveID)
	if err != nil {
		return dto.DriveResponse{}, err
	}
	return dto.NewDriveResponse(drive, s.now()), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
