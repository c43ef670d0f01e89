package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/repository"
	"github.com/spec-kit/talent-service/internal/tenant"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CandidateService manages candidates inside the caller's organization. The
// organization always comes from the tenant context, never from input.
type CandidateService struct {
	repo   repository.CandidateRepository
	logger *zap.Logger
}

// NewCandidateService builds the service.
func NewCandidateService(repo repository.CandidateRepository, logger *zap.Logger) *CandidateService {
	return &CandidateService{repo: repo, logger: logger}
}

// CandidateInput is the writable candidate payload.
type CandidateInput struct {
	FullName string
	Email    string
}

// Create adds a candidate to the caller's organization.
func (s *CandidateService) Create(ctx context.Context, input CandidateInput) (*domain.Candidate, error) {
	orgID, userID, err := scope(ctx)
	if err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{
		OrganizationID: orgID,
		FullName:       strings.TrimSpace(input.FullName),
		Email:          normalizeEmail(input.Email),
		CreatedBy:      userID,
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("candidate created",
		zap.Int64("candidate_id", candidate.ID),
		zap.Int64("organization_id", orgID),
		zap.Int64("created_by", userID))
	return candidate, nil
}

// List returns a page of the caller's organization's candidates.
func (s *CandidateService) List(ctx context.Context, limit, offset int) ([]domain.Candidate, error) {
	orgID, err := tenant.RequireOrganizationID(ctx)
	if err != nil {
		return nil, apperrors.FromTenantError(err)
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, orgID, limit, offset)
}

// Get returns one candidate. Candidates of other organizations are reported
// as not found.
func (s *CandidateService) Get(ctx context.Context, id int64) (*domain.Candidate, error) {
	orgID, err := tenant.RequireOrganizationID(ctx)
	if err != nil {
		return nil, apperrors.FromTenantError(err)
	}
	candidate, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, candidateError(err, id)
	}
	return candidate, nil
}

// Delete removes a candidate from the caller's organization.
func (s *CandidateService) Delete(ctx context.Context, id int64) error {
	orgID, userID, err := scope(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return candidateError(err, id)
	}

	s.logger.Info("candidate deleted",
		zap.Int64("candidate_id", id),
		zap.Int64("organization_id", orgID),
		zap.Int64("deleted_by", userID))
	return nil
}

func scope(ctx context.Context) (orgID, userID int64, err error) {
	if orgID, err = tenant.RequireOrganizationID(ctx); err != nil {
		return 0, 0, apperrors.FromTenantError(err)
	}
	if userID, err = tenant.RequireUserID(ctx); err != nil {
		return 0, 0, apperrors.FromTenantError(err)
	}
	return orgID, userID, nil
}

func candidateError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("candidate", map[string]any{"id": id})
	}
	return err
}
