package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
	"github.com/99minutos/campaign-system/internal/pkg/validate"
)

// campaignFields is the validated shape of a campaign on create and after a
// partial update has been merged.
type campaignFields struct {
	Name        string    `json:"name" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"max=1000"`
	Amount      float64   `json:"amount" validate:"gt=0,lte=10000000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Status      string    `json:"status" validate:"required,oneof=Draft Active Paused Completed Cancelled"`
}

func fieldsOf(c *domain.Campaign) campaignFields {
	return campaignFields{
		Name:        c.Name,
		Description: c.Description,
		Amount:      c.Amount,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Status:      string(c.Status),
	}
}

type CampaignService struct {
	repo        ports.CampaignRepository
	idempotency ports.IdempotencyStore
	validator   *validate.Validator
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCampaignService builds the service. idempotency may be nil, in which case
// Idempotency-Key headers are ignored.
func NewCampaignService(repo ports.CampaignRepository, idempotency ports.IdempotencyStore, logger zerolog.Logger) *CampaignService {
	return &CampaignService{
		repo:        repo,
		idempotency: idempotency,
		validator:   validate.New(),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// ListCampaigns normalizes the raw query and returns one page of visible campaigns.
func (s *CampaignService) ListCampaigns(ctx context.Context, input ports.ListCampaignsInput) (*ports.ListCampaignsResult, error) {
	filter, err := normalizeListInput(input)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	if items == nil {
		items = []*domain.Campaign{}
	}

	return &ports.ListCampaignsResult{
		Items:        items,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
		TotalRecords: total,
		TotalPages:   domain.TotalPages(total, filter.PageSize),
	}, nil
}

// GetCampaign returns a visible campaign. Any authenticated caller may read.
func (s *CampaignService) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateCampaign creates a campaign owned by input.OwnerID. If an idempotency
// key is provided and already seen for this owner, the earlier campaign is
// returned without side effects. The key is reserved before the insert, so a
// concurrent request with the same key gets ErrIdempotencyInFlight instead of
// a second campaign.
func (s *CampaignService) CreateCampaign(ctx context.Context, input ports.CreateCampaignInput) (*ports.CampaignResult, error) {
	if existing := s.replay(ctx, input.OwnerID, input.IdempotencyKey); existing != nil {
		s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Int64("campaign_id", existing.ID).Msg("idempotent replay")
		return &ports.CampaignResult{Campaign: existing, AlreadyExisted: true}, nil
	}

	status := input.Status
	if status == "" {
		status = string(domain.StatusDraft)
	}

	campaign := &domain.Campaign{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		StartDate:   input.StartDate.UTC(),
		EndDate:     input.EndDate.UTC(),
		Status:      domain.CampaignStatus(status),
		OwnerID:     input.OwnerID,
		CreatedAt:   s.now(),
	}
	if err := s.validator.Struct(fieldsOf(campaign)); err != nil {
		return nil, err
	}

	reserved, err := s.reserve(ctx, input.OwnerID, input.IdempotencyKey)
	if err != nil {
		if existing := s.replay(ctx, input.OwnerID, input.IdempotencyKey); existing != nil {
			return &ports.CampaignResult{Campaign: existing, AlreadyExisted: true}, nil
		}
		return nil, err
	}

	if err := s.repo.Create(ctx, campaign); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to create campaign")
		if reserved {
			if rerr := s.idempotency.Release(ctx, input.OwnerID, input.IdempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", input.IdempotencyKey).Msg("could not release idempotency key")
			}
		}
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	if reserved {
		if err := s.idempotency.Remember(ctx, input.OwnerID, input.IdempotencyKey, campaign.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("could not store idempotency key")
		}
	}

	s.logger.Info().Int64("campaign_id", campaign.ID).Int64("owner_id", campaign.OwnerID).Msg("campaign created")

	return &ports.CampaignResult{Campaign: campaign}, nil
}

// replay returns the campaign previously created under key, or nil. Lookup
// failures are logged and treated as a miss.
func (s *CampaignService) replay(ctx context.Context, ownerID int64, key string) *domain.Campaign {
	if s.idempotency == nil || key == "" {
		return nil
	}
	id, ok, err := s.idempotency.Lookup(ctx, ownerID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil
	}
	if !ok || id == 0 {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return existing
}

// reserve claims key for this owner. It reports false without error when
// there is no key or the store is unavailable; creation then goes ahead
// unguarded, as it did before the store existed.
func (s *CampaignService) reserve(ctx context.Context, ownerID int64, key string) (bool, error) {
	if s.idempotency == nil || key == "" {
		return false, nil
	}
	ok, err := s.idempotency.Reserve(ctx, ownerID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed")
		return false, nil
	}
	if !ok {
		return false, domain.ErrIdempotencyInFlight
	}
	return true, nil
}

// UpdateCampaign applies a partial update. Only the owner or an admin may
// update; the merged campaign must pass the same validation as a new one.
func (s *CampaignService) UpdateCampaign(ctx context.Context, input ports.UpdateCampaignInput) (*domain.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutate(input.RequesterID, input.RequesterRole, campaign.OwnerID) {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		campaign.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		campaign.Description = strings.TrimSpace(*input.Description)
	}
	if input.Amount != nil {
		campaign.Amount = *input.Amount
	}
	if input.StartDate != nil {
		campaign.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		campaign.EndDate = input.EndDate.UTC()
	}
	if input.Status != nil {
		campaign.Status = domain.CampaignStatus(*input.Status)
	}
	if err := s.validator.Struct(fieldsOf(campaign)); err != nil {
		return nil, err
	}

	now := s.now()
	campaign.UpdatedAt = &now
	if err := s.repo.Update(ctx, campaign); err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	s.logger.Info().Int64("campaign_id", campaign.ID).Int64("requester_id", input.RequesterID).Msg("campaign updated")
	return campaign, nil
}

// DeleteCampaign soft-deletes a campaign. Only the owner or an admin may delete.
func (s *CampaignService) DeleteCampaign(ctx context.Context, input ports.DeleteCampaignInput) error {
	campaign, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return err
	}
	if !domain.CanMutate(input.RequesterID, input.RequesterRole, campaign.OwnerID) {
		return domain.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, input.ID, s.now()); err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			return err
		}
		return fmt.Errorf("delete campaign: %w", err)
	}

	s.logger.Info().Int64("campaign_id", input.ID).Int64("requester_id", input.RequesterID).Msg("campaign deleted")
	return nil
}

// normalizeListInput applies the allow-list, default direction and clamping
// rules. Only an unknown status is an error; everything else falls back.
func normalizeListInput(input ports.ListCampaignsInput) (ports.CampaignFilter, error) {
	filter := ports.CampaignFilter{
		Search:   strings.TrimSpace(input.Search),
		SortBy:   domain.ParseSortField(input.SortBy),
		SortDesc: domain.ParseSortDescending(input.SortDir),
		Page:     domain.ClampPage(input.Page),
		PageSize: domain.ClampPageSize(input.PageSize),
	}

	if raw := strings.TrimSpace(input.Status); raw != "" {
		st, ok := domain.ParseCampaignStatus(raw)
		if !ok {
			return ports.CampaignFilter{}, domain.NewValidationError(
				"status must be one of: Draft Active Paused Completed Cancelled",
			)
		}
		filter.Status = &st
	}
	return filter, nil
}
