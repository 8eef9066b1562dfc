package ports

import (
	"context"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

// CreateCampaignInput carries all data needed to create a campaign.
type CreateCampaignInput struct {
	OwnerID        int64
	Name           string
	Description    string
	Amount         float64
	StartDate      time.Time
	EndDate        time.Time
	Status         string // empty = Draft
	IdempotencyKey string
}

// CampaignResult is returned by the service after creating a campaign.
type CampaignResult struct {
	Campaign *domain.Campaign
	// AlreadyExisted is true when the Idempotency-Key matched an existing campaign.
	AlreadyExisted bool
}

// UpdateCampaignInput is a partial update; nil fields are left untouched.
type UpdateCampaignInput struct {
	ID            int64
	RequesterID   int64
	RequesterRole domain.Role
	Name          *string
	Description   *string
	Amount        *float64
	StartDate     *time.Time
	EndDate       *time.Time
	Status        *string
}

// DeleteCampaignInput identifies the campaign and the caller asking to delete it.
type DeleteCampaignInput struct {
	ID            int64
	RequesterID   int64
	RequesterRole domain.Role
}

// ListCampaignsInput carries the raw list parameters. The service normalizes them.
type ListCampaignsInput struct {
	Status   string
	Search   string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// ListCampaignsResult is returned by ListCampaigns.
type ListCampaignsResult struct {
	Items        []*domain.Campaign
	Page         int
	PageSize     int
	TotalRecords int64
	TotalPages   int
}

// CampaignService defines use-case operations for campaigns.
type CampaignService interface {
	ListCampaigns(ctx context.Context, input ListCampaignsInput) (*ListCampaignsResult, error)
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignResult, error)
	UpdateCampaign(ctx context.Context, input UpdateCampaignInput) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, input DeleteCampaignInput) error
}
