package ports

import (
	"context"
	"math"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

// CampaignFilter is the normalized list query handed to the store. Every
// field has already been clamped or allow-listed by the service layer.
type CampaignFilter struct {
	Status   *domain.CampaignStatus // optional exact match
	Search   string                 // optional case-insensitive substring on name or description
	SortBy   domain.SortField
	SortDesc bool
	Page     int // 1-based
	PageSize int
}

// Offset returns the number of rows to skip for the current page. It never
// goes negative, even for a filter that skipped normalization.
func (f CampaignFilter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// CampaignRepository defines persistence operations for campaigns. Every read
// path excludes soft-deleted rows; ties in ordering are broken by ID ascending.
type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	// FindByID returns domain.ErrCampaignNotFound for missing or deleted campaigns.
	FindByID(ctx context.Context, id int64) (*domain.Campaign, error)
	// Update persists the mutable fields of c. Returns domain.ErrCampaignNotFound
	// if the campaign was deleted in the meantime.
	Update(ctx context.Context, c *domain.Campaign) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	// List returns a page of visible campaigns and the total matching count.
	List(ctx context.Context, filter CampaignFilter) ([]*domain.Campaign, int64, error)
}

// IdempotencyStore remembers which campaign a creation key produced.
//
// A key is claimed with Reserve before the campaign is written. While the
// claim is pending Lookup reports it as found with campaign ID 0. Remember
// replaces the claim with the real ID and Release drops it after a failed
// create.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error)
	Reserve(ctx context.Context, ownerID int64, key string) (bool, error)
	Remember(ctx context.Context, ownerID int64, key string, campaignID int64) error
	Release(ctx context.Context, ownerID int64, key string) error
}
