package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

// CampaignRepository keeps every campaign, deleted or not, in a map.
type CampaignRepository struct {
	mu        sync.Mutex
	campaigns map[int64]*domain.Campaign
	idCounter int64
}

var _ ports.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: make(map[int64]*domain.Campaign)}
}

func clone(c *domain.Campaign) *domain.Campaign {
	cp := *c
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

func (r *CampaignRepository) Create(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.idCounter++
	c.ID = r.idCounter
	r.campaigns[c.ID] = clone(c)
	return nil
}

func (r *CampaignRepository) FindByID(_ context.Context, id int64) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok || c.IsDeleted {
		return nil, domain.ErrCampaignNotFound
	}
	return clone(c), nil
}

func (r *CampaignRepository) Update(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.campaigns[c.ID]
	if !ok || stored.IsDeleted {
		return domain.ErrCampaignNotFound
	}
	updated := clone(c)
	updated.OwnerID = stored.OwnerID
	updated.CreatedAt = stored.CreatedAt
	updated.IsDeleted = false
	r.campaigns[c.ID] = updated
	return nil
}

func (r *CampaignRepository) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok || c.IsDeleted {
		return domain.ErrCampaignNotFound
	}
	at = at.UTC()
	c.IsDeleted = true
	c.UpdatedAt = &at
	return nil
}

func (r *CampaignRepository) List(_ context.Context, filter ports.CampaignFilter) ([]*domain.Campaign, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]*domain.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if c.IsDeleted {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		matched = append(matched, c)
	}

	slices.SortFunc(matched, func(a, b *domain.Campaign) int {
		if d := compareBy(filter.SortBy, a, b); d != 0 {
			if filter.SortDesc {
				return -d
			}
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := int64(len(matched))
	start := min(max(filter.Offset(), 0), len(matched))
	end := min(start+max(filter.PageSize, 0), len(matched))

	page := make([]*domain.Campaign, 0, end-start)
	for _, c := range matched[start:end] {
		page = append(page, clone(c))
	}
	return page, total, nil
}

func compareBy(field domain.SortField, a, b *domain.Campaign) int {
	switch field {
	case domain.SortByName:
		return cmp.Compare(a.Name, b.Name)
	case domain.SortByAmount:
		return cmp.Compare(a.Amount, b.Amount)
	case domain.SortByStart:
		return a.StartDate.Compare(b.StartDate)
	case domain.SortByEnd:
		return a.EndDate.Compare(b.EndDate)
	case domain.SortByStatus:
		return cmp.Compare(a.Status, b.Status)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
