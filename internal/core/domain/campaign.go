package domain

import "time"

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "Draft"
	StatusActive    CampaignStatus = "Active"
	StatusPaused    CampaignStatus = "Paused"
	StatusCompleted CampaignStatus = "Completed"
	StatusCancelled CampaignStatus = "Cancelled"
)

// CampaignStatuses lists every valid status in declaration order.
var CampaignStatuses = []CampaignStatus{
	StatusDraft,
	StatusActive,
	StatusPaused,
	StatusCompleted,
	StatusCancelled,
}

// ParseCampaignStatus reports whether s names a known status.
func ParseCampaignStatus(s string) (CampaignStatus, bool) {
	for _, st := range CampaignStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Campaign is the protected record aggregate. OwnerID is fixed at creation.
// Soft-deleted campaigns stay in storage but are invisible to every read path.
type Campaign struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Status      CampaignStatus `json:"status"`
	OwnerID     int64          `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	IsDeleted   bool           `json:"-"`
}
