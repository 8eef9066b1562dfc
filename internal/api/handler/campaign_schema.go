package handler

import (
	"time"
)

const timeLayout = time.RFC3339

// ErrorBody is the JSON envelope for every non-2xx response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// errorBody keeps the swagger annotations short.
type errorBody = ErrorBody

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type createCampaignRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Status      string    `json:"status"`
}

// updateCampaignRequest is the PATCH body; absent fields stay nil.
type updateCampaignRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Amount      *float64   `json:"amount"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type campaignResponse struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Status      string        `json:"status"`
	OwnerID     int64         `json:"owner_id"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at,omitempty"`
	Links       campaignLinks `json:"_links"`
}

type campaignLinks struct {
	Self string `json:"self"`
}

type paginationMeta struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
}

type campaignListResponse struct {
	Items      []campaignResponse `json:"items"`
	Pagination paginationMeta     `json:"pagination"`
}
