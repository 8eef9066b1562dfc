package handler

import (
	"fmt"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

func campaignPath(id int64) string {
	return fmt.Sprintf("/v1/campaigns/%d", id)
}

func toCampaignResponse(c *domain.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Amount:      c.Amount,
		StartDate:   c.StartDate.UTC().Format(timeLayout),
		EndDate:     c.EndDate.UTC().Format(timeLayout),
		Status:      string(c.Status),
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt.UTC().Format(timeLayout),
		Links:       campaignLinks{Self: campaignPath(c.ID)},
	}
	if c.UpdatedAt != nil {
		resp.UpdatedAt = c.UpdatedAt.UTC().Format(timeLayout)
	}
	return resp
}

func toCampaignListResponse(res *ports.ListCampaignsResult) campaignListResponse {
	items := make([]campaignResponse, 0, len(res.Items))
	for _, c := range res.Items {
		items = append(items, toCampaignResponse(c))
	}
	return campaignListResponse{
		Items: items,
		Pagination: paginationMeta{
			Page:         res.Page,
			PageSize:     res.PageSize,
			TotalRecords: res.TotalRecords,
			TotalPages:   res.TotalPages,
		},
	}
}

func toCreateCampaignInput(ownerID int64, idemKey string, req createCampaignRequest) ports.CreateCampaignInput {
	return ports.CreateCampaignInput{
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		Amount:         req.Amount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         req.Status,
		IdempotencyKey: idemKey,
	}
}

func toUpdateCampaignInput(id int64, claims *domain.Claims, req updateCampaignRequest) ports.UpdateCampaignInput {
	return ports.UpdateCampaignInput{
		ID:            id,
		RequesterID:   claims.AccountID,
		RequesterRole: claims.Role,
		Name:          req.Name,
		Description:   req.Description,
		Amount:        req.Amount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        req.Status,
	}
}
