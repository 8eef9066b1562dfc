package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/campaign-system/internal/api/metrics"
	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry campaign creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

type CampaignHandler struct {
	campaignService ports.CampaignService
}

func NewCampaignHandler(campaignService ports.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// ListCampaigns returns a filtered, sorted page of visible campaigns.
//
// @Summary      List campaigns
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Exact status filter"
// @Param        search     query     string  false  "Case-insensitive substring over name and description"
// @Param        sort_by    query     string  false  "name, amount, start, end, status or created"
// @Param        sort_dir   query     string  false  "asc or desc (default desc)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        page_size  query     int     false  "Page size (default 10, max 100)"
// @Success      200  {object}  campaignListResponse
// @Failure      401  {object}  errorBody
// @Failure      422  {object}  errorBody
// @Router       /v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c echo.Context) error {
	input := ports.ListCampaignsInput{
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort_by"),
		SortDir:  c.QueryParam("sort_dir"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", domain.DefaultPageSize),
	}

	start := time.Now()
	res, err := h.campaignService.ListCampaigns(c.Request().Context(), input)
	metrics.CampaignListDuration.WithLabelValues(string(domain.ParseSortField(input.SortBy))).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCampaignListResponse(res))
}

// GetCampaign returns one campaign by id.
//
// @Summary      Get campaign
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Campaign ID"
// @Success      200  {object}  campaignResponse
// @Failure      400  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	campaign, err := h.campaignService.GetCampaign(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// CreateCampaign creates a campaign owned by the caller.
//
// @Summary      Create campaign
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Client-generated retry key"
// @Param        body             body      createCampaignRequest  true   "Campaign details"
// @Success      201  {object}  campaignResponse
// @Success      200  {object}  campaignResponse  "Replayed idempotent request"
// @Failure      400  {object}  errorBody
// @Failure      409  {object}  errorBody  "Idempotency-Key still in progress"
// @Failure      422  {object}  errorBody
// @Router       /v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.CampaignMutationsTotal.WithLabelValues("create", "rejected").Inc()
		return err
	}

	idemKey := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(idemKey) > maxIdempotencyKeyLen {
		return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}

	res, err := h.campaignService.CreateCampaign(c.Request().Context(), toCreateCampaignInput(claims.AccountID, idemKey, req))
	metrics.CampaignMutationsTotal.WithLabelValues("create", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, campaignPath(res.Campaign.ID))
	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toCampaignResponse(res.Campaign))
}

// UpdateCampaign applies a partial update. Only the owner or an Admin may call it.
//
// @Summary      Update campaign
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Campaign ID"
// @Param        body  body      updateCampaignRequest  true  "Fields to change"
// @Success      200   {object}  campaignResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /v1/campaigns/{id} [patch]
func (h *CampaignHandler) UpdateCampaign(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	campaign, err := h.campaignService.UpdateCampaign(c.Request().Context(), toUpdateCampaignInput(id, claims, req))
	metrics.CampaignMutationsTotal.WithLabelValues("update", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// DeleteCampaign soft-deletes a campaign. Only the owner or an Admin may call it.
//
// @Summary      Delete campaign
// @Tags         campaigns
// @Security     BearerAuth
// @Param        id  path  int  true  "Campaign ID"
// @Success      204
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /v1/campaigns/{id} [delete]
func (h *CampaignHandler) DeleteCampaign(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	err = h.campaignService.DeleteCampaign(c.Request().Context(), ports.DeleteCampaignInput{
		ID:            id,
		RequesterID:   claims.AccountID,
		RequesterRole: claims.Role,
	})
	metrics.CampaignMutationsTotal.WithLabelValues("delete", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	return id, nil
}

// queryInt reads an integer query parameter. Missing or unparsable values
// yield def; range clamping is left to the service.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func mutationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrCampaignNotFound):
		return "not_found"
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return "rejected"
	}
	return "error"
}
