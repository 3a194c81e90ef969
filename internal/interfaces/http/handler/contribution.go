package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/ledger"
)

// ContributionHandler handles the contribution ledger endpoints
type ContributionHandler struct {
	BaseHandler
	ledgerService *ledger.Service
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(ledgerService *ledger.Service) *ContributionHandler {
	return &ContributionHandler{ledgerService: ledgerService}
}

// Record godoc
// @ID           recordContribution
// @Summary      Record a contribution
// @Description  Credits the caller's savings and the group's progress in one transaction.
// @Description  A repeated request key returns the original contribution.
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Deduplication key, used when request_key is empty"
// @Param        request body RecordContributionRequest true "Contribution"
// @Success      201 {object} APIResponse[ledger.ContributionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions [post]
func (h *ContributionHandler) Record(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req RecordContributionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.ledgerService.RecordContribution(c.Request.Context(), req.toInput(userID, c.GetHeader(RequestKeyHeader)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get godoc
// @ID           getContribution
// @Summary      Get a contribution
// @Description  Visible to its contributor and the group's admins
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Contribution ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.ContributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions/{id} [get]
func (h *ContributionHandler) Get(c *gin.Context) {
	h.transition(c, h.ledgerService.Get)
}

// Cancel godoc
// @ID           cancelContribution
// @Summary      Cancel a contribution
// @Description  Reverses the group's progress. The contributor's lifetime total is kept.
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Contribution ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.ContributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions/{id}/cancel [post]
func (h *ContributionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.ledgerService.Cancel)
}

// Verify godoc
// @ID           verifyContribution
// @Summary      Verify a pending contribution
// @Description  Group admins confirm a pending contribution, crediting the group and contributor
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Contribution ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.ContributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions/{id}/verify [post]
func (h *ContributionHandler) Verify(c *gin.Context) {
	h.transition(c, h.ledgerService.Verify)
}

// Refund godoc
// @ID           refundContribution
// @Summary      Refund a contribution
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Contribution ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.ContributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions/{id}/refund [post]
func (h *ContributionHandler) Refund(c *gin.Context) {
	h.transition(c, h.ledgerService.Refund)
}

// Update godoc
// @ID           updateContribution
// @Summary      Edit a contribution
// @Description  Amount changes are applied to the group's progress as a delta
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Param        id path string true "Contribution ID" format(uuid)
// @Param        request body UpdateContributionRequest true "Contribution fields"
// @Success      200 {object} APIResponse[ledger.ContributionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions/{id} [patch]
func (h *ContributionHandler) Update(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateContributionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.ledgerService.Update(c.Request.Context(), id, userID, ledger.UpdateInput{
		Amount:      req.Amount,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMine godoc
// @ID           listMyContributions
// @Summary      List my contributions
// @Tags         contributions
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(contribution_date)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        status query string false "Status" Enums(pending, confirmed, cancelled, refunded)
// @Param        type query string false "Type" Enums(regular, bonus, catch-up, milestone, penalty)
// @Param        group_id query string false "Group ID" format(uuid)
// @Param        date_from query string false "From date (YYYY-MM-DD)"
// @Param        date_to query string false "To date (YYYY-MM-DD), inclusive"
// @Success      200 {object} APIResponse[[]ledger.ContributionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contributions [get]
func (h *ContributionHandler) ListMine(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var q ContributionListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	items, total, err := h.ledgerService.ListByUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListByGroup godoc
// @ID           listGroupContributions
// @Summary      List a group's contributions
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        status query string false "Status" Enums(pending, confirmed, cancelled, refunded)
// @Success      200 {object} APIResponse[[]ledger.ContributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/contributions [get]
func (h *ContributionHandler) ListByGroup(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var q ContributionListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	items, total, err := h.ledgerService.ListByGroup(c.Request.Context(), groupID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UserStats godoc
// @ID           getMyContributionStats
// @Summary      My contribution statistics
// @Tags         contributions
// @Produce      json
// @Success      200 {object} APIResponse[ledger.StatsResponse]
// @Security     BearerAuth
// @Router       /contributions/stats [get]
func (h *ContributionHandler) UserStats(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	stats, err := h.ledgerService.UserStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GroupStats godoc
// @ID           getGroupContributionStats
// @Summary      A group's contribution statistics
// @Tags         contributions
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.StatsResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/contributions/stats [get]
func (h *ContributionHandler) GroupStats(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.ledgerService.GroupStats(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// transition runs a single-contribution operation on :id for the caller
func (h *ContributionHandler) transition(c *gin.Context, fn func(ctx context.Context, id, actorID uuid.UUID) (*ledger.ContributionResponse, error)) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
