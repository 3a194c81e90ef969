package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	groupapp "github.com/savings/backend/internal/application/group"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/domain/shared/valueobject"
)

// GroupHandler handles savings group endpoints
type GroupHandler struct {
	BaseHandler
	groupService *groupapp.Service
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *groupapp.Service) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (q GroupListQuery) toFilter() groupapp.ListFilter {
	q.Normalize()
	filter := groupapp.ListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
	}
	if q.Status != "" {
		s := group.Status(q.Status)
		filter.Status = &s
	}
	return filter
}

// Create godoc
// @ID           createGroup
// @Summary      Create a group
// @Description  Create a savings group with the caller as its first admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group details"
// @Success      201 {object} APIResponse[groupapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	g, err := h.groupService.Create(c.Request.Context(), userID, groupapp.CreateInput{
		Name:         req.Name,
		Description:  req.Description,
		Type:         group.Type(req.Type),
		Privacy:      group.Privacy(req.Privacy),
		MaxMembers:   req.MaxMembers,
		TotalGoal:    req.TotalGoal,
		Currency:     valueobject.Currency(req.Currency),
		GoalDeadline: req.GoalDeadline,
		Rules:        req.Rules.toRules(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, g)
}

// Get godoc
// @ID           getGroup
// @Summary      Get a group
// @Description  Members see any group; non-members only see public groups
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Get(c.Request.Context(), groupID, userID)
	})
}

// ListMine godoc
// @ID           listMyGroups
// @Summary      List my groups
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Name search"
// @Param        status query string false "Group status" Enums(active, paused, completed, cancelled)
// @Success      200 {object} APIResponse[[]groupapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups [get]
func (h *GroupHandler) ListMine(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var q GroupListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	groups, total, err := h.groupService.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, groups, total, filter.Page, filter.PageSize)
}

// Discover godoc
// @ID           discoverGroups
// @Summary      Discover public groups
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Name search"
// @Success      200 {object} APIResponse[[]groupapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/discover [get]
func (h *GroupHandler) Discover(c *gin.Context) {
	var q GroupListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	groups, total, err := h.groupService.Discover(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, groups, total, filter.Page, filter.PageSize)
}

// Join godoc
// @ID           joinGroup
// @Summary      Join a group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/join [post]
func (h *GroupHandler) Join(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Join(c.Request.Context(), groupID, userID)
	})
}

// Leave godoc
// @ID           leaveGroup
// @Summary      Leave a group
// @Description  The last admin cannot leave
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/leave [post]
func (h *GroupHandler) Leave(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Leave(c.Request.Context(), groupID, userID)
	})
}

// Invite godoc
// @ID           inviteToGroup
// @Summary      Invite a user
// @Description  Admins invite a registered user by email
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body InviteRequest true "Invitee"
// @Success      201 {object} APIResponse[groupapp.InvitationResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/invitations [post]
func (h *GroupHandler) Invite(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req InviteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.groupService.Invite(c.Request.Context(), groupID, userID, req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// AcceptInvitation godoc
// @ID           acceptGroupInvitation
// @Summary      Accept an invitation
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        invitationId path string true "Invitation ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/invitations/{invitationId}/accept [post]
func (h *GroupHandler) AcceptInvitation(c *gin.Context) {
	h.withInvitation(c, h.groupService.AcceptInvitation)
}

// DeclineInvitation godoc
// @ID           declineGroupInvitation
// @Summary      Decline an invitation
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        invitationId path string true "Invitation ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/invitations/{invitationId}/decline [post]
func (h *GroupHandler) DeclineInvitation(c *gin.Context) {
	h.withInvitation(c, h.groupService.DeclineInvitation)
}

// PendingInvitations godoc
// @ID           listMyInvitations
// @Summary      List my pending invitations
// @Tags         groups
// @Produce      json
// @Success      200 {object} APIResponse[[]groupapp.InvitationResponse]
// @Security     BearerAuth
// @Router       /groups/invitations [get]
func (h *GroupHandler) PendingInvitations(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	invs, err := h.groupService.PendingInvitations(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invs)
}

// Promote godoc
// @ID           promoteGroupMember
// @Summary      Promote a member to admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body PromoteRequest true "Member"
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/admins [post]
func (h *GroupHandler) Promote(c *gin.Context) {
	var req PromoteRequest
	h.withGroupBody(c, &req, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Promote(c.Request.Context(), groupID, userID, uuid.MustParse(req.UserID))
	})
}

// Update godoc
// @ID           updateGroup
// @Summary      Update a group
// @Description  Admins change group details; omitted fields keep their value
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        request body UpdateGroupRequest true "Group fields"
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [patch]
func (h *GroupHandler) Update(c *gin.Context) {
	var req UpdateGroupRequest
	h.withGroupBody(c, &req, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Update(c.Request.Context(), groupID, userID, req.toInput())
	})
}

// Pause godoc
// @ID           pauseGroup
// @Summary      Pause a group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/pause [post]
func (h *GroupHandler) Pause(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Pause(c.Request.Context(), groupID, userID)
	})
}

// Resume godoc
// @ID           resumeGroup
// @Summary      Resume a paused group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.GroupResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/resume [post]
func (h *GroupHandler) Resume(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Resume(c.Request.Context(), groupID, userID)
	})
}

// Delete godoc
// @ID           deleteGroup
// @Summary      Cancel a group
// @Description  Soft delete; the group is kept with status cancelled
// @Tags         groups
// @Param        id path string true "Group ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), groupID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats godoc
// @ID           getGroupStats
// @Summary      Group statistics
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Success      200 {object} APIResponse[groupapp.StatsResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/stats [get]
func (h *GroupHandler) Stats(c *gin.Context) {
	h.withGroup(c, func(groupID, userID uuid.UUID) (any, error) {
		return h.groupService.Stats(c.Request.Context(), groupID, userID)
	})
}

func (h *GroupHandler) withGroup(c *gin.Context, fn func(groupID, userID uuid.UUID) (any, error)) {
	h.withGroupBody(c, nil, fn)
}

// withGroupBody resolves the caller and the :id group, binds req when given,
// then answers with fn's result
func (h *GroupHandler) withGroupBody(c *gin.Context, req any, fn func(groupID, userID uuid.UUID) (any, error)) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if req != nil && !h.bindJSON(c, req) {
		return
	}
	result, err := fn(groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *GroupHandler) withInvitation(c *gin.Context, fn func(ctx context.Context, groupID, invitationID, userID uuid.UUID) (*groupapp.GroupResponse, error)) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	invitationID, ok := h.pathUUID(c, "invitationId")
	if !ok {
		return
	}
	g, err := fn(c.Request.Context(), groupID, invitationID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, g)
}
