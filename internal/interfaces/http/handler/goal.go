package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goalapp "github.com/savings/backend/internal/application/goal"
)

// GoalHandler handles personal and group goal endpoints
type GoalHandler struct {
	BaseHandler
	goalService *goalapp.Service
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *goalapp.Service) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// Create godoc
// @ID           createGoal
// @Summary      Create a goal
// @Description  A goal linked to a group requires the caller to be an active member
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        request body CreateGoalRequest true "Goal details"
// @Success      201 {object} APIResponse[goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	g, err := h.goalService.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, g)
}

// Get godoc
// @ID           getGoal
// @Summary      Get a goal
// @Tags         goals
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	h.withGoal(c, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Get(c.Request.Context(), goalID, userID)
	})
}

// Milestones godoc
// @ID           listGoalMilestones
// @Summary      Goal milestones
// @Description  Achieved and pending milestones of a goal
// @Tags         goals
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Success      200 {object} APIResponse[goalapp.MilestonesResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/milestones [get]
func (h *GoalHandler) Milestones(c *gin.Context) {
	h.withGoal(c, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Milestones(c.Request.Context(), goalID, userID)
	})
}

// ListMine godoc
// @ID           listMyGoals
// @Summary      List my goals
// @Tags         goals
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Title search"
// @Param        status query string false "Goal status" Enums(active, paused, completed, cancelled, overdue)
// @Param        priority query string false "Goal priority" Enums(low, medium, high, urgent)
// @Success      200 {object} APIResponse[[]goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals [get]
func (h *GoalHandler) ListMine(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var q GoalListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	goals, total, err := h.goalService.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, goals, total, filter.Page, filter.PageSize)
}

// ListPublic godoc
// @ID           listPublicGoals
// @Summary      List public goals
// @Tags         goals
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        search query string false "Title search"
// @Success      200 {object} APIResponse[[]goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/public [get]
func (h *GoalHandler) ListPublic(c *gin.Context) {
	var q GoalListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	goals, total, err := h.goalService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, goals, total, filter.Page, filter.PageSize)
}

// ListByGroup godoc
// @ID           listGroupGoals
// @Summary      List a group's goals
// @Tags         goals
// @Produce      json
// @Param        id path string true "Group ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]goalapp.GoalResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id}/goals [get]
func (h *GoalHandler) ListByGroup(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	groupID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var q GoalListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.toFilter()
	goals, total, err := h.goalService.ListByGroup(c.Request.Context(), groupID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, goals, total, filter.Page, filter.PageSize)
}

// Overview godoc
// @ID           getGoalOverview
// @Summary      Goal overview
// @Description  Counts and totals across the caller's goals
// @Tags         goals
// @Produce      json
// @Success      200 {object} APIResponse[goalapp.OverviewResponse]
// @Security     BearerAuth
// @Router       /goals/overview [get]
func (h *GoalHandler) Overview(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	overview, err := h.goalService.Overview(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// Update godoc
// @ID           updateGoal
// @Summary      Update a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Param        request body UpdateGoalRequest true "Goal fields"
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [patch]
func (h *GoalHandler) Update(c *gin.Context) {
	var req UpdateGoalRequest
	h.withGoalBody(c, &req, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Update(c.Request.Context(), goalID, userID, req.toInput())
	})
}

// Contribute godoc
// @ID           contributeToGoal
// @Summary      Add savings to a goal
// @Description  Advances the goal and its milestones; completes the goal at its target
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Param        request body AmountRequest true "Amount"
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	var req AmountRequest
	h.withGoalBody(c, &req, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Contribute(c.Request.Context(), goalID, userID, req.Amount)
	})
}

// Pause godoc
// @ID           pauseGoal
// @Summary      Pause a goal
// @Tags         goals
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/pause [post]
func (h *GoalHandler) Pause(c *gin.Context) {
	h.withGoal(c, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Pause(c.Request.Context(), goalID, userID)
	})
}

// Resume godoc
// @ID           resumeGoal
// @Summary      Resume a goal
// @Tags         goals
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/resume [post]
func (h *GoalHandler) Resume(c *gin.Context) {
	h.withGoal(c, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Resume(c.Request.Context(), goalID, userID)
	})
}

// Complete godoc
// @ID           completeGoal
// @Summary      Mark a goal completed
// @Tags         goals
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/complete [post]
func (h *GoalHandler) Complete(c *gin.Context) {
	h.withGoal(c, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.Complete(c.Request.Context(), goalID, userID)
	})
}

// AddMilestone godoc
// @ID           addGoalMilestone
// @Summary      Add a custom milestone
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id path string true "Goal ID" format(uuid)
// @Param        request body AddMilestoneRequest true "Milestone"
// @Success      200 {object} APIResponse[goalapp.GoalResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/milestones [post]
func (h *GoalHandler) AddMilestone(c *gin.Context) {
	var req AddMilestoneRequest
	h.withGoalBody(c, &req, func(goalID, userID uuid.UUID) (any, error) {
		return h.goalService.AddMilestone(c.Request.Context(), goalID, userID, req.Name, req.TargetAmount, req.Reward)
	})
}

// Delete godoc
// @ID           deleteGoal
// @Summary      Delete a goal
// @Tags         goals
// @Param        id path string true "Goal ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	goalID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.goalService.Delete(c.Request.Context(), goalID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *GoalHandler) withGoal(c *gin.Context, fn func(goalID, userID uuid.UUID) (any, error)) {
	h.withGoalBody(c, nil, fn)
}

// withGoalBody resolves the caller and the :id goal, binds req when given,
// then answers with fn's result
func (h *GoalHandler) withGoalBody(c *gin.Context, req any, fn func(goalID, userID uuid.UUID) (any, error)) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	goalID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if req != nil && !h.bindJSON(c, req) {
		return
	}
	result, err := fn(goalID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
