package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/shopspring/decimal"
)

// RecordInput is the input for recording a contribution
type RecordInput struct {
	UserID   uuid.UUID
	GroupID  uuid.UUID
	Amount   decimal.Decimal
	Status   contribution.Status // empty uses the configured default
	Metadata contribution.Metadata
}

// UpdateInput is the input for editing a contribution
type UpdateInput struct {
	Amount      *decimal.Decimal
	Description *string
	Notes       *string
}

// ListFilter filters contribution listings
type ListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Status   *contribution.Status
	Type     *contribution.Type
	GroupID  *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// ContributionResponse is the API view of a contribution
type ContributionResponse struct {
	ID                  uuid.UUID                  `json:"id"`
	UserID              uuid.UUID                  `json:"user_id"`
	GroupID             uuid.UUID                  `json:"group_id"`
	Amount              decimal.Decimal            `json:"amount"`
	Currency            string                     `json:"currency"`
	Type                contribution.Type          `json:"type"`
	Category            contribution.Category      `json:"category"`
	Description         string                     `json:"description,omitempty"`
	Notes               string                     `json:"notes,omitempty"`
	Status              contribution.Status        `json:"status"`
	PaymentMethod       contribution.PaymentMethod `json:"payment_method"`
	PaymentReference    string                     `json:"payment_reference,omitempty"`
	ContributionDate    time.Time                  `json:"contribution_date"`
	IsMilestone         bool                       `json:"is_milestone"`
	MilestoneType       contribution.MilestoneType `json:"milestone_type,omitempty"`
	PointsEarned        int64                      `json:"points_earned"`
	StreakCount         int                        `json:"streak_count"`
	GroupProgressBefore decimal.Decimal            `json:"group_progress_before"`
	GroupProgressAfter  decimal.Decimal            `json:"group_progress_after"`
	VerifiedBy          *uuid.UUID                 `json:"verified_by,omitempty"`
	VerifiedAt          *time.Time                 `json:"verified_at,omitempty"`
	RequestKey          string                     `json:"request_key,omitempty"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
	Version             int                        `json:"version"`
}

// ToContributionResponse converts a domain Contribution to a response
func ToContributionResponse(c *contribution.Contribution) ContributionResponse {
	return ContributionResponse{
		ID:                  c.ID,
		UserID:              c.UserID,
		GroupID:             c.GroupID,
		Amount:              c.Amount,
		Currency:            string(c.Currency),
		Type:                c.Type,
		Category:            c.Category,
		Description:         c.Description,
		Notes:               c.Notes,
		Status:              c.Status,
		PaymentMethod:       c.PaymentMethod,
		PaymentReference:    c.PaymentReference,
		ContributionDate:    c.ContributionDate,
		IsMilestone:         c.IsMilestone,
		MilestoneType:       c.MilestoneType,
		PointsEarned:        c.PointsEarned,
		StreakCount:         c.StreakCount,
		GroupProgressBefore: c.GroupProgressBefore,
		GroupProgressAfter:  c.GroupProgressAfter,
		VerifiedBy:          c.VerifiedBy,
		VerifiedAt:          c.VerifiedAt,
		RequestKey:          c.RequestKey,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		Version:             c.Version,
	}
}

// ToContributionResponses converts a slice of contributions
func ToContributionResponses(items []*contribution.Contribution) []ContributionResponse {
	out := make([]ContributionResponse, len(items))
	for i, c := range items {
		out[i] = ToContributionResponse(c)
	}
	return out
}

// StatsResponse summarizes confirmed contributions
type StatsResponse struct {
	TotalAmount        decimal.Decimal `json:"total_amount"`
	TotalContributions int64           `json:"total_contributions"`
	AverageAmount      decimal.Decimal `json:"average_amount"`
	MaxAmount          decimal.Decimal `json:"max_amount"`
	MinAmount          decimal.Decimal `json:"min_amount"`
}
