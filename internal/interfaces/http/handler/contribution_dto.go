package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/ledger"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RequestKeyHeader lets clients supply the deduplication key as a header
const RequestKeyHeader = "Idempotency-Key"

// RecordContributionRequest represents the request body for recording a contribution
type RecordContributionRequest struct {
	GroupID          string          `json:"group_id" binding:"required,uuid"`
	Amount           decimal.Decimal `json:"amount" binding:"required,positive_amount" swaggertype:"string" example:"250.00"`
	Status           string          `json:"status" binding:"omitempty,oneof=pending confirmed"`
	Type             string          `json:"type" binding:"omitempty,oneof=regular bonus catch-up milestone penalty"`
	Category         string          `json:"category" binding:"omitempty,oneof=savings emergency vacation education gift investment other"`
	Currency         string          `json:"currency" binding:"omitempty,currency"`
	Description      string          `json:"description" binding:"omitempty,max=200"`
	Notes            string          `json:"notes" binding:"omitempty,max=500"`
	PaymentMethod    string          `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer upi card digital_wallet other"`
	PaymentReference string          `json:"payment_reference" binding:"omitempty,max=100"`
	ContributionDate *time.Time      `json:"contribution_date"`
	IsMilestone      bool            `json:"is_milestone"`
	MilestoneType    string          `json:"milestone_type" binding:"omitempty,oneof=first_contribution weekly_goal monthly_goal halfway_mark final_push streak_bonus"`
	RequestKey       string          `json:"request_key" binding:"omitempty,max=100"`
}

func (r RecordContributionRequest) toInput(userID uuid.UUID, headerKey string) ledger.RecordInput {
	meta := contribution.Metadata{
		Type:             contribution.Type(r.Type),
		Category:         contribution.Category(r.Category),
		Currency:         valueobject.Currency(r.Currency),
		Description:      r.Description,
		Notes:            r.Notes,
		PaymentMethod:    contribution.PaymentMethod(r.PaymentMethod),
		PaymentReference: r.PaymentReference,
		IsMilestone:      r.IsMilestone,
		MilestoneType:    contribution.MilestoneType(r.MilestoneType),
		RequestKey:       r.RequestKey,
	}
	if meta.RequestKey == "" {
		meta.RequestKey = headerKey
	}
	if r.ContributionDate != nil {
		meta.ContributionDate = *r.ContributionDate
	}
	return ledger.RecordInput{
		UserID:   userID,
		GroupID:  uuid.MustParse(r.GroupID),
		Amount:   r.Amount,
		Status:   contribution.Status(r.Status),
		Metadata: meta,
	}
}

// UpdateContributionRequest edits a contribution; omitted fields keep their value
type UpdateContributionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,positive_amount" swaggertype:"string"`
	Description *string          `json:"description" binding:"omitempty,max=200"`
	Notes       *string          `json:"notes" binding:"omitempty,max=500"`
}

// ContributionListQuery filters contribution listings
type ContributionListQuery struct {
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string    `form:"order_by"`
	OrderDir string    `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Status   string    `form:"status" binding:"omitempty,oneof=pending confirmed cancelled refunded"`
	Type     string    `form:"type" binding:"omitempty,oneof=regular bonus catch-up milestone penalty"`
	GroupID  string    `form:"group_id" binding:"omitempty,uuid"`
	DateFrom time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   time.Time `form:"date_to" time_format:"2006-01-02"`
}

func (q ContributionListQuery) toFilter() ledger.ListFilter {
	filter := ledger.ListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "contribution_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	if q.Status != "" {
		s := contribution.Status(q.Status)
		filter.Status = &s
	}
	if q.Type != "" {
		t := contribution.Type(q.Type)
		filter.Type = &t
	}
	if q.GroupID != "" {
		id := uuid.MustParse(q.GroupID)
		filter.GroupID = &id
	}
	if !q.DateFrom.IsZero() {
		from := q.DateFrom
		filter.DateFrom = &from
	}
	if !q.DateTo.IsZero() {
		// last instant of the requested day
		to := q.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.DateTo = &to
	}
	return filter
}
