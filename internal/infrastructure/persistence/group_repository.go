package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/group"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository implements group.Repository using GORM.
// Members and invitations are stored in their own tables and written with the group.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// FindByID finds a group with its members and invitations
func (r *GormGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a group and locks its row until the transaction ends
func (r *GormGroupRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormGroupRepository) findOne(ctx context.Context, query *gorm.DB, id uuid.UUID) (*group.Group, error) {
	var model models.GroupModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group %s: %w", id, err)
	}
	rows := []models.GroupModel{model}
	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, err
	}
	return rows[0].ToDomain(), nil
}

// FindAll lists groups matching the filter with the total count before paging
func (r *GormGroupRepository) FindAll(ctx context.Context, filter group.Filter) ([]*group.Group, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.GroupModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}

	var rows []models.GroupModel
	if err := query.
		Order(groupSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find groups: %w", err)
	}
	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, 0, err
	}

	groups := make([]*group.Group, len(rows))
	for i := range rows {
		groups[i] = rows[i].ToDomain()
	}
	return groups, total, nil
}

func (r *GormGroupRepository) applyFilter(query *gorm.DB, filter group.Filter) *gorm.DB {
	if pattern := filter.SearchPattern(); pattern != "" {
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.MemberID != nil {
		query = query.Where("id IN (?)", r.db.Model(&models.GroupMemberModel{}).
			Select("group_id").
			Where("user_id = ? AND is_active = ?", *filter.MemberID, true))
	}
	if filter.Privacy != nil {
		query = query.Where("privacy = ?", *filter.Privacy)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.InvitedEmail)); email != "" {
		query = query.Where("id IN (?)", r.db.Model(&models.GroupInvitationModel{}).
			Select("group_id").
			Where("email = ? AND status = ?", email, group.InvitationPending))
	}
	return query
}

// loadChildren fills in members and invitations for the given rows
func (r *GormGroupRepository) loadChildren(ctx context.Context, rows []models.GroupModel) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
		index[rows[i].ID] = i
	}

	var members []models.GroupMemberModel
	if err := r.db.WithContext(ctx).
		Where("group_id IN ?", ids).
		Order("joined_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return fmt.Errorf("load group members: %w", err)
	}
	for _, m := range members {
		i := index[m.GroupID]
		rows[i].Members = append(rows[i].Members, m)
	}

	var invitations []models.GroupInvitationModel
	if err := r.db.WithContext(ctx).
		Where("group_id IN ?", ids).
		Order("invited_at ASC, id ASC").
		Find(&invitations).Error; err != nil {
		return fmt.Errorf("load group invitations: %w", err)
	}
	for _, inv := range invitations {
		i := index[inv.GroupID]
		rows[i].Invitations = append(rows[i].Invitations, inv)
	}
	return nil
}

// Create inserts a new group with its members and invitations
func (r *GormGroupRepository) Create(ctx context.Context, g *group.Group) error {
	model := models.GroupModelFromDomain(g)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		return saveGroupChildren(tx, model)
	})
}

// Save updates the group with a version check, then syncs members and invitations
func (r *GormGroupRepository) Save(ctx context.Context, g *group.Group) error {
	model := models.GroupModelFromDomain(g)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, "group", model, &model.AggregateModel, clause.Associations); err != nil {
			return err
		}
		return saveGroupChildren(tx, model)
	})
	if err != nil {
		return err
	}
	g.IncrementVersion()
	return nil
}

// saveGroupChildren upserts members and invitations. Membership records are
// never removed by the domain, so only invitations are pruned.
func saveGroupChildren(tx *gorm.DB, model *models.GroupModel) error {
	for i := range model.Members {
		if err := tx.Save(&model.Members[i]).Error; err != nil {
			return fmt.Errorf("save group member: %w", err)
		}
	}

	invitationIDs := make([]uuid.UUID, len(model.Invitations))
	for i := range model.Invitations {
		invitationIDs[i] = model.Invitations[i].ID
	}
	prune := tx.Where("group_id = ?", model.ID)
	if len(invitationIDs) > 0 {
		prune = prune.Where("id NOT IN ?", invitationIDs)
	}
	if err := prune.Delete(&models.GroupInvitationModel{}).Error; err != nil {
		return fmt.Errorf("prune group invitations: %w", err)
	}
	for i := range model.Invitations {
		if err := tx.Save(&model.Invitations[i]).Error; err != nil {
			return fmt.Errorf("save group invitation: %w", err)
		}
	}
	return nil
}

// Ensure GormGroupRepository implements group.Repository
var _ group.Repository = (*GormGroupRepository)(nil)
