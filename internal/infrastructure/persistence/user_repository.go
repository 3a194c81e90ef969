package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return identity.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Save updates the user if its version is unchanged since it was loaded
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := updateVersioned(r.db.WithContext(ctx), "user", model, &model.AggregateModel); err != nil {
		return err
	}
	user.IncrementVersion()
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a user by ID and locks the row until the transaction ends
func (r *GormUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// FindByLogin finds a user whose username or email matches login, case-insensitively
func (r *GormUserRepository) FindByLogin(ctx context.Context, login string) (*identity.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, identity.ErrUserNotFound
	}
	return r.findOne(ctx, r.db.WithContext(ctx).
		Where("LOWER(username) = ? OR LOWER(email) = ?", login, login))
}

func (r *GormUserRepository) findOne(ctx context.Context, query *gorm.DB) (*identity.User, error) {
	var model models.UserModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user := model.ToDomain()
	groups, err := r.groupIDs(ctx, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	user.GroupIDs = append(user.GroupIDs, groups[user.ID]...)
	return user, nil
}

// FindByIDs returns the users with the given IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	if len(ids) == 0 {
		return []*identity.User{}, nil
	}
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	groups, err := r.groupIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
		users[i].GroupIDs = append(users[i].GroupIDs, groups[users[i].ID]...)
	}
	return users, nil
}

// groupIDs loads the group back-references of the given users
func (r *GormUserRepository) groupIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	var links []models.UserGroupModel
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load user groups: %w", err)
	}
	out := make(map[uuid.UUID][]uuid.UUID, len(userIDs))
	for _, l := range links {
		out[l.UserID] = append(out[l.UserID], l.GroupID)
	}
	return out, nil
}

// ExistsByUsername checks if a username is taken, case-insensitively
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
}

// ExistsByEmail checks if an email is registered, case-insensitively
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *GormUserRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where(cond, arg).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return count > 0, nil
}

// AttachGroup records that the user belongs to the group; repeated calls are no-ops
func (r *GormUserRepository) AttachGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	link := models.UserGroupModel{UserID: userID, GroupID: groupID, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error; err != nil {
		return fmt.Errorf("attach group %s to user %s: %w", groupID, userID, err)
	}
	return nil
}

// DetachMember removes one user's back-reference to the group
func (r *GormUserRepository) DetachMember(ctx context.Context, userID, groupID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserGroupModel{}).Error; err != nil {
		return fmt.Errorf("detach user %s from group %s: %w", userID, groupID, err)
	}
	return nil
}

// DetachGroup removes the group from every user and returns how many users were affected
func (r *GormUserRepository) DetachGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.UserGroupModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("detach group %s: %w", groupID, result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
