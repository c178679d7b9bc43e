package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/entity"

	"gorm.io/gorm"
)

// GetOrCreateTag resolves a tag by (user, name), creating it when missing.
// Lookups are scoped to the owner, so identical names held by other users
// are never reused.
func (r *GormRepository) GetOrCreateTag(ctx context.Context, userID uint, name string) (*entity.DbTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if userID == 0 || trimmed == "" {
		return nil, fmt.Errorf("tag requires an owner and a name")
	}

	var tag entity.DbTag
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, trimmed).
		First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = entity.DbTag{UserID: userID, Name: trimmed}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		// 并发创建撞到 (user_id, name) 唯一索引时重读已有记录
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing entity.DbTag
			if findErr := r.db.WithContext(ctx).
				Where("user_id = ? AND name = ?", userID, trimmed).
				First(&existing).Error; findErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &tag, nil
}

// GetTag loads a single tag scoped to its owner. A tag held by another
// user yields gorm.ErrRecordNotFound.
func (r *GormRepository) GetTag(ctx context.Context, userID, id uint) (*entity.DbTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return nil, fmt.Errorf("invalid tag id")
	}

	var tag entity.DbTag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTags returns the user's tags with their recipe counts. With
// AssignedOnly set, tags not attached to any recipe are filtered out; the
// grouping keeps each tag unique even when attached to several recipes.
func (r *GormRepository) ListTags(ctx context.Context, params *entity.CatalogQuery) ([]entity.DbTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if params == nil || params.UserID == 0 {
		return nil, fmt.Errorf("tag query requires a user")
	}

	query := r.db.WithContext(ctx).
		Model(&entity.DbTag{}).
		Select("tags.*, COUNT(recipe_tags.recipe_id) as recipe_count").
		Joins("LEFT JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
		Where("tags.user_id = ?", params.UserID).
		Group("tags.id").
		Order("tags.name DESC")

	if params.AssignedOnly {
		query = query.Having("COUNT(recipe_tags.recipe_id) > 0")
	}

	var tags []entity.DbTag
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag renames a tag in place. Ownership is folded into the WHERE
// clause: a mismatch looks exactly like a missing record.
func (r *GormRepository) UpdateTag(ctx context.Context, userID, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid tag id")
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&entity.DbTag{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTag removes a tag and detaches it from any recipes referencing it.
func (r *GormRepository) DeleteTag(ctx context.Context, userID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid tag id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbTag{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("tag_id = ?", id).Delete(&entity.DbRecipeTag{}).Error
	})
}
