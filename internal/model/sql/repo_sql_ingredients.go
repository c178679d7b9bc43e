package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/entity"

	"gorm.io/gorm"
)

// GetOrCreateIngredient resolves an ingredient by (user, name), creating it
// when missing. Mirrors GetOrCreateTag over the separate ingredients table;
// there is deliberately no cross-type lookup.
func (r *GormRepository) GetOrCreateIngredient(ctx context.Context, userID uint, name string) (*entity.DbIngredient, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if userID == 0 || trimmed == "" {
		return nil, fmt.Errorf("ingredient requires an owner and a name")
	}

	var ingredient entity.DbIngredient
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, trimmed).
		First(&ingredient).Error
	if err == nil {
		return &ingredient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ingredient = entity.DbIngredient{UserID: userID, Name: trimmed}
	if err := r.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		// 并发创建撞到 (user_id, name) 唯一索引时重读已有记录
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing entity.DbIngredient
			if findErr := r.db.WithContext(ctx).
				Where("user_id = ? AND name = ?", userID, trimmed).
				First(&existing).Error; findErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &ingredient, nil
}

// GetIngredient loads a single ingredient scoped to its owner. An
// ingredient held by another user yields gorm.ErrRecordNotFound.
func (r *GormRepository) GetIngredient(ctx context.Context, userID, id uint) (*entity.DbIngredient, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return nil, fmt.Errorf("invalid ingredient id")
	}

	var ingredient entity.DbIngredient
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// ListIngredients returns the user's ingredients with their recipe counts,
// optionally restricted to those assigned to at least one recipe.
func (r *GormRepository) ListIngredients(ctx context.Context, params *entity.CatalogQuery) ([]entity.DbIngredient, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if params == nil || params.UserID == 0 {
		return nil, fmt.Errorf("ingredient query requires a user")
	}

	query := r.db.WithContext(ctx).
		Model(&entity.DbIngredient{}).
		Select("ingredients.*, COUNT(recipe_ingredients.recipe_id) as recipe_count").
		Joins("LEFT JOIN recipe_ingredients ON recipe_ingredients.ingredient_id = ingredients.id").
		Where("ingredients.user_id = ?", params.UserID).
		Group("ingredients.id").
		Order("ingredients.name DESC")

	if params.AssignedOnly {
		query = query.Having("COUNT(recipe_ingredients.recipe_id) > 0")
	}

	var ingredients []entity.DbIngredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// UpdateIngredient renames an ingredient in place, scoped to the owner.
func (r *GormRepository) UpdateIngredient(ctx context.Context, userID, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid ingredient id")
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&entity.DbIngredient{}).
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

// DeleteIngredient removes an ingredient and detaches it from any recipes.
func (r *GormRepository) DeleteIngredient(ctx context.Context, userID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid ingredient id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbIngredient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("ingredient_id = ?", id).Delete(&entity.DbRecipeIngredient{}).Error
	})
}
