package sql

import (
	"context"
	"fmt"

	"recipebox/internal/entity"

	"gorm.io/gorm"
)

// CreateRecipe inserts a new recipe row. Associations are attached separately
// via ReplaceRecipeTags / ReplaceRecipeIngredients.
func (r *GormRepository) CreateRecipe(ctx context.Context, recipe *entity.DbRecipe) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if recipe == nil {
		return fmt.Errorf("recipe is nil")
	}
	if recipe.UserID == 0 {
		return fmt.Errorf("recipe owner is required")
	}
	return r.db.WithContext(ctx).Omit("Tags", "Ingredients").Create(recipe).Error
}

// GetRecipe loads a recipe with its tags and ingredients, scoped to the owner.
// A recipe owned by somebody else is reported as gorm.ErrRecordNotFound.
func (r *GormRepository) GetRecipe(ctx context.Context, userID, id uint) (*entity.DbRecipe, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return nil, fmt.Errorf("invalid recipe id")
	}

	var recipe entity.DbRecipe
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("user_id = ?", userID).
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes retrieves paginated recipes owned by the querying user.
// Tag and ingredient id filters use OR semantics within each set (any match
// qualifies the recipe) and AND semantics between the two sets. Grouping on
// the recipe id keeps the result free of join duplicates.
func (r *GormRepository) ListRecipes(ctx context.Context, params *entity.RecipeQuery) ([]entity.DbRecipe, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if params == nil || params.UserID == 0 {
		return nil, nil, fmt.Errorf("recipe query requires a user")
	}

	query := r.db.WithContext(ctx).
		Model(&entity.DbRecipe{}).
		Preload("Tags").
		Preload("Ingredients").
		Where("recipes.user_id = ?", params.UserID)

	filtered := false
	if len(params.TagIDs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Where("recipe_tags.tag_id IN ?", params.TagIDs)
		filtered = true
	}
	if len(params.IngredientIDs) > 0 {
		query = query.
			Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipes.id").
			Where("recipe_ingredients.ingredient_id IN ?", params.IngredientIDs)
		filtered = true
	}
	if filtered {
		query = query.Group("recipes.id")
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params.Page > 0 {
		page = int(params.Page)
	}
	if params.PageSize > 0 {
		pageSize = int(params.PageSize)
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	// 默认按创建先后倒序（最新的在前）
	var recipes []entity.DbRecipe
	if err := query.Order("recipes.id DESC").Offset(offset).Limit(pageSize).Find(&recipes).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(totalCount, page, pageSize)
	return recipes, meta, nil
}

// UpdateRecipe applies column updates to a recipe owned by userID. The owner
// column itself is never part of the update map.
func (r *GormRepository) UpdateRecipe(ctx context.Context, userID, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid recipe id")
	}
	if len(updates) == 0 {
		return nil
	}
	delete(updates, "user_id")

	result := r.db.WithContext(ctx).
		Model(&entity.DbRecipe{}).
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

// DeleteRecipe removes a recipe and its association rows. Tags and
// ingredients themselves are left in place even when orphaned.
func (r *GormRepository) DeleteRecipe(ctx context.Context, userID, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || id == 0 {
		return fmt.Errorf("invalid recipe id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbRecipe{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entity.DbRecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entity.DbRecipeIngredient{}).Error; err != nil {
			return err
		}
		return nil
	})
}

// ReplaceRecipeTags replaces the full tag set of a recipe. An empty slice
// clears the relation. Callers are expected to have verified ownership of
// both the recipe and the tags beforehand.
func (r *GormRepository) ReplaceRecipeTags(ctx context.Context, recipeID uint, tags []entity.DbTag) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if recipeID == 0 {
		return fmt.Errorf("invalid recipe id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe entity.DbRecipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
}

// ReplaceRecipeIngredients replaces the full ingredient set of a recipe.
func (r *GormRepository) ReplaceRecipeIngredients(ctx context.Context, recipeID uint, ingredients []entity.DbIngredient) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if recipeID == 0 {
		return fmt.Errorf("invalid recipe id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe entity.DbRecipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Ingredients").Replace(ingredients)
	})
}
