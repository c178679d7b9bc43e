package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/entity"
	"recipebox/internal/model"
	"recipebox/internal/utils"
)

// ErrInvalidPrice 价格字段无法解析为非负的两位小数定点数
var ErrInvalidPrice = errors.New("invalid price")

// RecipeService 负责菜谱的生命周期，包括创建/更新时标签与食材的
// get-or-create 归并。所有操作都以发起请求的用户为归属范围。
type RecipeService struct {
	repo model.Repository
}

// NewRecipeService 创建菜谱服务实例
func NewRecipeService(repo model.Repository) *RecipeService {
	return &RecipeService{repo: repo}
}

// Create persists a new recipe for the given user. The owner is always the
// authenticated user regardless of anything the payload may carry. Tag and
// ingredient names are resolved via get-or-create scoped to (user, name) and
// attached without duplicates.
func (s *RecipeService) Create(ctx context.Context, userID uint, req entity.RecipeCreateRequest) (*entity.DbRecipe, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("recipe service not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("recipe owner is required")
	}

	price, err := utils.NormalizePrice(req.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, req.Price)
	}

	recipe := &entity.DbRecipe{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		TimeMinutes: req.TimeMinutes,
		Price:       price,
		Description: req.Description,
		Link:        strings.TrimSpace(req.Link),
	}

	if err := s.repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	if len(req.Tags) > 0 {
		tags, err := s.resolveTags(ctx, userID, req.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRecipeTags(ctx, recipe.ID, tags); err != nil {
			return nil, err
		}
	}
	if len(req.Ingredients) > 0 {
		ingredients, err := s.resolveIngredients(ctx, userID, req.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRecipeIngredients(ctx, recipe.ID, ingredients); err != nil {
			return nil, err
		}
	}

	return s.repo.GetRecipe(ctx, userID, recipe.ID)
}

// Get loads a single recipe scoped to the owner.
func (s *RecipeService) Get(ctx context.Context, userID, recipeID uint) (*entity.DbRecipe, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("recipe service not initialised")
	}
	return s.repo.GetRecipe(ctx, userID, recipeID)
}

// List returns the user's recipes, optionally filtered by tag/ingredient ids.
func (s *RecipeService) List(ctx context.Context, params *entity.RecipeQuery) ([]entity.DbRecipe, *entity.Meta, error) {
	if s == nil || s.repo == nil {
		return nil, nil, fmt.Errorf("recipe service not initialised")
	}
	return s.repo.ListRecipes(ctx, params)
}

// Update applies a partial patch to a recipe owned by userID. Fields absent
// from the patch keep their prior values. A present Tags or Ingredients key
// is a full replacement of that relation: the prior set is discarded and the
// listed names resolved via get-or-create, so an empty list clears the
// relation. The owner never changes; a recipe owned by a different user is
// reported as gorm.ErrRecordNotFound.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, req entity.RecipeUpdateRequest) (*entity.DbRecipe, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("recipe service not initialised")
	}

	// 先按归属加载，不属于该用户直接返回 not found
	if _, err := s.repo.GetRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	updates := entity.RecipeUpdates{
		TimeMinutes: req.TimeMinutes,
		Description: req.Description,
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		updates.Title = &trimmed
	}
	if req.Link != nil {
		trimmed := strings.TrimSpace(*req.Link)
		updates.Link = &trimmed
	}
	if req.Price != nil {
		price, err := utils.NormalizePrice(*req.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, *req.Price)
		}
		updates.Price = &price
	}

	if !updates.IsEmpty() {
		if err := s.repo.UpdateRecipe(ctx, userID, recipeID, updates.ToMap()); err != nil {
			return nil, err
		}
	}

	if req.Tags != nil {
		tags, err := s.resolveTags(ctx, userID, *req.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRecipeTags(ctx, recipeID, tags); err != nil {
			return nil, err
		}
	}
	if req.Ingredients != nil {
		ingredients, err := s.resolveIngredients(ctx, userID, *req.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRecipeIngredients(ctx, recipeID, ingredients); err != nil {
			return nil, err
		}
	}

	return s.repo.GetRecipe(ctx, userID, recipeID)
}

// Delete removes a recipe together with its association rows. Orphaned tags
// and ingredients survive until deleted explicitly.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("recipe service not initialised")
	}
	return s.repo.DeleteRecipe(ctx, userID, recipeID)
}

// AttachImage records the stored image path on a recipe owned by userID.
func (s *RecipeService) AttachImage(ctx context.Context, userID, recipeID uint, imagePath string) (*entity.DbRecipe, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("recipe service not initialised")
	}
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return nil, fmt.Errorf("image path is empty")
	}
	updates := entity.RecipeUpdates{ImagePath: &trimmed}
	if err := s.repo.UpdateRecipe(ctx, userID, recipeID, updates.ToMap()); err != nil {
		return nil, err
	}
	return s.repo.GetRecipe(ctx, userID, recipeID)
}

// resolveTags 将名称列表归并为去重后的标签记录，复用已有标签
func (s *RecipeService) resolveTags(ctx context.Context, userID uint, inputs []entity.EntityInput) ([]entity.DbTag, error) {
	resolved := make([]entity.DbTag, 0, len(inputs))
	seen := make(map[uint]struct{}, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			continue
		}
		tag, err := s.repo.GetOrCreateTag(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		resolved = append(resolved, *tag)
	}
	return resolved, nil
}

// resolveIngredients 将名称列表归并为去重后的食材记录，复用已有食材
func (s *RecipeService) resolveIngredients(ctx context.Context, userID uint, inputs []entity.EntityInput) ([]entity.DbIngredient, error) {
	resolved := make([]entity.DbIngredient, 0, len(inputs))
	seen := make(map[uint]struct{}, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			continue
		}
		ingredient, err := s.repo.GetOrCreateIngredient(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[ingredient.ID]; ok {
			continue
		}
		seen[ingredient.ID] = struct{}{}
		resolved = append(resolved, *ingredient)
	}
	return resolved, nil
}
