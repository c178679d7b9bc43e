package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipebox/internal/entity"
	"recipebox/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListRecipes 返回当前用户的菜谱，按 ID 倒序。tags 与 ingredients 查询
// 参数携带逗号分隔的 ID 集合，同一集合内为 OR 语义，两个集合之间为 AND。
func (h *HTTPHandler) ListRecipes(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not available"})
		return
	}

	var query entity.RecipeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 50
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	tagIDs, err := parseUintListParam(c.Query("tags"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags filter"})
		return
	}
	ingredientIDs, err := parseUintListParam(c.Query("ingredients"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredients filter"})
		return
	}

	query.UserID = user.ID
	query.TagIDs = tagIDs
	query.IngredientIDs = ingredientIDs

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipes, meta, err := h.recipeService.List(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list recipes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipes"})
		return
	}

	response := entity.RecipeListResponse{
		Recipes: make([]entity.RecipeItem, 0, len(recipes)),
		Meta:    meta,
	}
	for idx := range recipes {
		response.Recipes = append(response.Recipes, h.makeRecipeItem(&recipes[idx]))
	}

	c.JSON(http.StatusOK, response)
}

// CreateRecipe 创建菜谱。标签与食材按名称 get-or-create 归并到当前用户。
func (h *HTTPHandler) CreateRecipe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not available"})
		return
	}

	var req entity.RecipeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe payload"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Create(ctx, user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative decimal with at most two decimal places"})
			return
		}
		logrus.WithError(err).Error("failed to create recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, entity.RecipeDetailResponse{Recipe: h.makeRecipeDetail(recipe)})
}

// GetRecipe 加载当前用户的一条菜谱。归属其他用户的菜谱表现为 404。
func (h *HTTPHandler) GetRecipe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not available"})
		return
	}

	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Get(ctx, user.ID, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to load recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipe"})
		return
	}

	c.JSON(http.StatusOK, entity.RecipeDetailResponse{Recipe: h.makeRecipeDetail(recipe)})
}

// UpdateRecipe 对菜谱应用部分更新。缺失的字段保持不变；请求中出现的
// tags 或 ingredients 键会整体替换对应关联，空列表清空关联。
func (h *HTTPHandler) UpdateRecipe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not available"})
		return
	}

	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	var req entity.RecipeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe payload"})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Update(ctx, user.ID, recipeID, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		if errors.Is(err, service.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative decimal with at most two decimal places"})
			return
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to update recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recipe"})
		return
	}

	c.JSON(http.StatusOK, entity.RecipeDetailResponse{Recipe: h.makeRecipeDetail(recipe)})
}

// DeleteRecipe 删除当前用户的菜谱及其关联行。
func (h *HTTPHandler) DeleteRecipe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not available"})
		return
	}

	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.recipeService.Delete(ctx, user.ID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to delete recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete recipe"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseRecipeID(c *gin.Context) (uint, bool) {
	rawID := strings.TrimSpace(c.Param("id"))
	recipeID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || recipeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return uint(recipeID), true
}

// parseUintListParam 解析 "1,2,3" 形式的 ID 集合，忽略空段并去重
func parseUintListParam(value string) ([]uint, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	ids := make([]uint, 0, len(parts))
	seen := make(map[uint]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id list")
		}
		if _, ok := seen[uint(id)]; ok {
			continue
		}
		seen[uint(id)] = struct{}{}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (h *HTTPHandler) makeRecipeItem(recipe *entity.DbRecipe) entity.RecipeItem {
	if recipe == nil {
		return entity.RecipeItem{}
	}
	ingredients := make([]entity.IngredientItem, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		ingredients = append(ingredients, entity.IngredientItem{
			ID:        ingredient.ID,
			Name:      ingredient.Name,
			CreatedAt: ingredient.CreatedAt,
			UpdatedAt: ingredient.UpdatedAt,
		})
	}
	tags := make([]entity.TagItem, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, entity.TagItem{
			ID:        tag.ID,
			Name:      tag.Name,
			CreatedAt: tag.CreatedAt,
			UpdatedAt: tag.UpdatedAt,
		})
	}
	return entity.RecipeItem{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		ImagePath:   recipe.ImagePath,
		ImageURL:    h.publicURL(recipe.ImagePath),
		Tags:        tags,
		Ingredients: ingredients,
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}
}

func (h *HTTPHandler) makeRecipeDetail(recipe *entity.DbRecipe) entity.RecipeDetail {
	if recipe == nil {
		return entity.RecipeDetail{}
	}
	return entity.RecipeDetail{
		RecipeItem:  h.makeRecipeItem(recipe),
		Description: recipe.Description,
	}
}
