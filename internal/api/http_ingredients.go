package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipebox/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListIngredients 返回当前用户的食材，按名称倒序。assigned_only=1 时
// 仅返回至少被一条菜谱引用的食材。
func (h *HTTPHandler) ListIngredients(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusOK, entity.IngredientListResponse{Ingredients: []entity.IngredientItem{}})
		return
	}

	query := &entity.CatalogQuery{
		UserID:       user.ID,
		AssignedOnly: parseBoolParam(c.Query("assigned_only")),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ingredients, err := h.repo.ListIngredients(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("failed to list ingredients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ingredients"})
		return
	}

	c.JSON(http.StatusOK, entity.IngredientListResponse{Ingredients: makeIngredientItems(ingredients)})
}

// UpdateIngredient 重命名当前用户的食材。归属其他用户的食材表现为 404。
func (h *HTTPHandler) UpdateIngredient(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingredient repository not available"})
		return
	}

	rawID := strings.TrimSpace(c.Param("id"))
	ingredientID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || ingredientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var req entity.IngredientRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient payload"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updates := entity.IngredientUpdates{Name: &name}
	if err := h.repo.UpdateIngredient(ctx, user.ID, uint(ingredientID), updates.ToMap()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient name already in use"})
			return
		}
		logrus.WithError(err).Error("failed to update ingredient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ingredient"})
		return
	}

	// 重新读取改名后的记录，让响应携带真实的时间戳
	updated, err := h.repo.GetIngredient(ctx, user.ID, uint(ingredientID))
	if err != nil {
		logrus.WithError(err).WithField("ingredient_id", ingredientID).Error("failed to reload ingredient after rename")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ingredient"})
		return
	}

	c.JSON(http.StatusOK, entity.IngredientDetailResponse{Ingredient: entity.IngredientItem{
		ID:        updated.ID,
		Name:      updated.Name,
		CreatedAt: updated.CreatedAt,
		UpdatedAt: updated.UpdatedAt,
	}})
}

// DeleteIngredient 删除当前用户的食材，并移除其与菜谱的关联。
func (h *HTTPHandler) DeleteIngredient(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingredient repository not available"})
		return
	}

	rawID := strings.TrimSpace(c.Param("id"))
	ingredientID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || ingredientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteIngredient(ctx, user.ID, uint(ingredientID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
			return
		}
		logrus.WithError(err).Error("failed to delete ingredient")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete ingredient"})
		return
	}

	c.Status(http.StatusNoContent)
}

func makeIngredientItems(ingredients []entity.DbIngredient) []entity.IngredientItem {
	items := make([]entity.IngredientItem, 0, len(ingredients))
	for _, ingredient := range ingredients {
		items = append(items, entity.IngredientItem{
			ID:          ingredient.ID,
			Name:        ingredient.Name,
			RecipeCount: ingredient.RecipeCount,
			CreatedAt:   ingredient.CreatedAt,
			UpdatedAt:   ingredient.UpdatedAt,
		})
	}
	return items
}
