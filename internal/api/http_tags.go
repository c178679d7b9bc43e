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

// ListTags 返回当前用户的标签，按名称倒序。assigned_only=1 时仅返回
// 至少被一条菜谱引用的标签。
func (h *HTTPHandler) ListTags(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusOK, entity.TagListResponse{Tags: []entity.TagItem{}})
		return
	}

	query := &entity.CatalogQuery{
		UserID:       user.ID,
		AssignedOnly: parseBoolParam(c.Query("assigned_only")),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tags, err := h.repo.ListTags(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("failed to list tags")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tags"})
		return
	}

	c.JSON(http.StatusOK, entity.TagListResponse{Tags: makeTagItems(tags)})
}

// UpdateTag 重命名当前用户的标签。归属其他用户的标签表现为 404。
func (h *HTTPHandler) UpdateTag(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tag repository not available"})
		return
	}

	rawID := strings.TrimSpace(c.Param("id"))
	tagID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || tagID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	var req entity.TagRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag payload"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updates := entity.TagUpdates{Name: &name}
	if err := h.repo.UpdateTag(ctx, user.ID, uint(tagID), updates.ToMap()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tag name already in use"})
			return
		}
		logrus.WithError(err).Error("failed to update tag")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tag"})
		return
	}

	// 重新读取改名后的记录，让响应携带真实的时间戳
	updated, err := h.repo.GetTag(ctx, user.ID, uint(tagID))
	if err != nil {
		logrus.WithError(err).WithField("tag_id", tagID).Error("failed to reload tag after rename")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tag"})
		return
	}

	c.JSON(http.StatusOK, entity.TagDetailResponse{Tag: entity.TagItem{
		ID:        updated.ID,
		Name:      updated.Name,
		CreatedAt: updated.CreatedAt,
		UpdatedAt: updated.UpdatedAt,
	}})
}

// DeleteTag 删除当前用户的标签，并移除其与菜谱的关联。
func (h *HTTPHandler) DeleteTag(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tag repository not available"})
		return
	}

	rawID := strings.TrimSpace(c.Param("id"))
	tagID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || tagID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteTag(ctx, user.ID, uint(tagID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
			return
		}
		logrus.WithError(err).Error("failed to delete tag")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete tag"})
		return
	}

	c.Status(http.StatusNoContent)
}

func makeTagItems(tags []entity.DbTag) []entity.TagItem {
	items := make([]entity.TagItem, 0, len(tags))
	for _, tag := range tags {
		items = append(items, entity.TagItem{
			ID:          tag.ID,
			Name:        tag.Name,
			RecipeCount: tag.RecipeCount,
			CreatedAt:   tag.CreatedAt,
			UpdatedAt:   tag.UpdatedAt,
		})
	}
	return items
}

// parseBoolParam 将查询参数解析为布尔值，"1"/"true"/"yes" 视为真
func parseBoolParam(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
