package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"recipebox/internal/entity"
	"recipebox/internal/storage"
	"recipebox/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UploadRecipeImage 接收 multipart 表单里的 image 字段，校验其确实能
// 解码为图片后写入存储后端，并把存储路径记到菜谱上。
func (h *HTTPHandler) UploadRecipeImage(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.recipeService == nil || h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image upload not available"})
		return
	}

	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	// 先确认归属，避免为他人的菜谱写入对象
	if _, err := h.recipeService.Get(ctx, user.ID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to load recipe for image upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	maxBytes := h.cfg.MaxImageUploadBytes
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds maximum allowed size"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds maximum allowed size"})
		return
	}

	extension, err := utils.ValidateImagePayload(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is not a valid image"})
		return
	}

	storedPath, err := h.storage.Save(ctx, data, storage.SaveOptions{
		Category:  "recipes",
		Extension: extension,
	})
	if err != nil {
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to store recipe image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	recipe, err := h.recipeService.AttachImage(ctx, user.ID, recipeID, storedPath)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("failed to attach image to recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach image"})
		return
	}

	c.JSON(http.StatusOK, entity.RecipeImageResponse{
		ID:        recipe.ID,
		ImagePath: recipe.ImagePath,
		ImageURL:  h.publicURL(recipe.ImagePath),
	})
}
