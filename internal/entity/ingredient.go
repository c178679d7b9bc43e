package entity

import "time"

// DbIngredient 表示用户自己的食材，形态与标签相同但存在独立的表中。
type DbIngredient struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint   `gorm:"column:user_id;uniqueIndex:idx_ingredients_user_name;not null" json:"user_id"`
	Name   string `gorm:"column:name;type:varchar(64);uniqueIndex:idx_ingredients_user_name;not null" json:"name"`

	// RecipeCount 由列表查询的聚合列填充，只读且不参与建表。
	RecipeCount int64 `gorm:"->;-:migration" json:"recipe_count,omitempty"`
}

// TableName 指定表名
func (DbIngredient) TableName() string {
	return "ingredients"
}

// IngredientItem is the DTO representation of an ingredient.
type IngredientItem struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	RecipeCount int64     `json:"recipe_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type IngredientRenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type IngredientListResponse struct {
	Ingredients []IngredientItem `json:"ingredients"`
}

type IngredientDetailResponse struct {
	Ingredient IngredientItem `json:"ingredient"`
}
