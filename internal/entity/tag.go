package entity

import "time"

// DbTag 表示用户自己的标签，名称仅在单个用户范围内唯一。
type DbTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint   `gorm:"column:user_id;uniqueIndex:idx_tags_user_name;not null" json:"user_id"`
	Name   string `gorm:"column:name;type:varchar(64);uniqueIndex:idx_tags_user_name;not null" json:"name"`

	// RecipeCount 由列表查询的聚合列填充，只读且不参与建表。
	RecipeCount int64 `gorm:"->;-:migration" json:"recipe_count,omitempty"`
}

// TableName 指定表名
func (DbTag) TableName() string {
	return "tags"
}

// TagItem is the DTO representation of a tag.
type TagItem struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	RecipeCount int64     `json:"recipe_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CatalogQuery 标签/食材列表查询参数。
type CatalogQuery struct {
	UserID       uint
	AssignedOnly bool
}

type TagRenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type TagListResponse struct {
	Tags []TagItem `json:"tags"`
}

type TagDetailResponse struct {
	Tag TagItem `json:"tag"`
}
