package entity

import "time"

// DbRecipe 表示用户拥有的一条菜谱记录。
type DbRecipe struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint    `gorm:"column:user_id;index;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID" json:"-"`

	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	TimeMinutes int    `gorm:"column:time_minutes;not null;default:0" json:"time_minutes"`
	Price       string `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Link        string `gorm:"column:link;type:varchar(512)" json:"link"`
	ImagePath   string `gorm:"column:image_path;type:varchar(512)" json:"image_path"`

	Tags        []DbTag        `gorm:"many2many:recipe_tags;foreignKey:ID;joinForeignKey:RecipeID;references:ID;joinReferences:TagID" json:"tags"`
	Ingredients []DbIngredient `gorm:"many2many:recipe_ingredients;foreignKey:ID;joinForeignKey:RecipeID;references:ID;joinReferences:IngredientID" json:"ingredients"`
}

// TableName 指定表名
func (DbRecipe) TableName() string {
	return "recipes"
}

// DbRecipeTag 菜谱与标签的关联表。
type DbRecipeTag struct {
	RecipeID  uint      `gorm:"primaryKey" json:"recipe_id"`
	TagID     uint      `gorm:"primaryKey" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (DbRecipeTag) TableName() string {
	return "recipe_tags"
}

// DbRecipeIngredient 菜谱与食材的关联表。
type DbRecipeIngredient struct {
	RecipeID     uint      `gorm:"primaryKey" json:"recipe_id"`
	IngredientID uint      `gorm:"primaryKey" json:"ingredient_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (DbRecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// EntityInput references a tag or ingredient by name in recipe payloads.
// Names that do not exist yet for the requesting user are created on demand.
type EntityInput struct {
	Name string `json:"name" binding:"required"`
}

type RecipeCreateRequest struct {
	Title       string        `json:"title" binding:"required"`
	TimeMinutes int           `json:"time_minutes" binding:"gte=0"`
	Price       string        `json:"price" binding:"required"`
	Description string        `json:"description"`
	Link        string        `json:"link"`
	Tags        []EntityInput `json:"tags"`
	Ingredients []EntityInput `json:"ingredients"`
}

// RecipeUpdateRequest carries a partial update. Pointer fields distinguish
// "field absent" (nil, keep current value) from "field present". Tags and
// Ingredients use a pointer to a slice for the same reason: a present but
// empty list clears the relation, a nil pointer leaves it untouched.
type RecipeUpdateRequest struct {
	Title       *string        `json:"title,omitempty"`
	TimeMinutes *int           `json:"time_minutes,omitempty" binding:"omitempty,gte=0"`
	Price       *string        `json:"price,omitempty"`
	Description *string        `json:"description,omitempty"`
	Link        *string        `json:"link,omitempty"`
	Tags        *[]EntityInput `json:"tags,omitempty"`
	Ingredients *[]EntityInput `json:"ingredients,omitempty"`
}

// RecipeQuery 列表查询参数，ID 过滤集合由 API 层解析。
type RecipeQuery struct {
	BaseParams
	UserID        uint
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeItem is the list representation of a recipe (no description).
type RecipeItem struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	TimeMinutes int              `json:"time_minutes"`
	Price       string           `json:"price"`
	Link        string           `json:"link"`
	ImagePath   string           `json:"image_path"`
	ImageURL    string           `json:"image_url"`
	Tags        []TagItem        `json:"tags"`
	Ingredients []IngredientItem `json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// RecipeDetail is the detail representation, adding the description.
type RecipeDetail struct {
	RecipeItem
	Description string `json:"description"`
}

type RecipeListResponse struct {
	Recipes []RecipeItem `json:"recipes"`
	Meta    *Meta        `json:"meta"`
}

type RecipeDetailResponse struct {
	Recipe RecipeDetail `json:"recipe"`
}

type RecipeImageResponse struct {
	ID        uint   `json:"id"`
	ImagePath string `json:"image_path"`
	ImageURL  string `json:"image_url"`
}
