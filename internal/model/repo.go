package model

import (
	"context"

	"recipebox/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	// RegisterUser 在同一事务内判定首个账户并写入：首个注册的账户
	// 角色为 super_admin，其余为 user。
	RegisterUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// 菜谱。所有按 ID 的操作都以归属用户过滤：不属于该用户的记录
	// 表现为 gorm.ErrRecordNotFound，与不存在不可区分。
	CreateRecipe(ctx context.Context, recipe *entity.DbRecipe) error
	GetRecipe(ctx context.Context, userID, id uint) (*entity.DbRecipe, error)
	ListRecipes(ctx context.Context, params *entity.RecipeQuery) ([]entity.DbRecipe, *entity.Meta, error)
	UpdateRecipe(ctx context.Context, userID, id uint, updates map[string]interface{}) error
	DeleteRecipe(ctx context.Context, userID, id uint) error
	ReplaceRecipeTags(ctx context.Context, recipeID uint, tags []entity.DbTag) error
	ReplaceRecipeIngredients(ctx context.Context, recipeID uint, ingredients []entity.DbIngredient) error

	// 标签
	GetOrCreateTag(ctx context.Context, userID uint, name string) (*entity.DbTag, error)
	GetTag(ctx context.Context, userID, id uint) (*entity.DbTag, error)
	ListTags(ctx context.Context, params *entity.CatalogQuery) ([]entity.DbTag, error)
	UpdateTag(ctx context.Context, userID, id uint, updates map[string]interface{}) error
	DeleteTag(ctx context.Context, userID, id uint) error

	// 食材
	GetOrCreateIngredient(ctx context.Context, userID uint, name string) (*entity.DbIngredient, error)
	GetIngredient(ctx context.Context, userID, id uint) (*entity.DbIngredient, error)
	ListIngredients(ctx context.Context, params *entity.CatalogQuery) ([]entity.DbIngredient, error)
	UpdateIngredient(ctx context.Context, userID, id uint, updates map[string]interface{}) error
	DeleteIngredient(ctx context.Context, userID, id uint) error
}
