package entity

// UserUpdates 用户更新字段
type UserUpdates struct {
	DisplayName  *string
	Role         *string
	PasswordHash *string
	IsActive     *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// RecipeUpdates 菜谱更新字段。不包含 user_id：菜谱归属永不变更。
type RecipeUpdates struct {
	Title       *string
	TimeMinutes *int
	Price       *string
	Description *string
	Link        *string
	ImagePath   *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u RecipeUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.TimeMinutes != nil {
		updates["time_minutes"] = *u.TimeMinutes
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Link != nil {
		updates["link"] = *u.Link
	}
	if u.ImagePath != nil {
		updates["image_path"] = *u.ImagePath
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u RecipeUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// TagUpdates 标签更新字段
type TagUpdates struct {
	Name *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u TagUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u TagUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// IngredientUpdates 食材更新字段
type IngredientUpdates struct {
	Name *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u IngredientUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u IngredientUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
