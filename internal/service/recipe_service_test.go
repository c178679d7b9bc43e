package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"recipebox/internal/entity"
	modelsql "recipebox/internal/model/sql"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestService(t *testing.T) (*RecipeService, *modelsql.GormRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "recipebox_test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbRecipe{},
		&entity.DbTag{},
		&entity.DbIngredient{},
		&entity.DbRecipeTag{},
		&entity.DbRecipeIngredient{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	repo := modelsql.NewGormRepository(db)
	return NewRecipeService(repo), repo
}

func createTestUser(t *testing.T, repo *modelsql.GormRepository, email string) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{
		Email:        email,
		PasswordHash: "hashed",
		Role:         entity.UserRoleUser,
		IsActive:     true,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func tagNames(recipe *entity.DbRecipe) []string {
	names := make([]string, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func hasTag(recipe *entity.DbRecipe, name string) bool {
	for _, tag := range recipe.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

func hasIngredient(recipe *entity.DbRecipe, name string) bool {
	for _, ingredient := range recipe.Ingredients {
		if ingredient.Name == name {
			return true
		}
	}
	return false
}

func TestCreateRecipe(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	ctx := context.Background()

	t.Run("规范化价格", func(t *testing.T) {
		recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
			Title:       "Pancakes",
			TimeMinutes: 15,
			Price:       "5.5",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if recipe.Price != "5.50" {
			t.Errorf("expected price 5.50, got %s", recipe.Price)
		}
		if recipe.UserID != user.ID {
			t.Errorf("expected owner %d, got %d", user.ID, recipe.UserID)
		}
	})

	t.Run("非法价格被拒绝", func(t *testing.T) {
		invalid := []string{"", "-1", "5.123", "abc", "1.2.3"}
		for _, price := range invalid {
			_, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
				Title: "Broken",
				Price: price,
			})
			if err == nil {
				t.Errorf("expected error for price %q", price)
				continue
			}
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("expected ErrInvalidPrice for %q, got %v", price, err)
			}
		}
	})

	t.Run("标签按名称 get-or-create 并去重", func(t *testing.T) {
		existing, err := repo.GetOrCreateTag(ctx, user.ID, "Dessert")
		if err != nil {
			t.Fatalf("failed to seed tag: %v", err)
		}

		recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
			Title: "Tiramisu",
			Price: "12.00",
			Tags: []entity.EntityInput{
				{Name: "Dessert"},
				{Name: "Dessert"},
				{Name: "Italian"},
			},
			Ingredients: []entity.EntityInput{
				{Name: "Mascarpone"},
				{Name: "Coffee"},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recipe.Tags) != 2 {
			t.Fatalf("expected 2 tags, got %v", tagNames(recipe))
		}
		for _, tag := range recipe.Tags {
			if tag.Name == "Dessert" && tag.ID != existing.ID {
				t.Errorf("expected existing tag %d to be reused, got %d", existing.ID, tag.ID)
			}
		}
		if len(recipe.Ingredients) != 2 {
			t.Fatalf("expected 2 ingredients, got %d", len(recipe.Ingredients))
		}
	})
}

func TestUpdateRecipePartialPatch(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
		Title:       "Original",
		TimeMinutes: 30,
		Price:       "9.99",
		Description: "slow cooked",
		Link:        "https://example.com/original",
		Tags:        []entity.EntityInput{{Name: "Dinner"}},
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	t.Run("缺失字段保持不变", func(t *testing.T) {
		newTitle := "Renamed"
		updated, err := svc.Update(ctx, user.ID, recipe.ID, entity.RecipeUpdateRequest{
			Title: &newTitle,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Title != "Renamed" {
			t.Errorf("expected title Renamed, got %s", updated.Title)
		}
		if updated.TimeMinutes != 30 {
			t.Errorf("expected time_minutes 30, got %d", updated.TimeMinutes)
		}
		if updated.Price != "9.99" {
			t.Errorf("expected price 9.99, got %s", updated.Price)
		}
		if updated.Description != "slow cooked" {
			t.Errorf("expected description preserved, got %s", updated.Description)
		}
		if !hasTag(updated, "Dinner") {
			t.Errorf("expected tags untouched, got %v", tagNames(updated))
		}
	})

	t.Run("补丁中的非法价格被拒绝", func(t *testing.T) {
		bad := "12.345"
		_, err := svc.Update(ctx, user.ID, recipe.ID, entity.RecipeUpdateRequest{
			Price: &bad,
		})
		if err == nil || !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})
}

func TestUpdateRecipeReplacesRelations(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
		Title: "Curry",
		Price: "7.25",
		Tags:  []entity.EntityInput{{Name: "Spicy"}},
		Ingredients: []entity.EntityInput{
			{Name: "Rice"},
			{Name: "Chili"},
		},
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	t.Run("出现的 tags 键整体替换", func(t *testing.T) {
		tags := []entity.EntityInput{{Name: "Mild"}}
		updated, err := svc.Update(ctx, user.ID, recipe.ID, entity.RecipeUpdateRequest{
			Tags: &tags,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Tags) != 1 || updated.Tags[0].Name != "Mild" {
			t.Fatalf("expected tags replaced by Mild, got %v", tagNames(updated))
		}
		if !hasIngredient(updated, "Rice") || !hasIngredient(updated, "Chili") {
			t.Errorf("expected ingredients untouched")
		}
	})

	t.Run("空列表清空关联", func(t *testing.T) {
		empty := []entity.EntityInput{}
		updated, err := svc.Update(ctx, user.ID, recipe.ID, entity.RecipeUpdateRequest{
			Tags: &empty,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Tags) != 0 {
			t.Fatalf("expected no tags, got %v", tagNames(updated))
		}
		// 被替换下来的标签本身仍然保留
		tags, err := repo.ListTags(ctx, &entity.CatalogQuery{UserID: user.ID})
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("expected orphaned tags to survive, got %d", len(tags))
		}
	})

	t.Run("nil 指针保持关联不变", func(t *testing.T) {
		newTitle := "Still Curry"
		updated, err := svc.Update(ctx, user.ID, recipe.ID, entity.RecipeUpdateRequest{
			Title: &newTitle,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Ingredients) != 2 {
			t.Errorf("expected 2 ingredients, got %d", len(updated.Ingredients))
		}
	})
}

func TestRecipeOwnershipIsHidden(t *testing.T) {
	svc, repo := newTestService(t)
	owner := createTestUser(t, repo, "owner@example.com")
	intruder := createTestUser(t, repo, "intruder@example.com")
	ctx := context.Background()

	recipe, err := svc.Create(ctx, owner.ID, entity.RecipeCreateRequest{
		Title: "Secret Sauce",
		Price: "3.00",
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	t.Run("读取他人菜谱表现为不存在", func(t *testing.T) {
		_, err := svc.Get(ctx, intruder.ID, recipe.ID)
		if err != gorm.ErrRecordNotFound {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("更新他人菜谱表现为不存在且不生效", func(t *testing.T) {
		hijack := "Hijacked"
		_, err := svc.Update(ctx, intruder.ID, recipe.ID, entity.RecipeUpdateRequest{
			Title: &hijack,
		})
		if err != gorm.ErrRecordNotFound {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
		reloaded, err := svc.Get(ctx, owner.ID, recipe.ID)
		if err != nil {
			t.Fatalf("failed to reload recipe: %v", err)
		}
		if reloaded.Title != "Secret Sauce" {
			t.Errorf("expected title unchanged, got %s", reloaded.Title)
		}
	})

	t.Run("删除他人菜谱表现为不存在", func(t *testing.T) {
		if err := svc.Delete(ctx, intruder.ID, recipe.ID); err != gorm.ErrRecordNotFound {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
		if _, err := svc.Get(ctx, owner.ID, recipe.ID); err != nil {
			t.Errorf("expected recipe to survive, got %v", err)
		}
	})
}

func TestListRecipesFiltering(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	other := createTestUser(t, repo, "other@example.com")
	ctx := context.Background()

	mk := func(title string, tags, ingredients []string) *entity.DbRecipe {
		t.Helper()
		req := entity.RecipeCreateRequest{Title: title, Price: "1.00"}
		for _, name := range tags {
			req.Tags = append(req.Tags, entity.EntityInput{Name: name})
		}
		for _, name := range ingredients {
			req.Ingredients = append(req.Ingredients, entity.EntityInput{Name: name})
		}
		recipe, err := svc.Create(ctx, user.ID, req)
		if err != nil {
			t.Fatalf("failed to create %s: %v", title, err)
		}
		return recipe
	}

	r1 := mk("Soup", []string{"Vegan"}, []string{"Carrot"})
	r2 := mk("Stew", []string{"Hearty"}, []string{"Beef"})
	r3 := mk("Salad", []string{"Vegan", "Fresh"}, []string{"Carrot", "Lettuce"})

	// 其他用户的数据不应当出现在结果里
	if _, err := svc.Create(ctx, other.ID, entity.RecipeCreateRequest{Title: "Foreign", Price: "2.00"}); err != nil {
		t.Fatalf("failed to create foreign recipe: %v", err)
	}

	veganID := r1.Tags[0].ID
	var heartyID uint
	for _, tag := range r2.Tags {
		if tag.Name == "Hearty" {
			heartyID = tag.ID
		}
	}
	var carrotID uint
	for _, ingredient := range r1.Ingredients {
		if ingredient.Name == "Carrot" {
			carrotID = ingredient.ID
		}
	}

	t.Run("无过滤时返回全部且按 ID 倒序", func(t *testing.T) {
		recipes, meta, err := svc.List(ctx, &entity.RecipeQuery{UserID: user.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta == nil || meta.Total != 3 {
			t.Fatalf("expected total 3, got %+v", meta)
		}
		if len(recipes) != 3 {
			t.Fatalf("expected 3 recipes, got %d", len(recipes))
		}
		if recipes[0].ID != r3.ID || recipes[1].ID != r2.ID || recipes[2].ID != r1.ID {
			t.Errorf("expected newest first ordering, got %d,%d,%d", recipes[0].ID, recipes[1].ID, recipes[2].ID)
		}
	})

	t.Run("同一集合内为 OR 语义", func(t *testing.T) {
		recipes, _, err := svc.List(ctx, &entity.RecipeQuery{
			UserID: user.ID,
			TagIDs: []uint{veganID, heartyID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recipes) != 3 {
			t.Fatalf("expected 3 recipes for OR filter, got %d", len(recipes))
		}
	})

	t.Run("多个匹配标签不产生重复行", func(t *testing.T) {
		freshID := uint(0)
		for _, tag := range r3.Tags {
			if tag.Name == "Fresh" {
				freshID = tag.ID
			}
		}
		recipes, meta, err := svc.List(ctx, &entity.RecipeQuery{
			UserID: user.ID,
			TagIDs: []uint{veganID, freshID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count := 0
		for _, recipe := range recipes {
			if recipe.ID == r3.ID {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected recipe %d exactly once, got %d times", r3.ID, count)
		}
		if meta.Total != 2 {
			t.Errorf("expected total 2, got %d", meta.Total)
		}
	})

	t.Run("标签与食材过滤之间为 AND 语义", func(t *testing.T) {
		recipes, _, err := svc.List(ctx, &entity.RecipeQuery{
			UserID:        user.ID,
			TagIDs:        []uint{veganID},
			IngredientIDs: []uint{carrotID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recipes) != 2 {
			t.Fatalf("expected 2 recipes, got %d", len(recipes))
		}
		for _, recipe := range recipes {
			if recipe.ID == r2.ID {
				t.Errorf("recipe %d should not match combined filter", r2.ID)
			}
		}
	})

	t.Run("结果只包含发起用户的数据", func(t *testing.T) {
		recipes, _, err := svc.List(ctx, &entity.RecipeQuery{UserID: user.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, recipe := range recipes {
			if recipe.UserID != user.ID {
				t.Errorf("unexpected foreign recipe %d in results", recipe.ID)
			}
		}
	})
}

func TestDeleteRecipeRemovesAssociations(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
		Title:       "Ephemeral",
		Price:       "4.00",
		Tags:        []entity.EntityInput{{Name: "Temp"}},
		Ingredients: []entity.EntityInput{{Name: "Water"}},
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	if err := svc.Delete(ctx, user.ID, recipe.ID); err != nil {
		t.Fatalf("failed to delete recipe: %v", err)
	}

	if _, err := svc.Get(ctx, user.ID, recipe.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound after delete, got %v", err)
	}

	// 标签与食材本身保留，但不再关联任何菜谱
	tags, err := repo.ListTags(ctx, &entity.CatalogQuery{UserID: user.ID})
	if err != nil {
		t.Fatalf("failed to list tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 surviving tag, got %d", len(tags))
	}
	if tags[0].RecipeCount != 0 {
		t.Errorf("expected recipe_count 0, got %d", tags[0].RecipeCount)
	}

	assigned, err := repo.ListTags(ctx, &entity.CatalogQuery{UserID: user.ID, AssignedOnly: true})
	if err != nil {
		t.Fatalf("failed to list assigned tags: %v", err)
	}
	if len(assigned) != 0 {
		t.Errorf("expected no assigned tags, got %d", len(assigned))
	}
}

func TestAttachImage(t *testing.T) {
	svc, repo := newTestService(t)
	user := createTestUser(t, repo, "cook@example.com")
	other := createTestUser(t, repo, "other@example.com")
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, entity.RecipeCreateRequest{
		Title: "Photogenic",
		Price: "6.00",
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	updated, err := svc.AttachImage(ctx, user.ID, recipe.ID, "recipes/2026/08/29/test.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ImagePath != "recipes/2026/08/29/test.jpg" {
		t.Errorf("expected image path recorded, got %s", updated.ImagePath)
	}

	if _, err := svc.AttachImage(ctx, other.ID, recipe.ID, "recipes/evil.jpg"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound for foreign recipe, got %v", err)
	}

	if _, err := svc.AttachImage(ctx, user.ID, recipe.ID, "   "); err == nil {
		t.Error("expected error for blank image path")
	}
}
