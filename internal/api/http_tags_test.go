package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"recipebox/internal/config"
	"recipebox/internal/entity"
	modelsql "recipebox/internal/model/sql"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newCatalogTestHandler(t *testing.T) (*HTTPHandler, *modelsql.GormRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	handler, err := NewHTTPHandler(config.Config{
		JWTSecret:            "test-secret",
		JWTExpirationMinutes: 60,
	}, repo, nil)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler, repo
}

func newRenameContext(t *testing.T, userID, targetID uint, name string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	c.Request = httptest.NewRequest(http.MethodPatch, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", targetID)}}
	c.Set(currentUserContextKey, &RequestUser{ID: userID, Role: entity.UserRoleUser})
	return c, recorder
}

func TestUpdateTagReturnsStoredRecord(t *testing.T) {
	handler, repo := newCatalogTestHandler(t)
	ctx := context.Background()

	owner := &entity.DbUser{Email: "owner@example.com", PasswordHash: "hashed", Role: entity.UserRoleUser, IsActive: true}
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	tag, err := repo.GetOrCreateTag(ctx, owner.ID, "Original")
	if err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}

	t.Run("响应携带存储记录的字段", func(t *testing.T) {
		c, recorder := newRenameContext(t, owner.ID, tag.ID, "Renamed")
		handler.UpdateTag(c)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp entity.TagDetailResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Tag.ID != tag.ID {
			t.Errorf("expected tag id %d, got %d", tag.ID, resp.Tag.ID)
		}
		if resp.Tag.Name != "Renamed" {
			t.Errorf("expected renamed tag, got %q", resp.Tag.Name)
		}
		if resp.Tag.CreatedAt.IsZero() || resp.Tag.UpdatedAt.IsZero() {
			t.Error("expected timestamps from the stored record, got zero values")
		}
	})

	t.Run("他人标签表现为 404", func(t *testing.T) {
		intruder := &entity.DbUser{Email: "intruder@example.com", PasswordHash: "hashed", Role: entity.UserRoleUser, IsActive: true}
		if err := repo.CreateUser(ctx, intruder); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		c, recorder := newRenameContext(t, intruder.ID, tag.ID, "Hijacked")
		handler.UpdateTag(c)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestUpdateIngredientReturnsStoredRecord(t *testing.T) {
	handler, repo := newCatalogTestHandler(t)
	ctx := context.Background()

	owner := &entity.DbUser{Email: "cook@example.com", PasswordHash: "hashed", Role: entity.UserRoleUser, IsActive: true}
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	ingredient, err := repo.GetOrCreateIngredient(ctx, owner.ID, "Salt")
	if err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	c, recorder := newRenameContext(t, owner.ID, ingredient.ID, "Sea Salt")
	handler.UpdateIngredient(c)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp entity.IngredientDetailResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Ingredient.ID != ingredient.ID || resp.Ingredient.Name != "Sea Salt" {
		t.Errorf("expected renamed ingredient %d, got %+v", ingredient.ID, resp.Ingredient)
	}
	if resp.Ingredient.CreatedAt.IsZero() || resp.Ingredient.UpdatedAt.IsZero() {
		t.Error("expected timestamps from the stored record, got zero values")
	}
}
