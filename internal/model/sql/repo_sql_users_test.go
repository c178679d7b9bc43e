package sql

import (
	"context"
	"errors"
	"testing"

	"recipebox/internal/entity"

	"gorm.io/gorm"
)

func TestRegisterUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := &entity.DbUser{Email: "first@example.com", PasswordHash: "hashed"}
	if err := repo.RegisterUser(ctx, first); err != nil {
		t.Fatalf("failed to register first user: %v", err)
	}

	t.Run("首个账户成为超级管理员", func(t *testing.T) {
		if first.Role != entity.UserRoleSuperAdmin {
			t.Errorf("expected role %s, got %s", entity.UserRoleSuperAdmin, first.Role)
		}
		if !first.IsActive {
			t.Error("expected registered user to be active")
		}
	})

	t.Run("后续账户均为普通用户", func(t *testing.T) {
		// 调用方预设的角色不生效，角色只由事务内的首账户判定决定
		second := &entity.DbUser{Email: "second@example.com", PasswordHash: "hashed", Role: entity.UserRoleSuperAdmin}
		if err := repo.RegisterUser(ctx, second); err != nil {
			t.Fatalf("failed to register second user: %v", err)
		}
		if second.Role != entity.UserRoleUser {
			t.Errorf("expected role %s, got %s", entity.UserRoleUser, second.Role)
		}
	})

	t.Run("重复邮箱返回唯一键冲突", func(t *testing.T) {
		duplicate := &entity.DbUser{Email: "first@example.com", PasswordHash: "hashed"}
		err := repo.RegisterUser(ctx, duplicate)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Fatalf("expected ErrDuplicatedKey, got %v", err)
		}
	})
}
