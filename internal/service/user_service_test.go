package service

import (
	"context"
	"errors"
	"testing"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
)

func setupTestUserService() (UserService, *mockRepos) {
	repo, m := newMockRepository()
	return NewUserService(repo, bcrypt.MinCost, zap.NewNop()), m
}

func TestUserService_List_FilterByRole(t *testing.T) {
	svc, m := setupTestUserService()
	createTestUser(m, "a@school.test", "Passw0rd!", model.RoleAdmin, true)
	createTestUser(m, "s1@school.test", "Passw0rd!", model.RoleStaff, true)
	createTestUser(m, "s2@school.test", "Passw0rd!", model.RoleStaff, false)

	list, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleStaff})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 2 个 staff，实际 total=%d len=%d", total, len(list))
	}

	list, total, _ = svc.List(context.Background(), &dto.UserListRequest{
		PaginationRequest: dto.PaginationRequest{Page: 2, PageSize: 2},
	})
	if total != 3 || len(list) != 1 {
		t.Errorf("分页结果不符: total=%d len=%d", total, len(list))
	}
}

func TestUserService_SetActive(t *testing.T) {
	svc, m := setupTestUserService()
	admin := createTestUser(m, "a@school.test", "Passw0rd!", model.RoleAdmin, true)
	staff := createTestUser(m, "s@school.test", "Passw0rd!", model.RoleStaff, true)
	ctx := context.Background()

	if err := svc.SetActive(ctx, admin.UserID, false, admin.UserID); !errors.Is(err, ErrUserSelfDeactivate) {
		t.Errorf("期望 ErrUserSelfDeactivate，实际: %v", err)
	}

	if err := svc.SetActive(ctx, staff.UserID, false, admin.UserID); err != nil {
		t.Fatalf("停用失败: %v", err)
	}
	if m.users.users[staff.UserID].IsActive {
		t.Error("账号应被停用")
	}

	if err := svc.SetActive(ctx, "missing", true, admin.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestUserService_SetActive_LastAdmin(t *testing.T) {
	svc, m := setupTestUserService()
	a1 := createTestUser(m, "a1@school.test", "Passw0rd!", model.RoleAdmin, true)
	a2 := createTestUser(m, "a2@school.test", "Passw0rd!", model.RoleAdmin, true)
	ctx := context.Background()

	if err := svc.SetActive(ctx, a2.UserID, false, a1.UserID); err != nil {
		t.Fatalf("停用第二个管理员失败: %v", err)
	}

	// a1 已是唯一启用的管理员
	if err := svc.SetActive(ctx, a1.UserID, false, "ops"); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("期望 ErrLastAdmin，实际: %v", err)
	}
	if !m.users.users[a1.UserID].IsActive {
		t.Error("最后一个管理员不应被停用")
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	svc, m := setupTestUserService()
	staff := createTestUser(m, "s@school.test", "Passw0rd!", model.RoleStaff, true)

	resp, err := svc.ResetPassword(context.Background(), staff.UserID, "admin-1")
	if err != nil {
		t.Fatalf("重置密码失败: %v", err)
	}
	stored := m.users.users[staff.UserID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(resp.TempPassword)); err != nil {
		t.Error("临时密码应与存储的哈希匹配")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	for i := 0; i < 50; i++ {
		pwd, err := generateTempPassword(8)
		if err != nil {
			t.Fatalf("生成失败: %v", err)
		}
		if len(pwd) != 8 {
			t.Fatalf("期望长度 8，实际 %d", len(pwd))
		}
		var hasLetter, hasDigit bool
		for _, r := range pwd {
			if unicode.IsLetter(r) {
				hasLetter = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		if !hasLetter || !hasDigit {
			t.Errorf("密码应同时包含字母和数字: %s", pwd)
		}
	}
}
