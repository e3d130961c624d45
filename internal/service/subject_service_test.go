package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"result-generator/backend/internal/dto"
)

func setupTestSubjectService() (SubjectService, *mockRepos) {
	repo, m := newMockRepository()
	return NewSubjectService(repo, []string{"English", "Hindi"}, zap.NewNop()), m
}

func TestSubjectService_GetByClass_FallsBackToDefaults(t *testing.T) {
	svc, _ := setupTestSubjectService()

	resp, err := svc.GetByClass(context.Background(), " kg ")
	if err != nil {
		t.Fatalf("GetByClass 失败: %v", err)
	}
	if !resp.IsDefault || resp.ClassName != "KG" {
		t.Errorf("期望 KG 默认科目，实际 %+v", resp)
	}
	if !reflect.DeepEqual(resp.Subjects, []string{"English", "Hindi"}) {
		t.Errorf("默认科目不符: %v", resp.Subjects)
	}
}

func TestSubjectService_Upsert_CleansAndReplaces(t *testing.T) {
	svc, _ := setupTestSubjectService()
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, &dto.UpsertSubjectsRequest{
		ClassName: "5",
		Subjects:  []string{" Maths ", "Science", "Maths", ""},
	}, "admin-1"); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	resp, _ := svc.GetByClass(ctx, "5")
	if resp.IsDefault || !reflect.DeepEqual(resp.Subjects, []string{"Maths", "Science"}) {
		t.Errorf("期望去重去空白后的科目，实际 %+v", resp)
	}

	if _, err := svc.Upsert(ctx, &dto.UpsertSubjectsRequest{ClassName: "5", Subjects: []string{"Art"}}, "admin-1"); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}
	all, _ := svc.ListAll(ctx)
	if len(all) != 1 || !reflect.DeepEqual(all[0].Subjects, []string{"Art"}) {
		t.Errorf("期望整体替换为 [Art]，实际 %+v", all)
	}
}

func TestSubjectService_Upsert_Empty(t *testing.T) {
	svc, _ := setupTestSubjectService()

	_, err := svc.Upsert(context.Background(), &dto.UpsertSubjectsRequest{ClassName: "5", Subjects: []string{" ", ""}}, "admin-1")
	if !errors.Is(err, ErrEmptySubjects) {
		t.Errorf("期望 ErrEmptySubjects，实际: %v", err)
	}
}
