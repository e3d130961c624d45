package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/grading"
	"result-generator/backend/internal/model"
)

func setupTestResultService() (ResultService, *mockRepos) {
	repo, m := newMockRepository()
	return NewResultService(repo, zap.NewNop()), m
}

func optStr(s string) *string { return &s }

// ── SaveMarks 测试 ──

func TestResultService_SaveMarks_RecalculatesStandard(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "7", "A")
	ctx := context.Background()

	if _, err := svc.SaveMarks(ctx, s.StudentID, &dto.SaveMarksRequest{
		Term:  TermOne,
		Marks: []dto.SubjectMarkInput{{Subject: "Maths", Periodic: 9, Notebook: 4, Enrichment: 5, HalfYearly: 68}},
	}, "staff-1"); err != nil {
		t.Fatalf("保存第一学期失败: %v", err)
	}

	resp, err := svc.SaveMarks(ctx, s.StudentID, &dto.SaveMarksRequest{
		Term:  TermTwo,
		Marks: []dto.SubjectMarkInput{{Subject: "Maths", Periodic: 10, Notebook: 5, Enrichment: 5, HalfYearly: 74}},
	}, "staff-1")
	if err != nil {
		t.Fatalf("保存第二学期失败: %v", err)
	}

	if resp.Term1Total != 86 || resp.Term2Total != 94 || resp.GrandTotal != 180 {
		t.Errorf("总分不符: t1=%v t2=%v grand=%v", resp.Term1Total, resp.Term2Total, resp.GrandTotal)
	}
	if resp.Percentage != 90 || resp.Grade != string(grading.GradeA2) {
		t.Errorf("期望 90.00%% / A2，实际 %v / %s", resp.Percentage, resp.Grade)
	}
	if resp.MaxMarks != 200 {
		t.Errorf("期望满分 200，实际 %v", resp.MaxMarks)
	}
	if resp.Tier != grading.TierStandard {
		t.Errorf("期望标准档，实际 %s", resp.Tier)
	}
	if resp.Student == nil || resp.Student.Admission != "ADM001" {
		t.Error("期望响应附带学生信息")
	}
	if len(resp.Breakdown) != 1 || resp.Breakdown[0].Average != 90 {
		t.Errorf("科目明细不符: %+v", resp.Breakdown)
	}

	stored := m.results.results[s.StudentID]
	if stored.CoScholasticData().Result != model.OutcomePass {
		t.Errorf("期望 PASS，实际 %s", stored.CoScholasticData().Result)
	}
	if !stored.LastCalculated.Equal(mockNow) {
		t.Errorf("期望重算时间 %v，实际 %v", mockNow, stored.LastCalculated)
	}
}

func TestResultService_SaveMarks_PrimaryMissingTerm2(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Kabir", "ADM002", "KG", "A")

	resp, err := svc.SaveMarks(context.Background(), s.StudentID, &dto.SaveMarksRequest{
		Term:  TermOne,
		Marks: []dto.SubjectMarkInput{{Subject: "English", C1Written: 38, C1Oral: 9, C2Written: 33, C2Oral: 8}},
	}, "staff-1")
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if resp.Tier != grading.TierPrimary {
		t.Errorf("期望低年级档，实际 %s", resp.Tier)
	}
	if resp.Term1Total != 88 || resp.Percentage != 44 || resp.Grade != string(grading.GradeC2) {
		t.Errorf("期望 88 / 44%% / C2，实际 %v / %v / %s", resp.Term1Total, resp.Percentage, resp.Grade)
	}
	if resp.SubjectAverage != 0 {
		t.Errorf("第二学期缺失时不应有平均分，实际 %v", resp.SubjectAverage)
	}
}

func TestResultService_SaveMarks_CreatesMissingResult(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "7", "A")
	delete(m.results.results, s.StudentID)

	if _, err := svc.SaveMarks(context.Background(), s.StudentID, &dto.SaveMarksRequest{
		Term:  TermOne,
		Marks: []dto.SubjectMarkInput{{Subject: "Science", HalfYearly: 50}},
	}, "staff-1"); err != nil {
		t.Fatalf("期望自动创建成绩记录，实际: %v", err)
	}
	r, ok := m.results.results[s.StudentID]
	if !ok || r.Term1Total != 50 {
		t.Errorf("成绩记录未按学生创建: %+v", r)
	}
}

func TestResultService_SaveMarks_Errors(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "7", "A")
	ctx := context.Background()

	_, err := svc.SaveMarks(ctx, "missing", &dto.SaveMarksRequest{Term: TermOne}, "staff-1")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}

	_, err = svc.SaveMarks(ctx, s.StudentID, &dto.SaveMarksRequest{Term: "term3"}, "staff-1")
	if !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("期望 ErrInvalidTerm，实际: %v", err)
	}

	_, err = svc.SaveMarks(ctx, s.StudentID, &dto.SaveMarksRequest{
		Term:  TermOne,
		Marks: []dto.SubjectMarkInput{{Subject: "Maths"}, {Subject: " Maths "}},
	}, "staff-1")
	if !errors.Is(err, ErrDuplicateSubject) {
		t.Errorf("期望 ErrDuplicateSubject，实际: %v", err)
	}
}

func TestResultService_SaveMarks_ResyncsPlacement(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "2", "A")
	s.Class = "3" // 学生已升入标准档

	resp, err := svc.SaveMarks(context.Background(), s.StudentID, &dto.SaveMarksRequest{
		Term:  TermOne,
		Marks: []dto.SubjectMarkInput{{Subject: "Maths", HalfYearly: 60, C1Written: 40}},
	}, "staff-1")
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if resp.Class != "3" || resp.Tier != grading.TierStandard || resp.Term1Total != 60 {
		t.Errorf("期望按 3 年级标准档计算，实际 class=%s tier=%s total=%v", resp.Class, resp.Tier, resp.Term1Total)
	}
}

// ── UpdateCoScholastic 测试 ──

func TestResultService_UpdateCoScholastic_MergeAndOverwriteOutcome(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "7", "A")

	resp, err := svc.UpdateCoScholastic(context.Background(), s.StudentID, &dto.CoScholasticPatch{
		Health:      optStr("A"),
		ClassRemark: optStr("EXCELLENT"),
		Result:      optStr(model.OutcomePromoted),
	}, "staff-1")
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	cs := resp.CoScholastic
	if cs.Health != "A" || cs.ClassRemark != "EXCELLENT" {
		t.Errorf("补丁字段未生效: %+v", cs)
	}
	if cs.WorkEdu != "B" || cs.Attendance != "0/0" {
		t.Errorf("未提交字段应保持原值: %+v", cs)
	}
	// 重算会覆盖 result 字段
	if cs.Result != model.OutcomeFail {
		t.Errorf("期望重算后为 FAIL，实际 %s", cs.Result)
	}
}

func TestResultService_UpdateCoScholastic_NotFound(t *testing.T) {
	svc, _ := setupTestResultService()

	_, err := svc.UpdateCoScholastic(context.Background(), "missing", &dto.CoScholasticPatch{}, "staff-1")
	if !errors.Is(err, ErrResultNotFound) {
		t.Errorf("期望 ErrResultNotFound，实际: %v", err)
	}
}

// ── ListByClass / Recalculate 测试 ──

func TestResultService_ListByClass_SortedWithStats(t *testing.T) {
	svc, m := setupTestResultService()
	ctx := context.Background()

	scores := map[string]float64{"ADM001": 50, "ADM002": 90, "ADM003": 20}
	for adm, hy := range scores {
		s := m.seedStudent("S-"+adm, adm, "7", "A")
		if _, err := svc.SaveMarks(ctx, s.StudentID, &dto.SaveMarksRequest{
			Term:  TermOne,
			Marks: []dto.SubjectMarkInput{{Subject: "Maths", HalfYearly: hy}},
		}, "staff-1"); err != nil {
			t.Fatalf("保存失败: %v", err)
		}
	}
	m.seedStudent("Other", "ADM004", "7", "B")

	resp, err := svc.ListByClass(ctx, "7", "a")
	if err != nil {
		t.Fatalf("ListByClass 失败: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("期望 3 条，实际 %d", resp.Count)
	}
	if resp.Results[0].Percentage != 45 || resp.Results[2].Percentage != 10 {
		t.Errorf("期望按百分比降序，实际 %v ... %v", resp.Results[0].Percentage, resp.Results[2].Percentage)
	}
	if resp.Results[0].Breakdown != nil {
		t.Error("班级列表不应附带科目明细")
	}

	st := resp.Stats
	if st.Highest != 45 || st.Lowest != 10 || st.Median != 25 {
		t.Errorf("统计不符: %+v", st)
	}
	if st.Mean != 26.67 {
		t.Errorf("期望平均 26.67，实际 %v", st.Mean)
	}
	if st.PassCount != 1 || st.FailCount != 2 {
		t.Errorf("期望 1 通过 2 不通过，实际 %d / %d", st.PassCount, st.FailCount)
	}
}

func TestClassStats_Empty(t *testing.T) {
	if st := classStats(nil); st != (dto.ClassStats{}) {
		t.Errorf("空班级应返回零值，实际 %+v", st)
	}
}

func TestResultService_Recalculate(t *testing.T) {
	svc, m := setupTestResultService()
	s := m.seedStudent("Asha", "ADM001", "7", "A")

	// 绕过保存直接篡改派生字段
	r := m.results.results[s.StudentID]
	r.Term1 = append(r.Term1, model.SubjectMark{Subject: "Maths", HalfYearly: 80})
	r.Grade = "A1"

	resp, err := svc.Recalculate(context.Background(), s.StudentID, "staff-1")
	if err != nil {
		t.Fatalf("Recalculate 失败: %v", err)
	}
	if resp.Term1Total != 80 || resp.Percentage != 40 || resp.Grade != string(grading.GradeD) {
		t.Errorf("重算结果不符: %+v", resp)
	}

	if _, err := svc.Recalculate(context.Background(), "missing", "staff-1"); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("期望 ErrResultNotFound，实际: %v", err)
	}
}
