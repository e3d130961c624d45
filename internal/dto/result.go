package dto

import "result-generator/backend/internal/grading"

// ── 成绩模块 DTO ──

// SubjectMarkInput 单科分数，范围在绑定时校验
type SubjectMarkInput struct {
	Subject    string  `json:"subject"     binding:"required,max=50"`
	Periodic   float64 `json:"periodic"    binding:"gte=0,lte=10"`
	Notebook   float64 `json:"notebook"    binding:"gte=0,lte=5"`
	Enrichment float64 `json:"enrichment"  binding:"gte=0,lte=5"`
	HalfYearly float64 `json:"half_yearly" binding:"gte=0,lte=80"`
	C1Written  float64 `json:"c1_written"  binding:"gte=0,lte=40"`
	C1Oral     float64 `json:"c1_oral"     binding:"gte=0,lte=10"`
	C2Written  float64 `json:"c2_written"  binding:"gte=0,lte=40"`
	C2Oral     float64 `json:"c2_oral"     binding:"gte=0,lte=10"`
}

// SaveMarksRequest 提交某一学期全部科目分数（整体替换）
type SaveMarksRequest struct {
	Term  string             `json:"term"  binding:"required,oneof=term1 term2"`
	Marks []SubjectMarkInput `json:"marks" binding:"required,max=30,dive"`
}

// CoScholasticPatch 非学科评价，缺省字段保持原值
type CoScholasticPatch struct {
	WorkEdu     *string `json:"work_edu"     binding:"omitempty,oneof=A B C"`
	ArtEdu      *string `json:"art_edu"      binding:"omitempty,oneof=A B C"`
	Health      *string `json:"health"       binding:"omitempty,oneof=A B C"`
	Discipline  *string `json:"discipline"   binding:"omitempty,oneof=A B C"`
	ClassRemark *string `json:"class_remark" binding:"omitempty,max=200"`
	Attendance  *string `json:"attendance"   binding:"omitempty,max=20"`
	Result      *string `json:"result"       binding:"omitempty,oneof=PASS FAIL PROMOTED DETAINED"`
}

// ClassResultsRequest 班级成绩查询参数
type ClassResultsRequest struct {
	Section string `form:"section" binding:"omitempty,section"`
}

// StudentBrief 成绩中附带的学生信息
type StudentBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Admission string `json:"admission"`
	Roll      string `json:"roll"`
}

// ResultResponse 成绩详情
type ResultResponse struct {
	ID             string                   `json:"id"`
	Student        *StudentBrief            `json:"student,omitempty"`
	Session        string                   `json:"session"`
	Class          string                   `json:"class"`
	Section        string                   `json:"section"`
	Tier           grading.Tier             `json:"tier"`
	Term1          []SubjectMarkInput       `json:"term1"`
	Term2          []SubjectMarkInput       `json:"term2"`
	CoScholastic   CoScholasticResponse     `json:"co_scholastic"`
	Term1Total     float64                  `json:"term1_total"`
	Term2Total     float64                  `json:"term2_total"`
	GrandTotal     float64                  `json:"grand_total"`
	MaxMarks       float64                  `json:"max_marks"`
	Percentage     float64                  `json:"percentage"`
	Grade          string                   `json:"grade"`
	Breakdown      []grading.SubjectSummary `json:"breakdown,omitempty"`
	SubjectAverage float64                  `json:"subject_average"` // 两学期都有成绩的科目平均分
	LastCalculated string                   `json:"last_calculated"`
}

// CoScholasticResponse 非学科评价
type CoScholasticResponse struct {
	WorkEdu     string `json:"work_edu"`
	ArtEdu      string `json:"art_edu"`
	Health      string `json:"health"`
	Discipline  string `json:"discipline"`
	ClassRemark string `json:"class_remark"`
	Attendance  string `json:"attendance"`
	Result      string `json:"result"`
}

// CalculationResponse 手动重算结果
type CalculationResponse struct {
	Term1Total float64 `json:"term1_total"`
	Term2Total float64 `json:"term2_total"`
	GrandTotal float64 `json:"grand_total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// ClassStats 班级统计
type ClassStats struct {
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Highest   float64 `json:"highest"`
	Lowest    float64 `json:"lowest"`
	PassCount int     `json:"pass_count"`
	FailCount int     `json:"fail_count"`
}

// ClassResultsResponse 班级成绩排名
type ClassResultsResponse struct {
	Class   string           `json:"class"`
	Section string           `json:"section,omitempty"`
	Count   int              `json:"count"`
	Stats   ClassStats       `json:"stats"`
	Results []ResultResponse `json:"results"`
}
