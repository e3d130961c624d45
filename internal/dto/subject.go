package dto

// ── 科目配置 DTO ──

// UpsertSubjectsRequest 设置班级科目
type UpsertSubjectsRequest struct {
	ClassName string   `json:"class_name" binding:"required,max=20"`
	Subjects  []string `json:"subjects"   binding:"required,min=1,max=30,dive,required,max=50"`
}

// SubjectsResponse 班级科目
type SubjectsResponse struct {
	ClassName string   `json:"class_name"`
	Subjects  []string `json:"subjects"`
	IsDefault bool     `json:"is_default"` // 未配置时返回默认科目
}
