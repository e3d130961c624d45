package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 新建学生
// admission 为空时按班级自动生成
type CreateStudentRequest struct {
	Name       string `json:"name"        binding:"required,min=1,max=100"`
	Admission  string `json:"admission"   binding:"omitempty,max=50"`
	Roll       string `json:"roll"        binding:"required,max=20"`
	Session    string `json:"session"     binding:"omitempty,session"`
	Class      string `json:"class"       binding:"required,max=20"`
	Section    string `json:"section"     binding:"required,section"`
	DOB        string `json:"dob"         binding:"omitempty,datetime=2006-01-02"`
	DOBWords   string `json:"dob_words"   binding:"omitempty,max=200"`
	FatherName string `json:"father_name" binding:"omitempty,max=100"`
	MotherName string `json:"mother_name" binding:"omitempty,max=100"`
}

// UpdateStudentRequest 更新学生（部分字段），学籍号不可修改
type UpdateStudentRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Roll       *string `json:"roll"        binding:"omitempty,max=20"`
	Session    *string `json:"session"     binding:"omitempty,session"`
	Class      *string `json:"class"       binding:"omitempty,max=20"`
	Section    *string `json:"section"     binding:"omitempty,section"`
	DOB        *string `json:"dob"         binding:"omitempty,datetime=2006-01-02"`
	DOBWords   *string `json:"dob_words"   binding:"omitempty,max=200"`
	FatherName *string `json:"father_name" binding:"omitempty,max=100"`
	MotherName *string `json:"mother_name" binding:"omitempty,max=100"`
	IsActive   *bool   `json:"is_active"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Class   string `form:"class"   binding:"omitempty,max=20"`
	Section string `form:"section" binding:"omitempty,section"`
	Search  string `form:"search"  binding:"omitempty,max=50"`
}

// NextAdmissionRequest 生成下一个学籍号
type NextAdmissionRequest struct {
	Class string `form:"class" binding:"required,max=20"`
}

// StudentResponse 学生档案
type StudentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Admission  string `json:"admission"`
	Roll       string `json:"roll"`
	Session    string `json:"session"`
	Class      string `json:"class"`
	Section    string `json:"section"`
	DOB        string `json:"dob,omitempty"`
	DOBWords   string `json:"dob_words,omitempty"`
	FatherName string `json:"father_name,omitempty"`
	MotherName string `json:"mother_name,omitempty"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// NextAdmissionResponse 下一个可用学籍号
type NextAdmissionResponse struct {
	Admission string `json:"admission"`
}

// ImportStudentError 导入失败的单行
type ImportStudentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportStudentResponse 批量导入结果
type ImportStudentResponse struct {
	Total      int                  `json:"total"`
	Success    int                  `json:"success"`
	Failed     int                  `json:"failed"`
	Admissions []string             `json:"admissions,omitempty"`
	Errors     []ImportStudentError `json:"errors,omitempty"`
}
