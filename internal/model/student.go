package model

import "time"

// Student 学生档案表，对应 students
// admission 全局唯一，创建后不再修改；删除为硬删除（释放学籍号）
type Student struct {
	StudentID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name       string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Admission  string     `gorm:"type:varchar(50);not null;uniqueIndex"          json:"admission"`
	Roll       string     `gorm:"type:varchar(20);not null"                      json:"roll"`
	Session    string     `gorm:"type:varchar(20);not null"                      json:"session"`
	Class      string     `gorm:"type:varchar(20);not null"                      json:"class"`
	Section    string     `gorm:"type:char(1);not null"                          json:"section"`
	DOB        *time.Time `gorm:"type:date"                                      json:"dob,omitempty"`
	DOBWords   string     `gorm:"type:varchar(200);not null;default:''"          json:"dob_words"`
	FatherName string     `gorm:"type:varchar(100);not null;default:''"          json:"father_name"`
	MotherName string     `gorm:"type:varchar(100);not null;default:''"          json:"mother_name"`
	IsActive   bool       `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// ClassSection 形如 "5 (A)" 的展示文本
func (s *Student) ClassSection() string {
	return s.Class + " (" + s.Section + ")"
}
