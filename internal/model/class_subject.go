package model

import "gorm.io/datatypes"

// ClassSubject 班级科目配置表，对应 class_subjects
// class_name 统一存为大写，每个班级一条
type ClassSubject struct {
	ClassSubjectID string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_subject_id"`
	ClassName      string                      `gorm:"type:varchar(20);not null;uniqueIndex"          json:"class_name"`
	Subjects       datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"              json:"subjects"`
	BaseModel
}

// TableName 指定表名
func (ClassSubject) TableName() string { return "class_subjects" }
