package model

import (
	"time"

	"gorm.io/datatypes"
)

// ── 成绩结果状态与评价等级 ──

const (
	OutcomePass     = "PASS"
	OutcomeFail     = "FAIL"
	OutcomePromoted = "PROMOTED"
	OutcomeDetained = "DETAINED"
)

// SubjectMark 单科单学期分数（作为 jsonb 数组元素存储）
// 标准档与低年级档字段互不混用，缺省为 0
type SubjectMark struct {
	Subject string `json:"subject"`

	// 标准档（3 年级及以上）
	Periodic   float64 `json:"periodic"`    // [0,10]
	Notebook   float64 `json:"notebook"`    // [0,5]
	Enrichment float64 `json:"enrichment"`  // [0,5]
	HalfYearly float64 `json:"half_yearly"` // [0,80]，第二学期即 Annual

	// 低年级档（1、2 年级及 KG）
	C1Written float64 `json:"c1_written"` // [0,40]
	C1Oral    float64 `json:"c1_oral"`    // [0,10]
	C2Written float64 `json:"c2_written"` // [0,40]
	C2Oral    float64 `json:"c2_oral"`    // [0,10]
}

// CoScholastic 非学科评价与综合评语
type CoScholastic struct {
	WorkEdu     string `json:"work_edu"`
	ArtEdu      string `json:"art_edu"`
	Health      string `json:"health"`
	Discipline  string `json:"discipline"`
	ClassRemark string `json:"class_remark"`
	Attendance  string `json:"attendance"`
	Result      string `json:"result"`
}

// DefaultCoScholastic 新建成绩记录时的初始评价
func DefaultCoScholastic() CoScholastic {
	return CoScholastic{
		WorkEdu:     "B",
		ArtEdu:      "B",
		Health:      "B",
		Discipline:  "B",
		ClassRemark: "VERY GOOD",
		Attendance:  "0/0",
		Result:      OutcomePass,
	}
}

// Result 成绩表，对应 results（与学生一对一）
// term*_total / grand_total / percentage / grade 均为派生字段，只能由重算写入
type Result struct {
	ResultID       string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"result_id"`
	StudentID      string                              `gorm:"type:uuid;not null;uniqueIndex"                 json:"student_id"`
	Session        string                              `gorm:"type:varchar(20);not null"                      json:"session"`
	Class          string                              `gorm:"type:varchar(20);not null"                      json:"class"`
	Section        string                              `gorm:"type:char(1);not null"                          json:"section"`
	Term1          datatypes.JSONSlice[SubjectMark]    `gorm:"type:jsonb;not null;default:'[]'"              json:"term1"`
	Term2          datatypes.JSONSlice[SubjectMark]    `gorm:"type:jsonb;not null;default:'[]'"              json:"term2"`
	CoScholastic   datatypes.JSONType[CoScholastic]    `gorm:"type:jsonb;not null;default:'{}'"              json:"co_scholastic"`
	Term1Total     float64                             `gorm:"type:numeric(8,2);not null;default:0"           json:"term1_total"`
	Term2Total     float64                             `gorm:"type:numeric(8,2);not null;default:0"           json:"term2_total"`
	GrandTotal     float64                             `gorm:"type:numeric(8,2);not null;default:0"           json:"grand_total"`
	Percentage     float64                             `gorm:"type:numeric(5,2);not null;default:0"           json:"percentage"`
	Grade          string                              `gorm:"type:varchar(2);not null;default:''"            json:"grade"`
	LastCalculated time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_calculated"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Result) TableName() string { return "results" }

// NewResultFor 为学生创建空成绩记录，班级/分班/学年从学生档案复制
func NewResultFor(s *Student) *Result {
	return &Result{
		StudentID:    s.StudentID,
		Session:      s.Session,
		Class:        s.Class,
		Section:      s.Section,
		Term1:        datatypes.JSONSlice[SubjectMark]{},
		Term2:        datatypes.JSONSlice[SubjectMark]{},
		CoScholastic: datatypes.NewJSONType(DefaultCoScholastic()),
	}
}

// CoScholasticData 返回评价数据副本
func (r *Result) CoScholasticData() CoScholastic {
	return r.CoScholastic.Data()
}

// SetCoScholastic 整体替换评价数据
func (r *Result) SetCoScholastic(cs CoScholastic) {
	r.CoScholastic = datatypes.NewJSONType(cs)
}

// PlacementMatches 判断成绩记录上的班级冗余字段是否与学生档案一致
func (r *Result) PlacementMatches(s *Student) bool {
	return r.Class == s.Class && r.Section == s.Section && r.Session == s.Session
}

// SyncPlacement 将学生档案的班级/分班/学年同步到成绩记录
// 返回 true 表示发生了变更
func (r *Result) SyncPlacement(s *Student) bool {
	if r.PlacementMatches(s) {
		return false
	}
	r.Class = s.Class
	r.Section = s.Section
	r.Session = s.Session
	return true
}
