package model

import "fmt"

const TermTableName = "terms"

// Term 学年学期
type Term struct {
	BaseModel
	AcademicYear int `gorm:"not null;uniqueIndex:idx_term_year_semester" json:"academic_year"`
	Semester     int `gorm:"not null;uniqueIndex:idx_term_year_semester" json:"semester"`
}

func (Term) TableName() string {
	return TermTableName
}

// Label 形如 2/2568
func (t *Term) Label() string {
	return fmt.Sprintf("%d/%d", t.Semester, t.AcademicYear)
}
