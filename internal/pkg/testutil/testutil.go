package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"capstone/internal/model"
	"capstone/internal/pkg/config"
	"capstone/internal/pkg/database"
	"capstone/pkg/constants"
)

// NewDB 创建内存 SQLite 数据库并迁移全部表, 开启外键约束
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Database: ":memory:?_pragma=foreign_keys(1)",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixture 测试数据构造
type Fixture struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixture(t testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) User(username, role string) *model.User {
	f.t.Helper()
	user := &model.User{Username: username, Role: role}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

func (f *Fixture) Student(username string) *model.User {
	return f.User(username, constants.RoleStudent)
}

func (f *Fixture) Advisor(username string) *model.User {
	return f.User(username, constants.RoleAdvisor)
}

func (f *Fixture) Admin(username string) *model.User {
	return f.User(username, constants.RoleAdmin)
}

func (f *Fixture) Term(year, semester int) *model.Term {
	f.t.Helper()
	term := &model.Term{AcademicYear: year, Semester: semester}
	require.NoError(f.t, f.db.Create(term).Error)
	return term
}

// Section 创建班级, 默认团队人数 1..3
func (f *Fixture) Section(term *model.Term, code, courseType string) *model.Section {
	f.t.Helper()
	deadline := time.Date(term.AcademicYear-543, 12, 1, 0, 0, 0, 0, time.Local)
	section := &model.Section{
		TermID:          term.ID,
		SectionCode:     code,
		CourseType:      courseType,
		StudyType:       "regular",
		MinTeamSize:     1,
		MaxTeamSize:     3,
		ProjectDeadline: &deadline,
	}
	require.NoError(f.t, f.db.Create(section).Error)
	return section
}

func (f *Fixture) Enroll(section *model.Section, users ...*model.User) {
	f.t.Helper()
	for _, u := range users {
		require.NoError(f.t, f.db.Create(&model.Enrollment{
			UserID:     u.ID,
			SectionID:  section.ID,
			EnrolledAt: time.Now(),
		}).Error)
	}
}

// Count 统计表中满足条件的行数
func (f *Fixture) Count(value interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var count int64
	q := f.db.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&count).Error)
	return count
}
