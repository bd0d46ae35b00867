// Package inmemdb is a map-backed storage backend used by tests and local
// development runs. Derived values (a student's paid amount, a subject's
// student count) are recomputed on every read, mirroring the SQL backend.
package inmemdb

import (
	"sync"

	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/settings"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/subject"
	"github.com/alrowad/institute/core/teacher"
	"github.com/alrowad/institute/core/user"
	"github.com/alrowad/institute/core/withdrawal"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}
	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student
	}
	paymentTable struct {
		mutex sync.RWMutex
		table map[string]*payment.Payment
	}
	subjectTable struct {
		mutex sync.RWMutex
		table map[string]*subject.Subject
	}
	teacherTable struct {
		mutex sync.RWMutex
		table map[string]*teacher.Teacher
	}
	withdrawalTable struct {
		mutex sync.RWMutex
		table map[string]*withdrawal.Withdrawal
	}
	settingsTable struct {
		mutex sync.RWMutex
		row   *settings.Settings
	}

	DB struct {
		user       *userTable
		student    *studentTable
		payment    *paymentTable
		subject    *subjectTable
		teacher    *teacherTable
		withdrawal *withdrawalTable
		settings   *settingsTable
	}
)

func NewDB() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		payment:    &paymentTable{table: make(map[string]*payment.Payment)},
		subject:    &subjectTable{table: make(map[string]*subject.Subject)},
		teacher:    &teacherTable{table: make(map[string]*teacher.Teacher)},
		withdrawal: &withdrawalTable{table: make(map[string]*withdrawal.Withdrawal)},
		settings:   &settingsTable{},
	}
}
