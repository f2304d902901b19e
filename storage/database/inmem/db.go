package inmemdb

import (
	"sync"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
)

// DB is a mutex-guarded in-memory store. It backs the API test suites and
// local hacking without a postgres instance; the sqlx repositories are the
// production path.
type DB struct {
	mu sync.RWMutex

	accounts    map[int]*account.Account
	students    map[int]*school.Student
	teachers    map[int]*school.Teacher
	courses     map[int]*school.Course
	topics      map[int]*school.Topic
	enrollments map[int]*school.Enrollment
	attendance  map[int]*school.AttendanceRecord
	grades      map[int]*school.GradeRecord

	seq map[string]int
}

func Open() (*DB, error) {
	db := &DB{
		accounts:    make(map[int]*account.Account),
		students:    make(map[int]*school.Student),
		teachers:    make(map[int]*school.Teacher),
		courses:     make(map[int]*school.Course),
		topics:      make(map[int]*school.Topic),
		enrollments: make(map[int]*school.Enrollment),
		attendance:  make(map[int]*school.AttendanceRecord),
		grades:      make(map[int]*school.GradeRecord),
		seq:         make(map[string]int),
	}
	return db, nil
}

// nextID must be called with db.mu held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}
