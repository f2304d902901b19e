package account

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/aulahq/aula/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Account is a login identity with exactly one role.
type Account struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Telefono     string    `json:"telefono"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Account) IsTeacher() bool { return a.Role == RoleTeacher }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }

// Register contains information needed to register a new Account along with
// its role profile. Specialty is mandatory for teachers; Grade is the optional
// cohort label of a student.
type Register struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Telefono  string `json:"telefono"`
	Role      string `json:"role" validate:"required,role"`
	Specialty string `json:"specialty"`
	Grade     string `json:"grade"`
}

func (r *Register) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Role = core.CleanString(r.Role, true /* lower */)
	r.Specialty = core.CleanString(r.Specialty)

	if err := validate.Struct(r); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, r.Email)
}

// UpdateAccount defines what information may be provided to modify an existing
// Account. Empty fields keep their stored value; Password is only rehashed when
// non-empty.
type UpdateAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Telefono string `json:"telefono"`
	Role     string `json:"role" validate:"omitempty,role"`
	Password string `json:"password"`
}

func (ua *UpdateAccount) Validate(ctx context.Context, origAcct Account, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(ua.Name); name != "" {
		ua.Name = name
	} else {
		ua.Name = origAcct.Name
	}
	if email := core.CleanString(ua.Email, true /* lower */); email != "" {
		ua.Email = email
	} else {
		ua.Email = origAcct.Email
	}
	if ua.Telefono == "" {
		ua.Telefono = origAcct.Telefono
	}
	ua.Role = core.CleanString(ua.Role, true /* lower */)

	if err := validate.Struct(ua); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ua.Email, origAcct)
}
