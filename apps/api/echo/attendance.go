package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulahq/aula/core"
	"github.com/aulahq/aula/core/school"
)

var errStudentIDRequired = "this field is required"

type attendanceApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{svc: deps.SchoolSvc, validate: deps.Validate}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.query)
	ag.POST("", api.record)
}

// query scopes visibility by role: admins see everything, students only their
// own rows and teachers nothing at all.
func (api *attendanceApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsTeacher() {
		return errHttpForbidden
	}

	rctx := ctx.Request().Context()
	var filter school.AttendanceFilter
	if claims.IsStudent() {
		std, err := api.svc.GetStudentByAccountID(rctx, claims.AccountID())
		if err != nil {
			if errors.Cause(err) == school.ErrNotFound {
				return ctx.JSON(http.StatusOK, []school.AttendanceRecord{})
			}
			return errors.Wrap(err, "resolving student profile")
		}
		filter.StudentID = std.ID
	}

	records, err := api.svc.QueryAttendance(rctx, filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []school.AttendanceRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

// record upserts the attendance mark for (student, course, date). A student
// caller always marks their own attendance; the body student_id is ignored.
func (api *attendanceApi) record(ctx echo.Context) error {
	var data school.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rctx := ctx.Request().Context()
	studentID := data.StudentID
	if claims.IsStudent() {
		std, err := api.svc.GetStudentByAccountID(rctx, claims.AccountID())
		if err != nil {
			if errors.Cause(err) == school.ErrNotFound {
				return core.NewValidationError(nil,
					core.FieldError{Field: "student_id", Error: "student profile not found"})
			}
			return errors.Wrap(err, "resolving student profile")
		}
		studentID = std.ID
	} else if studentID == 0 {
		return core.NewValidationError(nil,
			core.FieldError{Field: "student_id", Error: errStudentIDRequired})
	}

	rec, err := api.svc.RecordAttendance(rctx, studentID, data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}
