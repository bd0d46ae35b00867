package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/student"
)

type studentApi struct {
	svc        *student.Service
	paymentSvc *payment.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, paymentSvc *payment.Service) {
	api := studentApi{svc: svc, paymentSvc: paymentSvc}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// StudentDetailResponse carries a student with their payment history and
// derived settlement state.
type StudentDetailResponse struct {
	student.Student
	Payments   []payment.Payment  `json:"payments"`
	Settlement student.Settlement `json:"settlement"`
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()

	var students []student.Student
	var err error
	if filter.IsEmpty() {
		students, err = api.svc.QueryAll()
	} else {
		students, err = api.svc.Filter(*filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	orderStudents(students, ordering)

	return ctx.JSON(http.StatusOK, students)
}

// orderStudents applies the first requested ordering; repositories return
// creation order by default.
func orderStudents(students []student.Student, ordering *Ordering) {
	if len(ordering.Orderings) == 0 {
		return
	}
	ord := ordering.Orderings[0]
	less := func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) }
	switch ord.Field {
	case "full_name":
		less = func(i, j int) bool { return students[i].FullName < students[j].FullName }
	case "grade":
		less = func(i, j int) bool { return students[i].Grade < students[j].Grade }
	case "total_fees":
		less = func(i, j int) bool { return students[i].TotalFees() < students[j].TotalFees() }
	case "paid_amount":
		less = func(i, j int) bool { return students[i].PaidAmount < students[j].PaidAmount }
	}
	if !ord.Ascending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(students, less)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}

	payments, err := api.paymentSvc.QueryByStudent(s.ID)
	if err != nil {
		return errors.Wrap(err, "querying student payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}

	stl, err := api.svc.Settlement(s)
	if err != nil {
		return errors.Wrap(err, "classifying settlement")
	}

	return ctx.JSON(http.StatusOK, StudentDetailResponse{
		Student:    s,
		Payments:   payments,
		Settlement: stl,
	})
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	s, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}
