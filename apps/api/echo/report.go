package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/report"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/withdrawal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportApi struct {
	studentSvc    *student.Service
	paymentSvc    *payment.Service
	withdrawalSvc *withdrawal.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, studentSvc *student.Service, paymentSvc *payment.Service, withdrawalSvc *withdrawal.Service) {
	api := reportApi{studentSvc: studentSvc, paymentSvc: paymentSvc, withdrawalSvc: withdrawalSvc}

	g.GET("/stats", api.stats, jwt)
	g.GET("/reports/:kind", api.render, jwt)
}

type (
	TeacherStat struct {
		Teacher      string `json:"teacher"`
		StudentCount int    `json:"student_count"`
		TotalFees    int    `json:"total_fees"`
		Paid         int    `json:"paid"`
	}

	StatsResponse struct {
		StudentCount int                    `json:"student_count"`
		StatusCounts map[student.Status]int `json:"status_counts"`
		Totals       report.Totals          `json:"totals"`
		Teachers     []TeacherStat          `json:"teachers"`
		Finance      report.Finance         `json:"finance"`
	}
)

// stats serves the dashboard numbers: settlement buckets, per-teacher
// sums and the revenue/expense balance, all computed from live data.
func (api *reportApi) stats(ctx echo.Context) error {
	students, err := api.studentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	agg, err := report.Aggregate(students)
	if err != nil {
		return errors.Wrap(err, "aggregating students")
	}

	fin, err := api.finance()
	if err != nil {
		return err
	}

	resp := StatsResponse{
		StudentCount: agg.Totals.StudentCount,
		StatusCounts: make(map[student.Status]int, len(student.Statuses)),
		Totals:       agg.Totals,
		Teachers:     []TeacherStat{},
		Finance:      fin,
	}
	for _, status := range student.Statuses {
		resp.StatusCounts[status] = len(agg.ByStatus[status])
	}
	for _, g := range agg.ByTeacher {
		stat := TeacherStat{Teacher: g.Key, StudentCount: g.StudentCount}
		for _, row := range g.Rows {
			stat.TotalFees += row.TotalFees
			stat.Paid += row.Paid
		}
		resp.Teachers = append(resp.Teachers, stat)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// render produces a report document in the requested format. The filter
// is applied to the student set before aggregation so the document's
// totals agree with its rows.
func (api *reportApi) render(ctx echo.Context) error {
	kind, err := report.ParseKind(ctx.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	filter := new(student.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var students []student.Student
	if filter.IsEmpty() {
		students, err = api.studentSvc.QueryAll()
	} else {
		students, err = api.studentSvc.Filter(*filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	agg, err := report.Aggregate(students)
	if err != nil {
		return errors.Wrap(err, "aggregating students")
	}

	var fin *report.Finance
	if kind == report.KindFinance {
		f, ferr := api.finance()
		if ferr != nil {
			return ferr
		}
		fin = &f
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	doc := report.NewDocument(kind, claims.Username, *filter, agg, fin)

	switch format := ctx.QueryParam("format"); format {
	case "", "json":
		return ctx.JSON(http.StatusOK, doc)
	case "html":
		b, err := doc.HTML()
		if err != nil {
			return errors.Wrap(err, "rendering report HTML")
		}
		return ctx.HTMLBlob(http.StatusOK, b)
	case "xlsx":
		var buf bytes.Buffer
		if err := doc.WriteXLSX(&buf); err != nil {
			return errors.Wrap(err, "rendering report workbook")
		}
		filename := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().Format("2006-01-02"))
		ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func (api *reportApi) finance() (report.Finance, error) {
	payments, err := api.paymentSvc.QueryAll()
	if err != nil {
		return report.Finance{}, errors.Wrap(err, "querying payments")
	}
	withdrawals, err := api.withdrawalSvc.QueryAll()
	if err != nil {
		return report.Finance{}, errors.Wrap(err, "querying withdrawals")
	}
	return report.ComputeFinance(payments, withdrawals), nil
}
