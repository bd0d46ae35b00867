package report

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/student"
)

// Kind selects the report layout. Status kinds show only the matching
// settlement bucket; teacher and subject kinds group rows; finance is a
// summary with no student table.
type Kind string

const (
	KindAll     Kind = "all"
	KindPaid    Kind = "paid"
	KindUnpaid  Kind = "unpaid"
	KindPartial Kind = "partial"
	KindTeacher Kind = "teacher"
	KindSubject Kind = "subject"
	KindFinance Kind = "finance"
)

var Kinds = []Kind{KindAll, KindPaid, KindUnpaid, KindPartial, KindTeacher, KindSubject, KindFinance}

var ErrUnknownKind = errors.New("unknown report kind")

// ParseKind validates a report kind from user input.
func ParseKind(s string) (Kind, error) {
	k := Kind(core.CleanString(s, true))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

type (
	// Metadata identifies who produced a report and when. PrintedAt is
	// stamped when the document is assembled, not when it is rendered,
	// so repeated renders of one document are byte-identical.
	Metadata struct {
		PrintedBy string    `json:"printed_by"`
		PrintedAt time.Time `json:"printed_at"`
	}

	// Document is a fully assembled, render-ready report.
	Document struct {
		Kind        Kind        `json:"kind"`
		Title       string      `json:"title"`
		Institute   string      `json:"institute"`
		Metadata    Metadata    `json:"metadata"`
		Filters     []string    `json:"filters,omitempty"` // human-readable active filters
		Aggregation Aggregation `json:"aggregation"`
		Finance     *Finance    `json:"finance,omitempty"`
		Currency    string      `json:"currency"`
	}
)

var kindTitles = map[Kind]string{
	KindAll:     "Settlement Report",
	KindPaid:    "Paid Students Report",
	KindUnpaid:  "Unpaid Students Report",
	KindPartial: "Partially Paid Students Report",
	KindTeacher: "Per-Teacher Report",
	KindSubject: "Per-Subject Report",
	KindFinance: "Finance Report",
}

// NewDocument assembles a document for the given kind. The filter must
// already have been applied to the student set before aggregation.
func NewDocument(kind Kind, printedBy string, filter student.QueryFilter, agg Aggregation, fin *Finance) Document {
	doc := Document{
		Kind:        kind,
		Title:       kindTitles[kind],
		Institute:   core.Conf.Institute.Name,
		Currency:    core.Conf.Institute.CurrencySuffix,
		Metadata:    Metadata{PrintedBy: printedBy, PrintedAt: time.Now()},
		Aggregation: agg,
		Finance:     fin,
	}
	if filter.Search != "" {
		doc.Filters = append(doc.Filters, "Search: "+filter.Search)
	}
	if filter.Grade != "" {
		doc.Filters = append(doc.Filters, "Grade: "+filter.Grade)
	}
	if filter.Subject != "" {
		doc.Filters = append(doc.Filters, "Subject: "+filter.Subject)
	}
	if filter.Teacher != "" {
		doc.Filters = append(doc.Filters, "Teacher: "+filter.Teacher)
	}
	return doc
}

// FormatAmount renders an integer amount with thousands separators and
// the configured currency suffix, e.g. 1200000 -> "1,200,000 IQD".
func FormatAmount(amount int, currency string) string {
	s := groupThousands(amount)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatPercent renders a settlement percentage as a whole number.
// The fraction is truncated, not rounded, so a student one dinar short
// of their fees never prints as 100%.
func FormatPercent(p float64) string {
	return strconv.Itoa(int(p)) + "%"
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		var b strings.Builder
		pre := len(s) % 3
		if pre > 0 {
			b.WriteString(s[:pre])
		}
		for i := pre; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

var statusLabels = map[student.Status]string{
	student.StatusPaid:    "Paid",
	student.StatusPartial: "Partial",
	student.StatusUnpaid:  "Unpaid",
}

// StatusLabel is the printable label for a settlement status.
func StatusLabel(s student.Status) string {
	if lbl, ok := statusLabels[s]; ok {
		return lbl
	}
	return string(s)
}

type (
	// viewRow is a Row with amounts preformatted for display.
	viewRow struct {
		Index     int
		Name      string
		Grade     string
		Subject   string
		Teacher   string
		Fees      string
		Paid      string
		Remaining string
		Status    string
		Percent   string
	}

	// section is one table of the rendered report. Grouped kinds produce
	// one section per group; flat kinds produce a single section.
	section struct {
		Heading string
		Rows    []viewRow
		Totals  *viewRow // rendered as the last table row
	}

	viewModel struct {
		Document
		Summary  []summaryItem
		Sections []section
	}

	summaryItem struct {
		Label string
		Value string
	}
)

func (doc Document) view() viewModel {
	vm := viewModel{Document: doc}
	tot := doc.Aggregation.Totals
	vm.Summary = []summaryItem{
		{"Students", strconv.Itoa(tot.StudentCount)},
		{"Total fees", FormatAmount(tot.Fees, doc.Currency)},
		{"Paid", FormatAmount(tot.Paid, doc.Currency)},
		{"Remaining", FormatAmount(tot.Remaining, doc.Currency)},
	}
	if tot.Fees > 0 {
		vm.Summary = append(vm.Summary, summaryItem{"Collection", strconv.Itoa(tot.Paid * 100 / tot.Fees) + "%"})
	}
	if doc.Finance != nil {
		vm.Summary = append(vm.Summary,
			summaryItem{"Revenue", FormatAmount(doc.Finance.Revenue, doc.Currency)},
			summaryItem{"Expenses", FormatAmount(doc.Finance.Expenses, doc.Currency)},
			summaryItem{"Net", FormatAmount(doc.Finance.Net, doc.Currency)},
		)
	}

	switch doc.Kind {
	case KindTeacher:
		for _, g := range doc.Aggregation.ByTeacher {
			vm.Sections = append(vm.Sections, doc.groupSection(g))
		}
	case KindSubject:
		for _, g := range doc.Aggregation.BySubject {
			vm.Sections = append(vm.Sections, doc.groupSection(g))
		}
	case KindFinance:
		// summary only, no student table
	case KindPaid, KindUnpaid, KindPartial:
		vm.Sections = append(vm.Sections, doc.statusSection(kindStatus[doc.Kind]))
	default:
		sec := section{Rows: doc.viewRows(doc.Aggregation.Rows)}
		sec.Totals = doc.totalsRow(tot)
		vm.Sections = append(vm.Sections, sec)
	}
	return vm
}

var kindStatus = map[Kind]student.Status{
	KindPaid:    student.StatusPaid,
	KindUnpaid:  student.StatusUnpaid,
	KindPartial: student.StatusPartial,
}

func (doc Document) statusSection(status student.Status) section {
	rows := doc.Aggregation.ByStatus[status]
	sec := section{Rows: doc.viewRows(rows)}
	var t Totals
	for _, r := range rows {
		t.Fees += r.TotalFees
		t.Paid += r.Paid
		t.Remaining += r.Settlement.Remaining
		t.StudentCount++
	}
	sec.Totals = doc.totalsRow(t)
	return sec
}

func (doc Document) groupSection(g Group) section {
	sec := section{
		Heading: g.Key + " (" + strconv.Itoa(g.StudentCount) + ")",
		Rows:    doc.viewRows(g.Rows),
	}
	var t Totals
	for _, r := range g.Rows {
		t.Fees += r.TotalFees
		t.Paid += r.Paid
		t.Remaining += r.Settlement.Remaining
		t.StudentCount++
	}
	sec.Totals = doc.totalsRow(t)
	return sec
}

func (doc Document) viewRows(rows []Row) []viewRow {
	out := make([]viewRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, viewRow{
			Index:     i + 1,
			Name:      r.Name,
			Grade:     r.Grade,
			Subject:   r.Subject,
			Teacher:   r.Teacher,
			Fees:      FormatAmount(r.TotalFees, doc.Currency),
			Paid:      FormatAmount(r.Paid, doc.Currency),
			Remaining: FormatAmount(r.Settlement.Remaining, doc.Currency),
			Status:    StatusLabel(r.Settlement.Status),
			Percent:   FormatPercent(r.Settlement.Percentage),
		})
	}
	return out
}

func (doc Document) totalsRow(t Totals) *viewRow {
	return &viewRow{
		Name:      "Total (" + strconv.Itoa(t.StudentCount) + " students)",
		Fees:      FormatAmount(t.Fees, doc.Currency),
		Paid:      FormatAmount(t.Paid, doc.Currency),
		Remaining: FormatAmount(t.Remaining, doc.Currency),
	}
}

var htmlTmpl = template.Must(template.New("report").Parse(reportHTML))

// HTML renders the document as a standalone printable page. Layout order
// is fixed: header, active filters, summary, tables with the totals row
// last, then the footer with the signature block.
func (doc Document) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, doc.view()); err != nil {
		return nil, errors.Wrap(err, "rendering report")
	}
	return buf.Bytes(), nil
}

const reportHTML = `<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head>
<meta charset="utf-8">
<title>{{ .Title }} - {{ .Institute }}</title>
<style>
body { font-family: "Segoe UI", Tahoma, sans-serif; margin: 24px; color: #111; }
header { text-align: center; border-bottom: 2px solid #333; padding-bottom: 8px; }
header h1 { margin: 0; font-size: 22px; }
header .meta { font-size: 12px; color: #555; margin-top: 4px; }
.filters { margin: 10px 0; font-size: 13px; }
.filters span { background: #eee; border-radius: 4px; padding: 2px 8px; margin-left: 6px; }
.summary { display: flex; flex-wrap: wrap; gap: 16px; margin: 14px 0; }
.summary div { border: 1px solid #ccc; border-radius: 6px; padding: 8px 14px; font-size: 13px; }
table { width: 100%; border-collapse: collapse; margin-top: 10px; font-size: 13px; }
th, td { border: 1px solid #999; padding: 5px 8px; text-align: right; }
th { background: #f0f0f0; }
tr.totals td { font-weight: bold; background: #fafafa; }
h2.group { font-size: 16px; margin: 18px 0 4px; }
footer { margin-top: 36px; display: flex; justify-content: space-between; font-size: 13px; }
.signature { border-top: 1px solid #333; padding-top: 4px; width: 200px; text-align: center; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
<h1>{{ .Institute }}</h1>
<div>{{ .Title }}</div>
<div class="meta">Printed by {{ .Metadata.PrintedBy }} on {{ .Metadata.PrintedAt.Format "2006-01-02 15:04" }}</div>
</header>
{{ if .Filters }}<div class="filters">Filters:{{ range .Filters }}<span>{{ . }}</span>{{ end }}</div>{{ end }}
<div class="summary">
{{ range .Summary }}<div>{{ .Label }}: {{ .Value }}</div>
{{ end }}</div>
{{ range .Sections }}
{{ if .Heading }}<h2 class="group">{{ .Heading }}</h2>{{ end }}
<table>
<thead><tr><th>#</th><th>Name</th><th>Grade</th><th>Subject</th><th>Teacher</th><th>Fees</th><th>Paid</th><th>Remaining</th><th>Status</th><th>%</th></tr></thead>
<tbody>
{{ range .Rows }}<tr><td>{{ .Index }}</td><td>{{ .Name }}</td><td>{{ .Grade }}</td><td>{{ .Subject }}</td><td>{{ .Teacher }}</td><td>{{ .Fees }}</td><td>{{ .Paid }}</td><td>{{ .Remaining }}</td><td>{{ .Status }}</td><td>{{ .Percent }}</td></tr>
{{ end }}{{ with .Totals }}<tr class="totals"><td></td><td>{{ .Name }}</td><td></td><td></td><td></td><td>{{ .Fees }}</td><td>{{ .Paid }}</td><td>{{ .Remaining }}</td><td></td><td></td></tr>
{{ end }}</tbody>
</table>
{{ end }}
<footer>
<div class="signature">Accountant signature</div>
<div class="signature">Administration</div>
</footer>
</body>
</html>
`
