package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alrowad/institute/core/student"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "all", want: KindAll},
		{in: "paid", want: KindPaid},
		{in: "UNPAID", want: KindUnpaid},
		{in: " partial ", want: KindPartial},
		{in: " Teacher ", want: KindTeacher},
		{in: "SUBJECT", want: KindSubject},
		{in: "finance", want: KindFinance},
		{in: "bogus", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int
		currency string
		want     string
	}{
		{0, "IQD", "0 IQD"},
		{500, "IQD", "500 IQD"},
		{1500, "IQD", "1,500 IQD"},
		{300000, "IQD", "300,000 IQD"},
		{1200000, "IQD", "1,200,000 IQD"},
		{1234567890, "", "1,234,567,890"},
		{-2725000, "IQD", "-2,725,000 IQD"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%d, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		fees, paid int
		want       string
	}{
		{1000, 0, "0%"},
		{1000, 500, "50%"},
		{1000, 999, "99%"},
		{1000, 1000, "100%"},
		{1000, 1500, "150%"},
		{300000, 100000, "33%"},
	}
	for _, tt := range tests {
		stl, err := student.Classify(tt.fees, tt.paid)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatPercent(stl.Percentage); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", stl.Percentage, got, tt.want)
		}
	}
}

func TestDocumentHTML(t *testing.T) {
	agg, err := Aggregate(sampleStudents())
	if err != nil {
		t.Fatal(err)
	}
	flt := student.QueryFilter{Grade: student.GradeSixthScience}
	doc := NewDocument(KindAll, "admin", flt, agg, nil)

	out, err := doc.HTML()
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	for _, want := range []string{
		doc.Institute,
		"Settlement Report",
		"Printed by admin",
		"Grade: " + student.GradeSixthScience,
		"Ali Hasan",
		"1,200,000",
		"Accountant signature",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}

	// totals row comes after every data row
	totalsAt := strings.Index(html, `class="totals"`)
	lastRowAt := strings.LastIndex(html, "Omar Khalid")
	if totalsAt < lastRowAt {
		t.Error("totals row must be the last table row")
	}

	// header precedes filters, filters precede summary, summary precedes table
	headerAt := strings.Index(html, "<header>")
	filtersAt := strings.Index(html, `class="filters"`)
	summaryAt := strings.Index(html, `class="summary"`)
	tableAt := strings.Index(html, "<table>")
	footerAt := strings.Index(html, "<footer>")
	if !(headerAt < filtersAt && filtersAt < summaryAt && summaryAt < tableAt && tableAt < footerAt) {
		t.Error("report sections are out of order")
	}
}

func TestDocumentHTMLGrouped(t *testing.T) {
	agg, err := Aggregate(sampleStudents())
	if err != nil {
		t.Fatal(err)
	}
	doc := NewDocument(KindTeacher, "admin", student.QueryFilter{}, agg, nil)

	out, err := doc.HTML()
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	if !strings.Contains(html, "Mr. Karim (2)") {
		t.Error("missing teacher group heading")
	}
	if !strings.Contains(html, "Mrs. Huda (1)") {
		t.Error("missing teacher group heading")
	}
}

func TestDocumentHTMLStatusKind(t *testing.T) {
	agg, err := Aggregate(sampleStudents())
	if err != nil {
		t.Fatal(err)
	}
	doc := NewDocument(KindUnpaid, "admin", student.QueryFilter{}, agg, nil)

	out, err := doc.HTML()
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	if !strings.Contains(html, "Omar Khalid") {
		t.Error("unpaid report must list the unpaid student")
	}
	for _, settled := range []string{"Ali Hasan", "Sara Ahmed"} {
		if strings.Contains(html, settled) {
			t.Errorf("unpaid report must not list %s", settled)
		}
	}
}

func TestDocumentHTMLRepeatable(t *testing.T) {
	agg, err := Aggregate(sampleStudents())
	if err != nil {
		t.Fatal(err)
	}
	doc := NewDocument(KindAll, "admin", student.QueryFilter{}, agg, nil)

	first, err := doc.HTML()
	if err != nil {
		t.Fatal(err)
	}
	second, err := doc.HTML()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("rendering the same document twice must be byte-identical")
	}
}

func TestWriteXLSX(t *testing.T) {
	agg, err := Aggregate(sampleStudents())
	if err != nil {
		t.Fatal(err)
	}
	fin := ComputeFinance(nil, nil)
	doc := NewDocument(KindSubject, "admin", student.QueryFilter{}, agg, &fin)

	var buf bytes.Buffer
	if err := doc.WriteXLSX(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("expected workbook bytes")
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("output is not a valid xlsx archive")
	}
}
