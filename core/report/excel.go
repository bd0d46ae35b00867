package report

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var xlsxHeader = []string{"#", "Name", "Grade", "Subject", "Teacher", "Fees", "Paid", "Remaining", "Status", "%"}

// WriteXLSX writes the document as an Excel workbook. The sheet mirrors
// the HTML layout: a title block, summary lines, then one table per
// section with the totals row last.
func (doc Document) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	vm := doc.view()
	row := 1

	set := func(col, r int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, r)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	if err := set(1, row, vm.Institute); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	row++
	_ = set(1, row, vm.Title)
	row++
	_ = set(1, row, "Printed by "+vm.Metadata.PrintedBy+" on "+vm.Metadata.PrintedAt.Format("2006-01-02 15:04"))
	row += 2

	for _, flt := range vm.Filters {
		_ = set(1, row, flt)
		row++
	}
	if len(vm.Filters) > 0 {
		row++
	}

	for _, item := range vm.Summary {
		_ = set(1, row, item.Label)
		_ = set(2, row, item.Value)
		row++
	}
	row++

	boldStyle, err := f.NewStyle(`{"font":{"bold":true}}`)
	if err != nil {
		return errors.Wrap(err, "writing workbook")
	}

	writeRow := func(r int, vr viewRow, withIndex bool) {
		if withIndex {
			_ = set(1, r, vr.Index)
		}
		_ = set(2, r, vr.Name)
		_ = set(3, r, vr.Grade)
		_ = set(4, r, vr.Subject)
		_ = set(5, r, vr.Teacher)
		_ = set(6, r, vr.Fees)
		_ = set(7, r, vr.Paid)
		_ = set(8, r, vr.Remaining)
		_ = set(9, r, vr.Status)
		_ = set(10, r, vr.Percent)
	}

	for _, sec := range vm.Sections {
		if sec.Heading != "" {
			_ = set(1, row, sec.Heading)
			row++
		}
		for col, h := range xlsxHeader {
			_ = set(col+1, row, h)
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(xlsxHeader), row)
		_ = f.SetCellStyle(sheet, start, end, boldStyle)
		row++

		for _, vr := range sec.Rows {
			writeRow(row, vr, true)
			row++
		}
		if sec.Totals != nil {
			writeRow(row, *sec.Totals, false)
			start, _ = excelize.CoordinatesToCellName(1, row)
			end, _ = excelize.CoordinatesToCellName(len(xlsxHeader), row)
			_ = f.SetCellStyle(sheet, start, end, boldStyle)
			row++
		}
		row++
	}

	_ = set(1, row+2, "Accountant signature")
	_ = set(6, row+2, "Administration")

	_ = f.SetColWidth(sheet, "B", "E", 22)
	_ = f.SetColWidth(sheet, "F", "H", 14)
	f.SetSheetName(sheet, sheetName(doc.Kind))

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func sheetName(k Kind) string {
	n := kindTitles[k]
	if n == "" {
		n = "Report " + strconv.Quote(string(k))
	}
	return n
}
