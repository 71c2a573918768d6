package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// CSVHeader is the first line of every export.
var CSVHeader = []string{"identity", "tag", "count", "lookback_days", "scope"}

// WriteCSV writes the full export, header included. Quoting follows RFC 4180:
// fields containing commas or quotes are enclosed in double quotes and
// embedded quotes are doubled.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			string(r.Identity),
			r.Tag,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.LookbackDays),
			r.Scope,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable renders summary rows as an aligned text table.
func WriteTable(w io.Writer, rows []Row) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Member", "Messages"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, r := range rows {
		table.Append([]string{strconv.Itoa(i + 1), r.Tag, strconv.Itoa(r.Count)})
	}
	table.Render()
}
