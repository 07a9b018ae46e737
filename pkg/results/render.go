package result

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Specify Language specific case wrapper as global variable
var caser = cases.Title(language.English)

var printer = message.NewPrinter(language.English)

// Render writes the plain report: the mean first, then one line per
// percentile in declaration order.
func Render(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "took mean %.1fns\n", r.Mean); err != nil {
		return err
	}
	for _, pv := range r.Percentiles {
		if _, err := fmt.Fprintf(w, "percentile %g%%: %dns\n", Percent(pv.Fraction), pv.Nanos); err != nil {
			return err
		}
	}
	return nil
}

// Method to init common table structure.
func initTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// RenderTable presents the report with its run context as a table.
func RenderTable(w io.Writer, label string, r Report) {
	table := initTable(w, []string{"Result Type", "Statistic", "Value"})
	rt := fmt.Sprintf("📊 %s Latency", caser.String(label))
	table.Append([]string{rt, "Trials", strconv.Itoa(r.Trials)})
	table.Append([]string{rt, "Failed", strconv.Itoa(r.Failures)})
	table.Append([]string{rt, "Samples", fmt.Sprintf("%d (failures %s)", r.Samples, r.Policy)})
	table.Append([]string{rt, "Mean", printer.Sprintf("%.1f ns", r.Mean)})
	table.Append([]string{rt, "Min", printer.Sprintf("%d ns", r.Min)})
	table.Append([]string{rt, "Max", printer.Sprintf("%d ns", r.Max)})
	table.Append([]string{rt, "Std Dev", printer.Sprintf("%.1f ns", r.StdDev)})
	for _, pv := range r.Percentiles {
		table.Append([]string{rt, fmt.Sprintf("%g%%tile", Percent(pv.Fraction)), printer.Sprintf("%d ns", pv.Nanos)})
	}
	table.Render()
}
