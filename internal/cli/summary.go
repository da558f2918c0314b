package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/pipeline"
)

// FormatRate renders a fee rate, or "-" when it was not recorded.
func FormatRate(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatDelta renders before → after with a direction marker.
func FormatDelta(before, after *float64) string {
	s := FormatRate(before) + " → " + FormatRate(after)
	switch {
	case before == nil || after == nil:
		return s
	case *after > *before:
		return ErrorStyle.Render(s + " " + UpIcon)
	case *after < *before:
		return SuccessStyle.Render(s + " " + DownIcon)
	default:
		return s
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderCellStyle
			}
			return BodyCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// RenderChanges renders fee changes as a table.
func RenderChanges(changes []model.ChangeEntry) string {
	if len(changes) == 0 {
		return SubtleStyle.Render("No fee changes")
	}

	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{c.Code, c.Name, c.Field, FormatDelta(c.Before, c.After)})
	}
	return renderTable([]string{"Code", "Name", "Field", "Change"}, rows)
}

// RenderRecords renders reconciled records as a table.
func RenderRecords(records []model.OutputRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Category,
			r.TickerCode,
			r.TickerName,
			strconv.FormatFloat(r.TotalFee, 'f', -1, 64),
			strconv.FormatFloat(r.OtherCost, 'f', -1, 64),
			strconv.FormatFloat(r.TradingCost, 'f', -1, 64),
			strconv.FormatFloat(r.RealCost, 'f', -1, 64),
		})
	}
	return renderTable([]string{
		model.FieldCategory,
		model.FieldTickerCode,
		model.FieldTickerName,
		model.FieldTotalFee,
		model.FieldOtherCost,
		model.FieldTradingCost,
		model.FieldRealCost,
	}, rows)
}

// RenderRunSummary renders the outcome of a pipeline run.
func RenderRunSummary(r *pipeline.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  • Records written: %d\n", len(r.Records))
	fmt.Fprintf(&b, "  • Unmatched entries: %d\n", len(r.Unmatched))
	fmt.Fprintf(&b, "  • Fee changes: %d\n", len(r.Changes))
	fmt.Fprintf(&b, "  • Changelog: %s\n", r.ChangelogAction)
	if r.RunID != "" {
		fmt.Fprintf(&b, "  • Run ID: %s\n", r.RunID)
	}

	for _, u := range r.Unmatched {
		b.WriteString("\n" + FormatWarning(fmt.Sprintf("%s %s (%s): %s",
			u.Entry.TickerCode, u.Entry.TickerName, u.Entry.StandardCode, u.Reason)))
	}
	for _, w := range r.Warnings {
		b.WriteString("\n" + FormatWarning(w))
	}
	for _, err := range r.ForwardErrors {
		b.WriteString("\n" + FormatError(err.Error()))
	}

	return RenderPanel("Run Complete", strings.TrimRight(b.String(), "\n"))
}

// RenderChangelog renders the newest limit batches, newest first. A limit of
// zero or less renders every batch.
func RenderChangelog(cl model.Changelog, limit int) string {
	if len(cl) == 0 {
		return SubtleStyle.Render("Changelog is empty")
	}

	start := 0
	if limit > 0 && len(cl) > limit {
		start = len(cl) - limit
	}

	var sections []string
	for i := len(cl) - 1; i >= start; i-- {
		batch := cl[i]
		title := TitleStyle.UnsetMargins().Render(fmt.Sprintf("%s (%d changes)", batch.UpdatedAt, len(batch.Changes)))
		sections = append(sections, title, RenderChanges(batch.Changes), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderRuns renders archived runs, newest first.
func RenderRuns(runs []model.Run) string {
	if len(runs) == 0 {
		return SubtleStyle.Render("No runs archived")
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.SourceFile,
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Unmatched),
			strconv.Itoa(r.Changes),
		})
	}
	return renderTable([]string{"ID", "Created", "Source", "Matched", "Unmatched", "Changes"}, rows)
}

// RenderFundHistory renders one fund's recorded costs over time.
func RenderFundHistory(obs []model.FundObservation) string {
	if len(obs) == 0 {
		return SubtleStyle.Render("No observations")
	}

	rows := make([][]string, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []string{
			o.RecordedAt.Local().Format("2006-01-02"),
			strconv.FormatFloat(o.Record.TotalFee, 'f', -1, 64),
			strconv.FormatFloat(o.Record.OtherCost, 'f', -1, 64),
			strconv.FormatFloat(o.Record.TradingCost, 'f', -1, 64),
			strconv.FormatFloat(o.Record.RealCost, 'f', -1, 64),
		})
	}
	return renderTable([]string{"Date", model.FieldTotalFee, model.FieldOtherCost, model.FieldTradingCost, model.FieldRealCost}, rows)
}

// RenderWatchlist renders watch-list entries as a table.
func RenderWatchlist(entries []model.WatchlistEntry) string {
	if len(entries) == 0 {
		return SubtleStyle.Render("Watch-list is empty")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Category, e.TickerCode, e.TickerName, e.StandardCode})
	}
	return renderTable([]string{model.FieldCategory, model.FieldTickerCode, model.FieldTickerName, model.FieldStandardCode}, rows)
}
