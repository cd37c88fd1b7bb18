package display

import (
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PlanRow is one planned action for the preview table.
type PlanRow struct {
	Action string
	Source string
	Dest   string
	Note   string
}

// RenderPlanTable returns the planned-actions table shown at the end of a
// preview run. Paths are shortened to basenames; the CSV log carries the
// full paths.
func RenderPlanTable(rows []PlanRow) string {
	if len(rows) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Action", "Source", "Destination", "Note"})

	for i, r := range rows {
		tw.AppendRow(table.Row{
			i + 1,
			r.Action,
			filepath.Base(r.Source),
			filepath.Base(r.Dest),
			r.Note,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft},
	})
	return tw.Render()
}
