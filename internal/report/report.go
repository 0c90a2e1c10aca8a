package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zBotta/crop-planner/internal/domain"
	"github.com/zBotta/crop-planner/internal/model"
	"github.com/zBotta/crop-planner/internal/solver"
)

// Cell is one table cell; nil Value renders blank.
type Cell struct {
	Value *float64
}

// Row is one labeled table row with a cell per scenario column.
type Row struct {
	Label string
	Cells map[domain.ScenarioName]Cell
}

// Summary is the tabular view of a solved model: one column per scenario,
// one row per reported quantity. Scenario-independent decisions (acreage,
// pre-sold units) repeat the same value in every column.
type Summary struct {
	Scenarios []domain.ScenarioName
	Rows      []Row
}

// Summarize reads the final variable values out of a solve result. Values
// the engine left unpopulated read as zero; callers decide whether a
// non-optimal status makes the table worth printing.
func Summarize(m *model.Model, res *solver.Result) Summary {
	value := func(id model.VarID) *float64 {
		var v float64
		if int(id) < len(res.Values) {
			v = res.Values[id]
		}
		return &v
	}
	everywhere := func(v *float64) map[domain.ScenarioName]Cell {
		cells := make(map[domain.ScenarioName]Cell, len(m.ScenarioOrder))
		for _, name := range m.ScenarioOrder {
			cells[name] = Cell{Value: v}
		}
		return cells
	}

	s := Summary{Scenarios: m.ScenarioOrder}

	for _, c := range domain.Crops() {
		s.Rows = append(s.Rows, Row{
			Label: fmt.Sprintf("Acres of Crop %s", c),
			Cells: everywhere(value(m.Acres[c])),
		})
	}
	for _, c := range domain.Crops() {
		s.Rows = append(s.Rows, Row{
			Label: fmt.Sprintf("Pre-sold units of Crop %s", c),
			Cells: everywhere(value(m.PreSold[c])),
		})
	}
	for _, c := range domain.Crops() {
		cells := make(map[domain.ScenarioName]Cell, len(m.ScenarioOrder))
		for _, name := range m.ScenarioOrder {
			cells[name] = Cell{Value: value(m.Produced[name][c])}
		}
		s.Rows = append(s.Rows, Row{Label: fmt.Sprintf("Produced units of Crop %s", c), Cells: cells})
	}
	for _, c := range domain.Crops() {
		cells := make(map[domain.ScenarioName]Cell, len(m.ScenarioOrder))
		for _, name := range m.ScenarioOrder {
			cells[name] = Cell{Value: value(m.Shortfall[name][c])}
		}
		s.Rows = append(s.Rows, Row{Label: fmt.Sprintf("Shortfall %s", c), Cells: cells})
	}
	for _, name := range m.ScenarioOrder {
		profit := m.Profit[name].Value(res.Values)
		s.Rows = append(s.Rows, Row{
			Label: fmt.Sprintf("Profit in %s scenario", titleCase(string(name))),
			Cells: map[domain.ScenarioName]Cell{name: {Value: &profit}},
		})
	}
	return s
}

// Render writes the summary as an aligned two-column table.
func Render(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "----- Model Summary -----")
	fmt.Fprint(tw, "Variable")
	for _, name := range s.Scenarios {
		fmt.Fprintf(tw, "\t%s Scenario", titleCase(string(name)))
	}
	fmt.Fprintln(tw)

	for _, row := range s.Rows {
		fmt.Fprint(tw, row.Label)
		for _, name := range s.Scenarios {
			cell := row.Cells[name]
			if cell.Value != nil {
				fmt.Fprintf(tw, "\t%.4f", *cell.Value)
			} else {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "-------------------------")
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
