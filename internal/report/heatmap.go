package report

import (
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/shopspring/decimal"
)

// Heatmap is the margin of tagged entries by the values of two axes.
type Heatmap struct {
	RowAxis    string              `json:"rowAxis" example:"PROJECT"`
	ColumnAxis string              `json:"columnAxis" example:"CLIENT"`
	Rows       []string            `json:"rows"`
	Columns    []string            `json:"columns"`
	Cells      [][]decimal.Decimal `json:"cells"` // Cells[row][column], zero where there are no entries
	Min        decimal.Decimal     `json:"min"`
	Max        decimal.Decimal     `json:"max"`
}

// NewHeatmap builds the heatmap for two axes. Entries without a value on
// either axis are counted as Unassigned on that axis.
func NewHeatmap(entries []models.TaggedEntry, rowAxis, columnAxis string) Heatmap {
	h := Heatmap{
		RowAxis:    models.NormalizeAxisCode(rowAxis),
		ColumnAxis: models.NormalizeAxisCode(columnAxis),
		Min:        decimal.Zero,
		Max:        decimal.Zero,
	}

	rows := GroupByDimension(entries, h.RowAxis)
	columns := make(map[string]int)
	for _, g := range GroupByDimension(entries, h.ColumnAxis) {
		columns[g.Key] = len(h.Columns)
		h.Columns = append(h.Columns, g.Key)
	}

	h.Cells = make([][]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		h.Rows = append(h.Rows, row.Key)

		cells := make([]decimal.Decimal, len(h.Columns))
		for i := range cells {
			cells[i] = decimal.Zero
		}

		for _, g := range GroupByDimension(row.Entries, h.ColumnAxis) {
			cells[columns[g.Key]] = PnL(g).Margin
		}

		h.Cells = append(h.Cells, cells)
	}

	first := true
	for _, cells := range h.Cells {
		for _, c := range cells {
			if first || c.LessThan(h.Min) {
				h.Min = c
			}
			if first || c.GreaterThan(h.Max) {
				h.Max = c
			}
			first = false
		}
	}

	return h
}

// Cell returns the margin for a row and column key.
func (h Heatmap) Cell(row, column string) (decimal.Decimal, bool) {
	for i, r := range h.Rows {
		if r != row {
			continue
		}

		for j, c := range h.Columns {
			if c == column {
				return h.Cells[i][j], true
			}
		}
	}

	return decimal.Zero, false
}
