// Package report aggregates tagged entries into profit and loss, heatmap and
// variance views.
package report

import (
	"strings"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Unassigned is the key of the group holding entries without a value on the
// grouped axis.
const Unassigned = "Unassigned"

var hundred = decimal.NewFromInt(100)

// Group is a set of tagged entries sharing the same value on an axis.
type Group struct {
	Key     string               `json:"key" example:"WEB_RELAUNCH"`
	Entries []models.TaggedEntry `json:"entries"`
}

// PnLData is the profit and loss of one group.
type PnLData struct {
	Key           string          `json:"key" example:"WEB_RELAUNCH"`
	Revenue       decimal.Decimal `json:"revenue" example:"52000"`
	Costs         decimal.Decimal `json:"costs" example:"38250"` // Absolute value of all negative amounts
	Margin        decimal.Decimal `json:"margin" example:"13750"`
	MarginPercent decimal.Decimal `json:"marginPercent" example:"26.44"` // 0 if there is no revenue
	Entries       int             `json:"entries" example:"17"`
}

// GroupByDimension partitions the entries by their value on the axis.
//
// Entries without a value on the axis are collected in the Unassigned group.
// Groups are ordered by key with Unassigned last.
func GroupByDimension(entries []models.TaggedEntry, axisCode string) []Group {
	axisCode = models.NormalizeAxisCode(axisCode)
	groups := make(map[string][]models.TaggedEntry)

	for _, e := range entries {
		key, ok := e.Value(axisCode)
		if !ok {
			key = Unassigned
		}
		groups[key] = append(groups[key], e)
	}

	keys := maps.Keys(groups)
	sortKeys(keys)

	result := make([]Group, 0, len(keys))
	for _, key := range keys {
		result = append(result, Group{Key: key, Entries: groups[key]})
	}

	return result
}

// PnL computes the profit and loss of a single group.
func PnL(group Group) PnLData {
	data := PnLData{
		Key:     group.Key,
		Revenue: decimal.Zero,
		Costs:   decimal.Zero,
		Entries: len(group.Entries),
	}

	for _, e := range group.Entries {
		if e.Amount.IsPositive() {
			data.Revenue = data.Revenue.Add(e.Amount)
		} else {
			data.Costs = data.Costs.Add(e.Amount.Abs())
		}
	}

	data.Margin = data.Revenue.Sub(data.Costs)
	data.MarginPercent = marginPercent(data.Margin, data.Revenue)
	return data
}

// ComputePnL computes the profit and loss of every group, ordered by margin
// descending. Groups with equal margins are ordered by key.
func ComputePnL(groups []Group) []PnLData {
	rows := make([]PnLData, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, PnL(g))
	}

	slices.SortStableFunc(rows, func(a, b PnLData) int {
		if c := b.Margin.Cmp(a.Margin); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})

	return rows
}

func marginPercent(margin, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}

	return margin.Div(revenue).Mul(hundred)
}

// sortKeys sorts value codes alphabetically and moves Unassigned to the end.
func sortKeys(keys []string) {
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == Unassigned:
			return 1
		case b == Unassigned:
			return -1
		}
		return strings.Compare(a, b)
	})
}
