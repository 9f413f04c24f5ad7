package statement

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"dcf_valuation/pkg/models"
)

// ResolvedRow is a statement row tagged once at load time.
type ResolvedRow struct {
	Key        AccountKey         `json:"key"`
	Label      string             `json:"label"`
	IsSubtotal bool               `json:"is_subtotal"`
	Depth      int                `json:"depth"`
	AliasRank  int                `json:"alias_rank"`
	Values     map[string]float64 `json:"values"`
}

// Statement is an ordered, resolved list of rows plus a key index.
// A nil *Statement behaves as an empty statement.
type Statement struct {
	Rows  []ResolvedRow
	years []string
	index map[AccountKey]int
}

// Set bundles the resolved statements of one company.
type Set struct {
	CompanyName             string
	IncomeStatement         *Statement
	BalanceSheet            *Statement
	CostOfGoodsManufactured *Statement // nil when the filer has none
}

// NewStatement resolves raw rows.
//
// For each key the winning row is the one matched by the highest-priority alias;
// among rows matched by the same alias the first in order wins.
func NewStatement(rows []models.StatementRow) *Statement {
	st := &Statement{
		Rows:  make([]ResolvedRow, 0, len(rows)),
		index: make(map[AccountKey]int),
	}

	for _, raw := range rows {
		label := strings.TrimSpace(raw.Account)
		key, rank := Classify(label)

		values := make(map[string]float64, len(raw.Values))
		for y, v := range raw.Values {
			values[y] = v
		}

		st.Rows = append(st.Rows, ResolvedRow{
			Key:        key,
			Label:      label,
			IsSubtotal: raw.IsHeader || subtotalKeys[key],
			Depth:      leadingSpace(raw.Account),
			AliasRank:  rank,
			Values:     values,
		})

		if key == Unknown {
			continue
		}
		i := len(st.Rows) - 1
		if prev, ok := st.index[key]; !ok || rank < st.Rows[prev].AliasRank {
			st.index[key] = i
		}
	}

	if len(rows) > 0 {
		st.years = sortedYears(rows[0].Values)
	}
	return st
}

// Resolve tags every statement of a decoded set.
func Resolve(ss models.StatementSet) *Set {
	set := &Set{
		CompanyName:     ss.CompanyProfile.Name,
		IncomeStatement: NewStatement(ss.IncomeStatement),
		BalanceSheet:    NewStatement(ss.BalanceSheet),
	}
	if ss.CostOfGoodsManufactured != nil {
		set.CostOfGoodsManufactured = NewStatement(ss.CostOfGoodsManufactured)
	}
	return set
}

func leadingSpace(label string) int {
	n := 0
	for _, r := range label {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

func sortedYears(values map[string]float64) []string {
	years := make([]string, 0, len(values))
	for y := range values {
		if models.IsYearKey(y) {
			years = append(years, y)
		}
	}
	sort.Slice(years, func(i, j int) bool {
		a, errA := strconv.Atoi(years[i])
		b, errB := strconv.Atoi(years[j])
		if errA != nil || errB != nil || a == b {
			return years[i] < years[j]
		}
		return a < b
	})
	return years
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Row returns the winning row for key.
func (s *Statement) Row(key AccountKey) (ResolvedRow, bool) {
	if s == nil {
		return ResolvedRow{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return ResolvedRow{}, false
	}
	return s.Rows[i], true
}

// Years returns the year keys of the first row in ascending order.
func (s *Statement) Years() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.years))
	copy(out, s.years)
	return out
}

// TrailingYears returns the last n years (fewer when history is shorter).
func (s *Statement) TrailingYears(n int) []string {
	years := s.Years()
	if n <= 0 {
		return nil
	}
	if len(years) > n {
		years = years[len(years)-n:]
	}
	return years
}

// GetLatestValue returns the value of key at year, or 0 when the row or cell is absent.
func GetLatestValue(s *Statement, key AccountKey, year string) float64 {
	row, ok := s.Row(key)
	if !ok {
		return 0
	}
	return row.Values[year]
}

// Lookup is GetLatestValue that also reports whether the cell exists.
func Lookup(s *Statement, key AccountKey, year string) (float64, bool) {
	row, ok := s.Row(key)
	if !ok {
		return 0, false
	}
	v, ok := row.Values[year]
	return v, ok
}

// GetLatestValueByLabel looks up arbitrary trimmed labels in priority order.
// The first label matched by any row wins.
func GetLatestValueByLabel(s *Statement, year string, labels ...string) float64 {
	if s == nil {
		return 0
	}
	for _, label := range labels {
		label = strings.TrimSpace(label)
		for _, row := range s.Rows {
			if row.Label == label {
				return row.Values[year]
			}
		}
	}
	return 0
}

// GetValuesForYears returns one value per year for key, 0 where absent.
func GetValuesForYears(s *Statement, key AccountKey, years []string) []float64 {
	out := make([]float64, len(years))
	row, ok := s.Row(key)
	if !ok {
		return out
	}
	for i, y := range years {
		out[i] = row.Values[y]
	}
	return out
}

// GetSumOfValuesForYears sums the rows for each key, per year.
func GetSumOfValuesForYears(s *Statement, keys []AccountKey, years []string) []float64 {
	out := make([]float64, len(years))
	for _, key := range keys {
		row, ok := s.Row(key)
		if !ok {
			continue
		}
		for i, y := range years {
			out[i] += row.Values[y]
		}
	}
	return out
}

// Years returns the fiscal years of the income statement.
func (set *Set) Years() []string {
	if set == nil {
		return nil
	}
	return set.IncomeStatement.Years()
}

// TrailingYears returns the last n fiscal years of the income statement.
func (set *Set) TrailingYears(n int) []string {
	if set == nil {
		return nil
	}
	return set.IncomeStatement.TrailingYears(n)
}

// LatestYear returns the most recent fiscal year, or "" when there is none.
func (set *Set) LatestYear() string {
	years := set.Years()
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}
