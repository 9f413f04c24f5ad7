package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label keys used by the statement JSON exported from DART-style workbooks.
const (
	AccountLabelKey  = "계정과목"
	AccountLabelAlt  = "account"
	HeaderFlagKey    = "isHeader"
	CompanyNameKey   = "기업명"
	CompanyNameAltEn = "companyName"
)

// StatementRow is one line item of a financial statement.
// Account keeps the raw label including leading indentation, which encodes hierarchy depth.
// Only year keys (all digits, e.g. "2023") hold financial data.
type StatementRow struct {
	Account  string             `json:"계정과목"`
	Values   map[string]float64 `json:"-"`
	IsHeader bool               `json:"isHeader,omitempty"`
}

// UnmarshalJSON accepts rows of the form {"계정과목": "매출액", "2022": 100, "2023": "120"}.
// Non-numeric cells are dropped so that lookups see them as absent.
func (r *StatementRow) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("statement row: %w", err)
	}

	r.Values = make(map[string]float64)
	for key, v := range raw {
		switch key {
		case AccountLabelKey, AccountLabelAlt:
			if s, ok := v.(string); ok && r.Account == "" {
				r.Account = s
			}
			continue
		case HeaderFlagKey:
			if b, ok := v.(bool); ok {
				r.IsHeader = b
			}
			continue
		}
		if !IsYearKey(key) {
			continue
		}
		if f, ok := numericCell(v); ok {
			r.Values[key] = f
		}
	}
	return nil
}

// MarshalJSON writes the row back in the same flat shape it was read from.
func (r StatementRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+2)
	out[AccountLabelKey] = r.Account
	if r.IsHeader {
		out[HeaderFlagKey] = true
	}
	for year, v := range r.Values {
		out[year] = v
	}
	return json.Marshal(out)
}

// Value returns the numeric cell for year and whether it exists.
func (r StatementRow) Value(year string) (float64, bool) {
	if r.Values == nil {
		return 0, false
	}
	v, ok := r.Values[year]
	return v, ok
}

// IsYearKey reports whether a column key denotes a fiscal year.
func IsYearKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// numericCell accepts finite numbers and numeric strings. "NaN" and "Inf"
// spellings parse in strconv but are treated as absent.
func numericCell(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CompanyProfile carries the identifying fields of the statement owner.
type CompanyProfile struct {
	Name string `json:"기업명"`
}

// StatementSet is the immutable input to the engine, supplied by an external loader.
type StatementSet struct {
	CompanyProfile          CompanyProfile `json:"companyProfile"`
	IncomeStatement         []StatementRow `json:"incomeStatement"`
	BalanceSheet            []StatementRow `json:"balanceSheet"`
	CostOfGoodsManufactured []StatementRow `json:"costOfGoodsManufactured,omitempty"`
}

// UnmarshalJSON resolves the alternative keys used for the cost-of-goods-manufactured statement.
func (s *StatementSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		CompanyProfile  map[string]interface{} `json:"companyProfile"`
		IncomeStatement []StatementRow         `json:"incomeStatement"`
		BalanceSheet    []StatementRow         `json:"balanceSheet"`
		COGM            []StatementRow         `json:"costOfGoodsManufactured"`
		COGMKorean      []StatementRow         `json:"제조원가명세서"`
		COGMLong        []StatementRow         `json:"statementOfCostOfGoodsManufactured"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.IncomeStatement = raw.IncomeStatement
	s.BalanceSheet = raw.BalanceSheet
	switch {
	case raw.COGM != nil:
		s.CostOfGoodsManufactured = raw.COGM
	case raw.COGMKorean != nil:
		s.CostOfGoodsManufactured = raw.COGMKorean
	default:
		s.CostOfGoodsManufactured = raw.COGMLong
	}

	for _, key := range []string{CompanyNameKey, CompanyNameAltEn} {
		if name, ok := raw.CompanyProfile[key].(string); ok && name != "" {
			s.CompanyProfile.Name = name
			break
		}
	}
	return nil
}
