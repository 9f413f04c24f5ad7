// Package statement resolves raw statement rows into tagged line items and
// answers the line-item lookups every downstream calculation is built on.
package statement

// AccountKey identifies a line item independent of the label a filer used for it.
type AccountKey int

const (
	Unknown AccountKey = iota

	// Income statement
	Revenue
	COGS
	GrossProfit
	SGA
	RnD
	OperatingIncome
	InterestIncome
	InterestExpense
	LossOnDisposalOfPPE
	LossOnDisposalOfLeaseAssets
	OtherNonOperatingExpenses
	OtherExpenses
	IncomeBeforeTax
	IncomeTax
	NetIncome
	Depreciation

	// Balance sheet: assets
	TotalAssets
	CurrentAssets
	CashAndEquivalents
	ShortTermDeposits
	TradingSecurities
	ShortTermLoans
	ShortTermFinancialInstruments
	ShortTermInvestments
	Receivables
	Inventory
	NonCurrentAssets
	NetPPE
	NonCurrentInvestments

	// Balance sheet: liabilities and equity
	TotalLiabilities
	CurrentLiabilities
	Payables
	ShortTermBorrowings
	NonCurrentLiabilities
	Bonds
	LongTermBorrowings
	TotalEquity
	CapitalStock
	RetainedEarnings
	AccumulatedOCI

	accountKeyCount
)

var accountKeyNames = [accountKeyCount]string{
	Unknown:                       "unknown",
	Revenue:                       "revenue",
	COGS:                          "cogs",
	GrossProfit:                   "gross_profit",
	SGA:                           "sga",
	RnD:                           "rnd",
	OperatingIncome:               "operating_income",
	InterestIncome:                "interest_income",
	InterestExpense:               "interest_expense",
	LossOnDisposalOfPPE:           "loss_on_disposal_of_ppe",
	LossOnDisposalOfLeaseAssets:   "loss_on_disposal_of_lease_assets",
	OtherNonOperatingExpenses:     "other_non_operating_expenses",
	OtherExpenses:                 "other_expenses",
	IncomeBeforeTax:               "income_before_tax",
	IncomeTax:                     "income_tax",
	NetIncome:                     "net_income",
	Depreciation:                  "depreciation",
	TotalAssets:                   "total_assets",
	CurrentAssets:                 "current_assets",
	CashAndEquivalents:            "cash_and_equivalents",
	ShortTermDeposits:             "short_term_deposits",
	TradingSecurities:             "trading_securities",
	ShortTermLoans:                "short_term_loans",
	ShortTermFinancialInstruments: "short_term_financial_instruments",
	ShortTermInvestments:          "short_term_investments",
	Receivables:                   "receivables",
	Inventory:                     "inventory",
	NonCurrentAssets:              "non_current_assets",
	NetPPE:                        "net_ppe",
	NonCurrentInvestments:         "non_current_investments",
	TotalLiabilities:              "total_liabilities",
	CurrentLiabilities:            "current_liabilities",
	Payables:                      "payables",
	ShortTermBorrowings:           "short_term_borrowings",
	NonCurrentLiabilities:         "non_current_liabilities",
	Bonds:                         "bonds",
	LongTermBorrowings:            "long_term_borrowings",
	TotalEquity:                   "total_equity",
	CapitalStock:                  "capital_stock",
	RetainedEarnings:              "retained_earnings",
	AccumulatedOCI:                "accumulated_oci",
}

func (k AccountKey) String() string {
	if k < 0 || k >= accountKeyCount {
		return "unknown"
	}
	return accountKeyNames[k]
}

// MarshalText renders the key by name in JSON output.
func (k AccountKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// =============================================================================
// ALIAS CATALOG
// =============================================================================

// aliases lists the labels accepted for each key in priority order.
// K-IFRS (DART) labels come first; English synonyms follow.
var aliases = map[AccountKey][]string{
	Revenue:                       {"매출액", "수익(매출액)", "영업수익", "Revenue", "Sales"},
	COGS:                          {"매출원가", "Cost of Goods Sold", "Cost of Revenue"},
	GrossProfit:                   {"매출총이익", "Gross Profit"},
	SGA:                           {"판매관리비", "판매비와관리비", "SG&A"},
	RnD:                           {"연구개발비", "R&D", "Research and Development"},
	OperatingIncome:               {"영업이익", "영업이익(손실)", "Operating Income"},
	InterestIncome:                {"이자수익", "Interest Income"},
	InterestExpense:               {"이자비용", "Interest Expense"},
	LossOnDisposalOfPPE:           {"유형자산처분손실"},
	LossOnDisposalOfLeaseAssets:   {"리스자산처분손실"},
	OtherNonOperatingExpenses:     {"기타영업외비용"},
	OtherExpenses:                 {"기타비용", "Other Expenses"},
	IncomeBeforeTax:               {"세전이익", "법인세비용차감전순손익", "법인세비용차감전순이익", "Income Before Tax"},
	IncomeTax:                     {"세금", "법인세비용", "Income Tax"},
	NetIncome:                     {"당기순이익", "당기순이익(손실)", "Net Income"},
	Depreciation:                  {"감가상각비", "Depreciation"},
	TotalAssets:                   {"자산", "자산총계", "Total Assets"},
	CurrentAssets:                 {"유동자산", "Current Assets"},
	CashAndEquivalents:            {"현금및현금성자산", "Cash and Cash Equivalents"},
	ShortTermDeposits:             {"단기예금"},
	TradingSecurities:             {"단기매매증권"},
	ShortTermLoans:                {"단기대여금"},
	ShortTermFinancialInstruments: {"단기금융상품"},
	ShortTermInvestments:          {"단기투자자산", "Short-term Investments"},
	Receivables:                   {"매출채권", "Accounts Receivable"},
	Inventory:                     {"재고자산", "Inventory"},
	NonCurrentAssets:              {"비유동자산", "Non-current Assets"},
	NetPPE:                        {"유형자산", "Property, Plant and Equipment"},
	NonCurrentInvestments:         {"투자자산", "Long-term Investments"},
	TotalLiabilities:              {"부채", "부채총계", "Total Liabilities"},
	CurrentLiabilities:            {"유동부채", "Current Liabilities"},
	Payables:                      {"매입채무", "Accounts Payable"},
	ShortTermBorrowings:           {"단기차입금", "Short-term Borrowings"},
	NonCurrentLiabilities:         {"비유동부채", "Non-current Liabilities"},
	Bonds:                         {"사채", "Bonds"},
	LongTermBorrowings:            {"장기차입금", "Long-term Borrowings"},
	TotalEquity:                   {"자본", "자본총계", "Total Equity"},
	CapitalStock:                  {"자본금", "Capital Stock"},
	RetainedEarnings:              {"이익잉여금", "Retained Earnings"},
	AccumulatedOCI:                {"기타포괄손익누계액", "Accumulated OCI"},
}

// Account groups summed together by the valuation.
var (
	CashGroup          = []AccountKey{CashAndEquivalents, ShortTermDeposits, TradingSecurities, ShortTermLoans, ShortTermFinancialInstruments, ShortTermInvestments}
	InvestmentGroup    = []AccountKey{NonCurrentInvestments}
	OtherExpenseGroup  = []AccountKey{LossOnDisposalOfPPE, LossOnDisposalOfLeaseAssets, OtherNonOperatingExpenses, OtherExpenses}
	InterestDebtGroup  = []AccountKey{ShortTermBorrowings, Bonds, LongTermBorrowings}
	OperatingCostGroup = []AccountKey{RnD, SGA}
)

var subtotalKeys = map[AccountKey]bool{
	GrossProfit:           true,
	OperatingIncome:       true,
	IncomeBeforeTax:       true,
	NetIncome:             true,
	TotalAssets:           true,
	CurrentAssets:         true,
	NonCurrentAssets:      true,
	TotalLiabilities:      true,
	CurrentLiabilities:    true,
	NonCurrentLiabilities: true,
	TotalEquity:           true,
}

type aliasRef struct {
	key  AccountKey
	rank int
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]aliasRef {
	idx := make(map[string]aliasRef)
	for key, labels := range aliases {
		for rank, label := range labels {
			idx[label] = aliasRef{key: key, rank: rank}
		}
	}
	return idx
}

// Classify maps a trimmed label to its key and alias rank. Unknown labels return (Unknown, -1).
func Classify(label string) (AccountKey, int) {
	if ref, ok := aliasIndex[label]; ok {
		return ref.key, ref.rank
	}
	return Unknown, -1
}
