package projection

// IncomeStatement is one projected year's income statement. Expenses are positive amounts.
type IncomeStatement struct {
	Revenue         float64 `json:"revenue"`
	COGS            float64 `json:"cogs"`
	GrossProfit     float64 `json:"gross_profit"`
	RnD             float64 `json:"rnd"`
	SGA             float64 `json:"sga"`
	EBIT            float64 `json:"ebit"`
	InterestIncome  float64 `json:"interest_income"`
	InterestExpense float64 `json:"interest_expense"`
	OtherExpenses   float64 `json:"other_expenses"`
	EBT             float64 `json:"ebt"`
	Taxes           float64 `json:"taxes"`
	NetIncome       float64 `json:"net_income"`
}

// BalanceSheet is a projected (or opening) balance sheet. Cash is the plug.
type BalanceSheet struct {
	Cash                  float64 `json:"cash"`
	Receivables           float64 `json:"receivables"`
	Inventory             float64 `json:"inventory"`
	OtherCurrentAssets    float64 `json:"other_current_assets"`
	NetPPE                float64 `json:"net_ppe"`
	OtherNonCurrentAssets float64 `json:"other_non_current_assets"`
	TotalAssets           float64 `json:"total_assets"`

	Payables                   float64 `json:"payables"`
	OtherCurrentLiabilities    float64 `json:"other_current_liabilities"`
	TotalDebt                  float64 `json:"total_debt"`
	OtherNonCurrentLiabilities float64 `json:"other_non_current_liabilities"`
	TotalLiabilities           float64 `json:"total_liabilities"`

	CapitalStock     float64 `json:"capital_stock"`
	RetainedEarnings float64 `json:"retained_earnings"`
	AccumulatedOCI   float64 `json:"accumulated_oci"`
	TotalEquity      float64 `json:"total_equity"`

	// Check = assets - (liabilities + equity); zero by construction of the cash plug.
	Check float64 `json:"check"`
}

// CashFlowStatement is derived from balance-sheet deltas after the plug is solved.
type CashFlowStatement struct {
	NetIncome                          float64 `json:"net_income"`
	Depreciation                       float64 `json:"depreciation"`
	ChangeInOperatingAssets            float64 `json:"change_in_operating_assets"`
	ChangeInOperatingLiabilities       float64 `json:"change_in_operating_liabilities"`
	ChangeInOtherNonCurrentAssets      float64 `json:"change_in_other_non_current_assets"`
	ChangeInOtherNonCurrentLiabilities float64 `json:"change_in_other_non_current_liabilities"`
	CFO                                float64 `json:"cfo"`

	Capex float64 `json:"capex"`
	CFI   float64 `json:"cfi"`

	ChangeInDebt     float64 `json:"change_in_debt"`
	ShareRepurchases float64 `json:"share_repurchases"`
	Dividends        float64 `json:"dividends"`
	CFF              float64 `json:"cff"`

	NetChangeInCash float64 `json:"net_change_in_cash"`
}

// ProjectionYear holds the articulated statements for one forecast year.
type ProjectionYear struct {
	Year            int               `json:"year"`        // 1..N
	FiscalYear      string            `json:"fiscal_year"` // e.g. "2024"; empty when the base year is unknown
	IncomeStatement IncomeStatement   `json:"income_statement"`
	BalanceSheet    BalanceSheet      `json:"balance_sheet"`
	CashFlow        CashFlowStatement `json:"cash_flow"`

	// CashFlowGap = derived net change in cash - change in the cash plug.
	// Kept as a diagnostic; the derived cash flow is not forced to reconcile.
	CashFlowGap float64 `json:"cash_flow_gap"`
}

// Opening is the year-0 state the detailed model rolls forward from.
type Opening struct {
	BaseYear     string       `json:"base_year"`
	Revenue      float64      `json:"revenue"`
	BalanceSheet BalanceSheet `json:"balance_sheet"`
}

// FCFFYear is one year of the lightweight free-cash-flow series used for valuation.
type FCFFYear struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	EBIT         float64 `json:"ebit"`
	NOPAT        float64 `json:"nopat"`
	Depreciation float64 `json:"depreciation"`
	Capex        float64 `json:"capex"`
	NWCChange    float64 `json:"nwc_change"`
	FCFF         float64 `json:"fcff"`
}

// Drivers are the historical ratios the detailed model scales with revenue.
type Drivers struct {
	GrossMargin        float64 `json:"gross_margin"`
	RdShareOfOpex      float64 `json:"rd_share_of_opex"`
	InterestIncomeRate float64 `json:"interest_income_rate"`
	OtherExpenseRate   float64 `json:"other_expense_rate"`
	ReceivablesRatio   float64 `json:"receivables_ratio"`
	InventoryRatio     float64 `json:"inventory_ratio"`
	PayablesRatio      float64 `json:"payables_ratio"`
}
