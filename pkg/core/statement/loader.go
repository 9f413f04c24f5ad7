package statement

import (
	"errors"
	"fmt"
	"os"

	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/models"
)

// ErrMissingStatement is returned when a required statement array is absent.
var ErrMissingStatement = errors.New("missing required statement")

// ErrMalformedStatement is returned when a document cannot be decoded by any strategy.
var ErrMalformedStatement = errors.New("malformed statement set")

// New checks that the required statements are present and resolves the set.
func New(ss models.StatementSet) (*Set, error) {
	if ss.IncomeStatement == nil {
		return nil, fmt.Errorf("incomeStatement: %w", ErrMissingStatement)
	}
	if ss.BalanceSheet == nil {
		return nil, fmt.Errorf("balanceSheet: %w", ErrMissingStatement)
	}
	return Resolve(ss), nil
}

// Load decodes a StatementSet document (strict JSON, repaired JSON or Hjson) and resolves it.
func Load(data []byte) (*Set, error) {
	var ss models.StatementSet
	if _, err := utils.SmartDecode(data, &ss); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedStatement, err)
	}
	return New(ss)
}

// LoadFile reads and loads a statement set from disk.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statements %s: %w", path, err)
	}
	return Load(data)
}
