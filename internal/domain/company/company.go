package company

import (
	"context"
	"strings"
	"unicode"

	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company represents a business operating the ledger. The company ID is the
// tenancy key for every billing record, and the company name feeds the code
// prefix of generated document numbers.
type Company struct {
	shared.BaseAggregateRoot
	Name           string          `json:"name"`
	RegistrationNo string          `json:"registration_no"`
	TaxPIN         string          `json:"tax_pin"`
	Currency       string          `json:"currency"`
	TaxRate        decimal.Decimal `json:"tax_rate"` // default VAT rate, percent
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
}

// NewCompany creates a new company profile
func NewCompany(name, currency string, taxRate decimal.Decimal) (*Company, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if currency == "" {
		currency = "KES"
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Currency:          strings.ToUpper(currency),
		TaxRate:           taxRate,
	}, nil
}

// NumberCode derives the document-number code from the company name: the
// first three letters, uppercased. Returns "" when the name yields fewer
// than three letters, in which case callers fall back to the type tag.
func (c *Company) NumberCode() string {
	return NumberCodeFromName(c.Name)
}

// NumberCodeFromName derives a 3-letter document code from a company name
func NumberCodeFromName(name string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) < 3 {
		return ""
	}
	return string(letters)
}

// UpdateProfile updates the company's contact and registration details
func (c *Company) UpdateProfile(name, registrationNo, taxPIN, email, phone, address string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}

	c.Name = strings.TrimSpace(name)
	c.RegistrationNo = registrationNo
	c.TaxPIN = taxPIN
	c.Email = email
	c.Phone = phone
	c.Address = address
	c.IncrementVersion()

	return nil
}

// SetTaxRate updates the default tax rate
func (c *Company) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	c.TaxRate = rate
	c.IncrementVersion()
	return nil
}

// Repository persists companies.
// FindByID returns (nil, nil) when no record exists.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Save(ctx context.Context, c *Company) error
}
