package portfolio

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/synthrisk/perilgen/pkg/core"
)

// Loans are written at a fixed 75% loan-to-value against the property's
// current valuation.
var loanToValue = decimal.NewFromFloat(0.75)

// rateTypes cycle across the book; fixed-rate products dominate UK lending
// so the cycle is a simplification, not a distribution.
var rateTypes = []string{
	"Fixed", "Variable", "Tracker", "Discount", "Capped", "Standard Variable Rate",
}

// GenerateMortgagesFrom writes one mortgage per property. Terms run 25 to 35
// years and annual rates 3.25% to 3.70%, both cycling deterministically with
// the property index.
func GenerateMortgagesFrom(properties []core.Property) []core.Mortgage {
	mortgages := make([]core.Mortgage, 0, len(properties))
	for i, property := range properties {
		mortgages = append(mortgages, newMortgage(i, property))
	}
	return mortgages
}

func newMortgage(index int, property core.Property) core.Mortgage {
	loan := property.PropertyValue.Mul(loanToValue).Round(2)
	termMonths := (25 + index%11) * 12
	annualRate := 0.0325 + 0.0005*float64(index%10)

	return core.Mortgage{
		MortgageID:     newID("MTG"),
		PropertyID:     property.PropertyID,
		LoanAmount:     loan,
		LTVRatio:       loanToValue,
		InterestRate:   decimal.NewFromFloat(annualRate),
		TermMonths:     termMonths,
		MonthlyPayment: monthlyPayment(loan, annualRate, termMonths),
		RateType:       rateTypes[index%len(rateTypes)],
	}
}

// monthlyPayment is the standard amortization formula
// P·r·(1+r)^n / ((1+r)^n − 1) with r the monthly rate and n the term in
// months. The power term is computed in floating point and the result
// rounded back to pence; a zero rate degrades to straight division.
func monthlyPayment(loan decimal.Decimal, annualRate float64, termMonths int) decimal.Decimal {
	if annualRate == 0 {
		return loan.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}
	principal, _ := loan.Float64()
	r := annualRate / 12
	pow := math.Pow(1+r, float64(termMonths))
	payment := principal * r * pow / (pow - 1)
	return decimal.NewFromFloat(payment).Round(2)
}
