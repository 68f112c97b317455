package policies

import (
	"math"
	"strings"
)

// Motor de pricing: función pura, sin estado y sin errores.
// Inputs desconocidos degradan a defaults (tier standard, multiplicador 1.0).

const profitMargin = 1.25 // margen fijo del 25%

// Tarifa base anual por tier.
var baseRates = map[CoverageType]float64{
	CoverageBasic:    500,
	CoverageStandard: 1000,
	CoveragePremium:  2000,
}

// Multiplicador por especie; especies desconocidas pagan 1.0 (= other).
var speciesMultipliers = map[string]float64{
	"dog":    1.2,
	"cat":    1.0,
	"bird":   0.6,
	"rabbit": 0.8,
	"other":  1.0,
}

// Montos de cobertura y franquicia por tier.
// Ojo: la franquicia está invertida respecto de la práctica usual
// (tier más alto => franquicia más baja). Son las tablas de negocio
// vigentes; no "corregir".
var coverageAmounts = map[CoverageType]float64{
	CoverageBasic:    10000,
	CoverageStandard: 25000,
	CoveragePremium:  50000,
}

var deductibles = map[CoverageType]float64{
	CoverageBasic:    500,
	CoverageStandard: 300,
	CoveragePremium:  100,
}

// PremiumBreakdown expone cómo se llegó al monto final.
type PremiumBreakdown struct {
	BaseRate          float64 `json:"base_rate"`
	SpeciesMultiplier float64 `json:"species_multiplier"`
	AgeMultiplier     float64 `json:"age_multiplier"`
	ProfitMargin      float64 `json:"profit_margin"`
	BasePremium       float64 `json:"base_premium"`
	CompanyProfit     float64 `json:"company_profit"`
}

// PremiumResult es la cotización completa para un tier+especie+edad.
type PremiumResult struct {
	CoverageType   CoverageType     `json:"coverage_type"`
	Premium        float64          `json:"premium"`
	CoverageAmount float64          `json:"coverage_amount"`
	Deductible     float64          `json:"deductible"`
	Breakdown      PremiumBreakdown `json:"breakdown"`
}

// Quote cotiza una prima anual.
//
//	premium       = round(baseRate × speciesMult × ageMult × 1.25)
//	companyProfit = round(baseRate × speciesMult × ageMult × 0.25)
//
// Determinística: misma entrada, misma salida.
func Quote(coverageType, species string, ageYears float64) PremiumResult {
	tier := CoverageType(strings.ToLower(strings.TrimSpace(coverageType)))
	baseRate, ok := baseRates[tier]
	if !ok {
		tier = CoverageStandard
		baseRate = baseRates[tier]
	}

	speciesMult, ok := speciesMultipliers[strings.ToLower(strings.TrimSpace(species))]
	if !ok {
		speciesMult = 1.0
	}

	if ageYears < 0 {
		ageYears = 0
	}
	ageMult := ageMultiplier(ageYears)

	basePremium := baseRate * speciesMult * ageMult

	return PremiumResult{
		CoverageType:   tier,
		Premium:        math.Round(basePremium * profitMargin),
		CoverageAmount: coverageAmounts[tier],
		Deductible:     deductibles[tier],
		Breakdown: PremiumBreakdown{
			BaseRate:          baseRate,
			SpeciesMultiplier: speciesMult,
			AgeMultiplier:     ageMult,
			ProfitMargin:      profitMargin,
			BasePremium:       basePremium,
			CompanyProfit:     math.Round(basePremium * (profitMargin - 1)),
		},
	}
}

// Bandas etarias, con borde superior inclusivo: una edad exactamente en el
// límite usa la tarifa de la banda inferior.
func ageMultiplier(age float64) float64 {
	switch {
	case age <= 2:
		return 0.9
	case age <= 5:
		return 1.0
	case age <= 8:
		return 1.3
	default:
		return 1.5
	}
}
