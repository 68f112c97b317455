package claims

// ApprovedAmount calcula el monto a pagar de un siniestro contra la póliza
// que lo cubre. Función pura; se usa únicamente al aprobar.
//
//  1. monto reclamado − franquicia
//  2. techo: el límite de cobertura de la póliza
//  3. piso: nunca negativo
//
// No re-verifica el estado de la póliza: eso es responsabilidad del caller
// al momento de crear el claim.
func ApprovedAmount(claimAmount, deductible, coverageAmount float64) float64 {
	approved := claimAmount - deductible

	if approved > coverageAmount {
		approved = coverageAmount
	}
	if approved < 0 {
		approved = 0
	}

	return approved
}
