package policies

import "time"

// DeriveStatus calcula el estado vigente de la póliza a un instante dado.
// Es una función pura: el caller decide dónde importa la frescura
// (el estado persistido puede quedar stale entre saves).
//
// Reglas:
//   - cancelled es terminal: nunca se re-deriva a otro estado.
//   - endDate vencida => expired, sin importar el estado previo.
//   - pending dentro de la ventana [startDate, endDate] => active.
func DeriveStatus(p Policy, now time.Time) Status {
	if p.Status == StatusCancelled {
		return StatusCancelled
	}
	if p.EndDate.Before(now) {
		return StatusExpired
	}
	if p.Status == StatusPending && !p.StartDate.After(now) {
		return StatusActive
	}
	return p.Status
}

// renewedEndDate extiende la vigencia exactamente un año desde
// max(endDate anterior, ahora).
func renewedEndDate(p Policy, now time.Time) time.Time {
	from := p.EndDate
	if now.After(from) {
		from = now
	}
	return from.AddDate(1, 0, 0)
}
