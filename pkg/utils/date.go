package utils

import "time"

// AddMonths retorna a data somada de n meses; usada para derivar a data de
// vencimento de um ciclo de cobrança a partir da data de início
func AddMonths(date time.Time, months int) time.Time {
	return date.AddDate(0, months, 0)
}
