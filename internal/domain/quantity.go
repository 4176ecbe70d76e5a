package domain

import "github.com/shopspring/decimal"

// QuantityScale decimales que guardan las columnas NUMERIC(18,6).
const QuantityScale = 6

// FitsQuantityScale indica si q se guarda sin redondeo. Los ceros finales no cuentan.
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// RoundDemand lleva una cantidad calculada a la escala de almacenamiento redondeando
// hacia arriba: una demanda positiva nunca queda en cero ni por debajo de lo calculado.
func RoundDemand(q decimal.Decimal) decimal.Decimal {
	return q.RoundCeil(QuantityScale)
}
