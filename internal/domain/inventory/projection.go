package inventory

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// Project suma con signo los movimientos: es la fuente de verdad del stock.
func Project(movements []*entity.StockMovement) int64 {
	var total int64
	for _, m := range movements {
		total += m.Signed()
	}
	return total
}

// Delta cantidad con signo para una dirección.
func Delta(direction string, quantity int64) int64 {
	if direction == entity.DirectionOut {
		return -quantity
	}
	return quantity
}

// ValidDirection indica si la dirección es conocida.
func ValidDirection(direction string) bool {
	return direction == entity.DirectionIn || direction == entity.DirectionOut
}
