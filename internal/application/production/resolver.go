package production

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// MaterialDemand cantidad total de un material que exige producir una cantidad de receta.
type MaterialDemand struct {
	MaterialID string
	Quantity   decimal.Decimal
	Unit       string
}

// RequiredMaterials escala los ingredientes de la receta por producedQty.
// Líneas repetidas del mismo material se suman. El orden sigue al de los ingredientes.
// Cada demanda se redondea hacia arriba a domain.QuantityScale decimales, así el plan
// FIFO y el libro trabajan con la misma cantidad que se guarda.
func RequiredMaterials(recipe *entity.Recipe, producedQty decimal.Decimal) ([]MaterialDemand, error) {
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	if !recipe.IsActive {
		return nil, domain.ErrInactiveRecipe
	}
	if !producedQty.IsPositive() {
		return nil, fmt.Errorf("cantidad a producir debe ser positiva: %w", domain.ErrInvalidInput)
	}

	index := make(map[string]int, len(recipe.Ingredients))
	demands := make([]MaterialDemand, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		qty := ing.Quantity.Mul(producedQty)
		if i, ok := index[ing.MaterialID]; ok {
			demands[i].Quantity = demands[i].Quantity.Add(qty)
			continue
		}
		index[ing.MaterialID] = len(demands)
		demands = append(demands, MaterialDemand{MaterialID: ing.MaterialID, Quantity: qty, Unit: ing.Unit})
	}
	for i := range demands {
		demands[i].Quantity = domain.RoundDemand(demands[i].Quantity)
	}
	return demands, nil
}
