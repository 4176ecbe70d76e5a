package repository

import "context"

// Repos agrupa los repositorios que comparten una misma conexión o transacción.
type Repos struct {
	Materials     MaterialRepository
	Lots          StockLotRepository
	Movements     StockMovementRepository
	Recipes       RecipeRepository
	Orders        ProductionOrderRepository
	Batches       ProductionBatchRepository
	Checks        InventoryCheckRepository
	ServiceOrders ServiceOrderRepository
}

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn devuelve error se hace rollback completo; si no, commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error
}
