package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Materials *usecase.MaterialUseCase
	Recipes   *usecase.RecipeUseCase
	Stock     *inventory.StockUseCase
	Checks    *inventory.ReconciliationUseCase
	Orders    *production.OrderUseCase
	Batches   *production.BatchUseCase
	Service   *fieldservice.ServiceOrderUseCase
	JWTSecret string
	JWTIssuer string
	// Metrics expositor Prometheus; nil omite /metrics.
	Metrics nethttp.Handler
	// Health verifica dependencias externas (base de datos, redis).
	Health func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	materialHandler := NewMaterialHandler(deps.Materials, deps.Stock)
	materials := api.Group("/materials")
	materials.Post("/", materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", materialHandler.Delete)
	materials.Get("/:id/stock", materialHandler.Stock)

	recipeHandler := NewRecipeHandler(deps.Recipes, deps.Batches)
	recipes := api.Group("/recipes")
	recipes.Post("/", recipeHandler.Create)
	recipes.Get("/", recipeHandler.List)
	recipes.Get("/:id", recipeHandler.GetByID)
	recipes.Put("/:id", recipeHandler.Update)
	recipes.Post("/:id/ingredients", recipeHandler.AddIngredient)
	recipes.Post("/:id/parameters", recipeHandler.AddParameter)
	recipes.Get("/:id/requirements", recipeHandler.Requirements)

	stockHandler := NewStockHandler(deps.Stock)
	inv := api.Group("/inventory")
	inv.Post("/lots", stockHandler.Receive)
	inv.Get("/lots", stockHandler.Lots)
	inv.Get("/lots/:id", stockHandler.Lot)
	inv.Get("/movements", stockHandler.Movements)
	inv.Post("/consumptions", stockHandler.Consume)
	inv.Post("/adjustments", stockHandler.Adjust)
	inv.Get("/summary", stockHandler.Summary)
	inv.Get("/low-stock", stockHandler.LowStock)
	inv.Get("/materials/:id/ledger", stockHandler.Ledger)

	checkHandler := NewInventoryCheckHandler(deps.Checks)
	checks := inv.Group("/checks")
	checks.Post("/", checkHandler.Create)
	checks.Get("/", checkHandler.List)
	checks.Get("/:id", checkHandler.Get)
	checks.Delete("/:id", checkHandler.Delete)
	checks.Post("/:id/items", checkHandler.AddItem)
	checks.Put("/:id/items/:itemId", checkHandler.UpdateItem)
	checks.Post("/:id/complete", checkHandler.Complete)

	productionHandler := NewProductionHandler(deps.Orders, deps.Batches)
	prod := api.Group("/production")
	prod.Post("/orders", productionHandler.CreateOrder)
	prod.Get("/orders", productionHandler.ListOrders)
	prod.Get("/orders/:id", productionHandler.GetOrder)
	prod.Patch("/orders/:id/status", productionHandler.UpdateOrderStatus)
	prod.Post("/batches", productionHandler.CreateBatch)
	prod.Get("/batches", productionHandler.ListBatches)
	prod.Get("/batches/:id", productionHandler.GetBatch)
	prod.Patch("/batches/:id/status", productionHandler.UpdateBatchStatus)
	prod.Post("/batches/:id/parameters", productionHandler.AddBatchParameter)
	prod.Get("/batches/:id/record.pdf", productionHandler.BatchRecord)

	serviceHandler := NewServiceOrderHandler(deps.Service)
	svc := api.Group("/service/orders")
	svc.Post("/", serviceHandler.Create)
	svc.Get("/", serviceHandler.List)
	svc.Get("/:id", serviceHandler.Get)
	svc.Put("/:id", serviceHandler.Update)
	svc.Patch("/:id/status", serviceHandler.UpdateStatus)
	svc.Delete("/:id", serviceHandler.Delete)
	svc.Post("/:id/assignments", serviceHandler.Assign)
	svc.Delete("/:id/assignments/:assignmentId", serviceHandler.Unassign)
	svc.Post("/:id/work-logs", serviceHandler.AddWorkLog)
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
