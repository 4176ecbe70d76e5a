// seed carga un catálogo de demostración (materiales, receta, lotes recibidos y una
// orden de servicio) e imprime un token de desarrollo para probar la API.
//
// Uso: STORE=postgres go run ./cmd/seed
// Es idempotente: los materiales, recetas y órdenes existentes se dejan como están.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/application/usecase"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/storage"
	"github.com/jhoicas/pasteops-api/pkg/config"
	"github.com/jhoicas/pasteops-api/pkg/jwt"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

const seedUserID = "00000000-0000-0000-0000-0000000000a1"

type seedMaterial struct {
	code, name, category, unit string
	minStock                   int64
	lots                       []int64
}

var materials = []seedMaterial{
	{code: "SN-INGOT", name: "Lingote de estaño Sn99.9", category: entity.MaterialCategoryRaw, unit: entity.UnitKG, minStock: 50, lots: []int64{40, 60}},
	{code: "AG-POWDER", name: "Polvo de plata Ag", category: entity.MaterialCategoryRaw, unit: entity.UnitKG, minStock: 5, lots: []int64{4}},
	{code: "CU-POWDER", name: "Polvo de cobre Cu", category: entity.MaterialCategoryRaw, unit: entity.UnitKG, minStock: 2, lots: []int64{3}},
	{code: "FLUX-RMA", name: "Flux RMA", category: entity.MaterialCategoryRaw, unit: entity.UnitKG, minStock: 10, lots: []int64{25}},
	{code: "JAR-500", name: "Envase 500 g", category: entity.MaterialCategoryComponent, unit: entity.UnitPCS, minStock: 100, lots: []int64{500}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Store != config.StorePostgres {
		log.Fatal().Msg("seed requiere STORE=postgres")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	repos := backend.Repos
	l := ledger.New(repos, backend.TxRunner, ledger.NewLogObserver(log.Component("ledger")))
	materialUC := usecase.NewMaterialUseCase(repos.Materials)
	recipeUC := usecase.NewRecipeUseCase(repos, backend.TxRunner)
	stockUC := inventory.NewStockUseCase(l, repos, backend.TxRunner, nil)

	ids := map[string]string{}
	for i, sm := range materials {
		id, created, err := ensureMaterial(ctx, materialUC, repos.Materials.GetByCode, sm)
		if err != nil {
			log.Fatal().Err(err).Str("code", sm.code).Msg("material")
		}
		ids[sm.code] = id
		if !created {
			log.Info().Str("code", sm.code).Msg("material existente, sin cambios")
			continue
		}
		for j, qty := range sm.lots {
			received := time.Now().AddDate(0, 0, -30+j*7)
			_, err := stockUC.Receive(ctx, seedUserID, dto.ReceiveStockRequest{
				MaterialID:     id,
				Quantity:       decimal.NewFromInt(qty),
				LotNumber:      fmt.Sprintf("%s-L%02d", sm.code, j+1),
				ReceivedDate:   &received,
				DocumentNumber: fmt.Sprintf("GR-%03d", i*10+j+1),
			})
			if err != nil {
				log.Fatal().Err(err).Str("code", sm.code).Msg("recepción")
			}
		}
		log.Info().Str("code", sm.code).Int("lots", len(sm.lots)).Msg("material creado")
	}

	lo, hi := decimal.NewFromInt(150), decimal.NewFromInt(220)
	_, err = recipeUC.Create(ctx, dto.CreateRecipeRequest{
		Code:    "SAC305-T4",
		Name:    "Pasta SAC305 tipo 4",
		Version: "1",
		Ingredients: []dto.IngredientInput{
			{MaterialID: ids["SN-INGOT"], Quantity: decimal.RequireFromString("0.8165")},
			{MaterialID: ids["AG-POWDER"], Quantity: decimal.RequireFromString("0.0261")},
			{MaterialID: ids["CU-POWDER"], Quantity: decimal.RequireFromString("0.0044")},
			{MaterialID: ids["FLUX-RMA"], Quantity: decimal.RequireFromString("0.1130")},
			{MaterialID: ids["JAR-500"], Quantity: decimal.NewFromInt(2)},
		},
		Parameters: []dto.ParameterInput{
			{Name: "viscosity", Value: "185", Unit: "Pa.s", MinValue: &lo, MaxValue: &hi},
			{Name: "metal_content", Value: "88.5", Unit: "%"},
		},
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("code", "SAC305-T4").Msg("receta existente, sin cambios")
	case err != nil:
		log.Fatal().Err(err).Msg("receta")
	default:
		log.Info().Str("code", "SAC305-T4").Msg("receta creada")
	}

	serviceUC := fieldservice.NewServiceOrderUseCase(repos, backend.TxRunner)
	_, err = serviceUC.Create(ctx, dto.CreateServiceOrderRequest{
		OrderNumber:   "OS-0001",
		EquipmentType: "Impresora de stencil",
		Location:      "Línea SMT 1",
		Description:   "Mantenimiento preventivo de rasquetas",
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		log.Info().Str("order", "OS-0001").Msg("orden de servicio existente, sin cambios")
	case err != nil:
		log.Fatal().Err(err).Msg("orden de servicio")
	default:
		log.Info().Str("order", "OS-0001").Msg("orden de servicio creada")
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: no se genera token de desarrollo")
		return
	}
	tok, err := jwt.Generate(secret, seedUserID, "seed", cfg.JWT.Issuer, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("token")
	}
	fmt.Printf("\nToken de desarrollo (24h):\nBearer %s\n", tok)
}

// ensureMaterial crea el material si su código no existe.
func ensureMaterial(
	ctx context.Context,
	uc *usecase.MaterialUseCase,
	byCode func(context.Context, string) (*entity.Material, error),
	sm seedMaterial,
) (id string, created bool, err error) {
	existing, err := byCode(ctx, sm.code)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}
	minStock := decimal.NewFromInt(sm.minStock)
	out, err := uc.Create(ctx, dto.CreateMaterialRequest{
		Code:     sm.code,
		Name:     sm.name,
		Category: sm.category,
		Unit:     sm.unit,
		MinStock: &minStock,
	})
	if err != nil {
		return "", false, err
	}
	return out.ID, true, nil
}
