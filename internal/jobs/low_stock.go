package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/queue"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

// LowStockAlert resultado de una revisión que encontró faltante.
type LowStockAlert struct {
	MaterialID string
	Code       string
	Available  string
	MinStock   string
}

// LowStockHandler compara la existencia del material con su mínimo.
type LowStockHandler struct {
	materials repository.MaterialRepository
	ledger    *ledger.Ledger
	log       *logger.Logger
	alerts    *prometheus.CounterVec
	notify    func(LowStockAlert)
}

// NewLowStockHandler construye el handler. reg puede ser nil (sin métricas).
func NewLowStockHandler(materials repository.MaterialRepository, l *ledger.Ledger, log *logger.Logger, reg prometheus.Registerer) *LowStockHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &LowStockHandler{materials: materials, ledger: l, log: log.Component("low_stock_job")}
	if reg != nil {
		h.alerts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pasteops_low_stock_alerts_total",
			Help: "Alertas de stock bajo detectadas por el worker, por material.",
		}, []string{"material"})
		reg.MustRegister(h.alerts)
	}
	return h
}

// OnAlert registra un callback para cada alerta (por defecto solo se loguea).
func (h *LowStockHandler) OnAlert(fn func(LowStockAlert)) {
	h.notify = fn
}

// ProcessTask implementa asynq.Handler.
func (h *LowStockHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.LowStockPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.MaterialID == "" {
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}
	m, err := h.materials.GetByID(ctx, p.MaterialID)
	if err != nil {
		return err
	}
	if m == nil || !m.IsActive || m.MinStock == nil {
		return nil
	}
	avail, err := h.ledger.AvailableQuantity(ctx, m.ID)
	if err != nil {
		return err
	}
	if !m.IsLowStock(avail) {
		return nil
	}
	alert := LowStockAlert{
		MaterialID: m.ID,
		Code:       m.Code,
		Available:  avail.String(),
		MinStock:   m.MinStock.String(),
	}
	h.log.Warn().
		Str("material_id", alert.MaterialID).
		Str("code", alert.Code).
		Str("available", alert.Available).
		Str("min_stock", alert.MinStock).
		Msg("material por debajo del stock mínimo")
	if h.alerts != nil {
		h.alerts.WithLabelValues(m.Code).Inc()
	}
	if h.notify != nil {
		h.notify(alert)
	}
	return nil
}
