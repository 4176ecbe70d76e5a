package production

import (
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// BatchRecord datos completos de un lote de producción para su hoja de registro.
type BatchRecord struct {
	Batch     *entity.ProductionBatch
	Recipe    *entity.Recipe
	Order     *entity.ProductionOrder // nil si el lote no tiene orden
	Materials map[string]*entity.Material
}

// RecordRenderer genera la hoja de registro (PDF) de un lote.
type RecordRenderer interface {
	RenderBatchRecord(rec BatchRecord) ([]byte, error)
}
