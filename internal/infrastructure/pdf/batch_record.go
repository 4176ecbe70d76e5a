// Package pdf genera la hoja de registro de un lote de producción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Receta + versión     │  N° Lote + Fecha + Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORDEN / CANTIDAD / RESPONSABLE                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONSUMOS: Código | Material | Cantidad | Unidad             │
//	│  TRAZABILIDAD: Lote de stock | Material | Cantidad           │
//	│  PARÁMETROS: Nombre | Valor | Rango | OK                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del lote + firmas                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var _ production.RecordRenderer = (*BatchRecordGenerator)(nil)

// BatchRecordGenerator implementa production.RecordRenderer usando Maroto v2.
type BatchRecordGenerator struct {
	company string
}

// NewBatchRecordGenerator construye el generador. company aparece como autor del documento.
func NewBatchRecordGenerator(company string) *BatchRecordGenerator {
	return &BatchRecordGenerator{company: company}
}

// RenderBatchRecord genera el PDF y devuelve sus bytes.
func (g *BatchRecordGenerator) RenderBatchRecord(rec production.BatchRecord) ([]byte, error) {
	if rec.Batch == nil || rec.Recipe == nil {
		return nil, fmt.Errorf("pdf: lote o receta vacíos")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Registro de lote "+rec.Batch.BatchNumber, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("CONSUMO DE MATERIALES"))
	m.AddRows(tableHeader([]string{"Código", "Material", "Cantidad", "Unidad"}, []int{2, 6, 2, 2}))
	m.AddRows(usageRows(rec)...)

	m.AddRows(line.NewRow(2))
	m.AddRows(sectionTitle("TRAZABILIDAD DE LOTES DE STOCK"))
	m.AddRows(tableHeader([]string{"Lote de stock", "Material", "Cantidad"}, []int{5, 4, 3}))
	m.AddRows(traceRows(rec)...)

	m.AddRows(line.NewRow(2))
	m.AddRows(sectionTitle("PARÁMETROS DE PROCESO"))
	m.AddRows(tableHeader([]string{"Parámetro", "Valor", "Rango receta", "En rango"}, []int{4, 3, 3, 2}))
	m.AddRows(parameterRows(rec)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rec))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rec production.BatchRecord) core.Row {
	b := rec.Batch
	return row.New(18).Add(
		col.New(7).Add(
			text.New(rec.Recipe.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Receta %s  v%s", rec.Recipe.Code, rec.Recipe.Version), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REGISTRO DE LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(b.BatchNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+b.ProductionDate.Format("02/01/2006")+"   Estado: "+b.Status, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func infoRow(rec production.BatchRecord) core.Row {
	b := rec.Batch
	order := "-"
	if rec.Order != nil {
		order = rec.Order.OrderNumber
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Orden: %s   |   Cantidad producida: %s %s   |   Responsable: %s",
				order, b.ProducedQty.String(), b.Unit, nonEmpty(b.ProducedBy, "-"),
			), props.Text{Size: 8, Top: 2}),
			text.New(nonEmpty(b.Notes, ""), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cell(size int, s string, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func usageRows(rec production.BatchRecord) []core.Row {
	rows := make([]core.Row, 0, len(rec.Batch.MaterialUsage))
	for _, u := range rec.Batch.MaterialUsage {
		code, name := materialLabel(rec, u.MaterialID)
		rows = append(rows, row.New(6).Add(
			cell(2, code, align.Left),
			cell(6, name, align.Left),
			cell(2, u.Quantity.String(), align.Right),
			cell(2, u.Unit, align.Center),
		))
	}
	return rows
}

func traceRows(rec production.BatchRecord) []core.Row {
	rows := make([]core.Row, 0, len(rec.Batch.Movements))
	for _, mv := range rec.Batch.Movements {
		if mv.Type != entity.MovementConsumption {
			continue
		}
		code, _ := materialLabel(rec, mv.MaterialID)
		rows = append(rows, row.New(6).Add(
			cell(5, nonEmpty(mv.LotID, "-"), align.Left),
			cell(4, code, align.Left),
			cell(3, mv.Quantity.String()+" "+mv.Unit, align.Right),
		))
	}
	return rows
}

func parameterRows(rec production.BatchRecord) []core.Row {
	ranges := make(map[string]string, len(rec.Recipe.Parameters))
	for _, p := range rec.Recipe.Parameters {
		ranges[p.Name] = rangeLabel(p)
	}
	rows := make([]core.Row, 0, len(rec.Batch.Parameters))
	for _, p := range rec.Batch.Parameters {
		ok := "Sí"
		style := props.Text{Size: 8, Align: align.Center, Top: 1}
		if !p.IsInRange {
			ok = "NO"
			style.Style = fontstyle.Bold
			style.Color = colorAlert
		}
		rows = append(rows, row.New(6).Add(
			cell(4, p.Name, align.Left),
			cell(3, p.Value+" "+p.Unit, align.Right),
			cell(3, nonEmpty(ranges[p.Name], "-"), align.Center),
			col.New(2).Add(text.New(ok, style)),
		))
	}
	return rows
}

// footerRow: QR con el número de lote y espacio para firmas.
func footerRow(rec production.BatchRecord) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(rec.Batch.BatchNumber, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Producido por: ______________________", props.Text{Size: 9, Top: 8, Left: 4}),
			text.New("Control de calidad: ______________________", props.Text{Size: 9, Top: 20, Left: 4}),
			text.New("Documento generado por el sistema de producción.", props.Text{
				Size: 6.5, Top: 32, Left: 4, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func materialLabel(rec production.BatchRecord, id string) (string, string) {
	if m, ok := rec.Materials[id]; ok {
		return m.Code, m.Name
	}
	return id, "-"
}

func rangeLabel(p entity.RecipeParameter) string {
	switch {
	case p.MinValue != nil && p.MaxValue != nil:
		return p.MinValue.String() + " - " + p.MaxValue.String()
	case p.MinValue != nil:
		return ">= " + p.MinValue.String()
	case p.MaxValue != nil:
		return "<= " + p.MaxValue.String()
	}
	return ""
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
