package dto

import "github.com/jhoicas/pasteops-api/internal/domain/entity"

// Conversión de entidades a respuestas.

func ToMaterialResponse(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Category:    m.Category,
		Unit:        m.Unit,
		MinStock:    m.MinStock,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToLotResponse(l *entity.StockLot) LotResponse {
	return LotResponse{
		ID:           l.ID,
		MaterialID:   l.MaterialID,
		LotNumber:    l.LotNumber,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
		ExpiryDate:   l.ExpiryDate,
		ReceivedDate: l.ReceivedDate,
		SupplierID:   l.SupplierID,
	}
}

func ToLotResponses(lots []*entity.StockLot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, ToLotResponse(l))
	}
	return out
}

func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		MaterialID:     m.MaterialID,
		LotID:          m.LotID,
		Type:           m.Type,
		Direction:      m.Direction,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		BatchID:        m.BatchID,
		ServiceOrderID: m.ServiceOrderID,
		DocumentNumber: m.DocumentNumber,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func ToMovementResponses(movs []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

func ToRecipeResponse(r *entity.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Version:     r.Version,
		IsActive:    r.IsActive,
		Ingredients: make([]IngredientResponse, 0, len(r.Ingredients)),
		Parameters:  make([]RecipeParameterResponse, 0, len(r.Parameters)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientResponse{
			ID: ing.ID, MaterialID: ing.MaterialID, Quantity: ing.Quantity, Unit: ing.Unit,
		})
	}
	for _, p := range r.Parameters {
		resp.Parameters = append(resp.Parameters, RecipeParameterResponse{
			ID: p.ID, Name: p.Name, Value: p.Value, Unit: p.Unit, MinValue: p.MinValue, MaxValue: p.MaxValue,
		})
	}
	return resp
}

func ToOrderResponse(o *entity.ProductionOrder) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		RecipeID:    o.RecipeID,
		PlannedQty:  o.PlannedQty,
		Unit:        o.Unit,
		PlannedDate: o.PlannedDate,
		Deadline:    o.Deadline,
		Status:      o.Status,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func ToBatchResponse(b *entity.ProductionBatch) BatchResponse {
	resp := BatchResponse{
		ID:             b.ID,
		BatchNumber:    b.BatchNumber,
		OrderID:        b.OrderID,
		RecipeID:       b.RecipeID,
		ProducedQty:    b.ProducedQty,
		Unit:           b.Unit,
		ProductionDate: b.ProductionDate,
		ProducedBy:     b.ProducedBy,
		Status:         b.Status,
		Notes:          b.Notes,
		MaterialUsage:  make([]MaterialUsageResponse, 0, len(b.MaterialUsage)),
		Parameters:     make([]BatchParameterResponse, 0, len(b.Parameters)),
		CreatedAt:      b.CreatedAt,
	}
	for _, u := range b.MaterialUsage {
		resp.MaterialUsage = append(resp.MaterialUsage, MaterialUsageResponse{
			MaterialID: u.MaterialID, Quantity: u.Quantity, Unit: u.Unit,
		})
	}
	for _, p := range b.Parameters {
		resp.Parameters = append(resp.Parameters, BatchParameterResponse{
			ID: p.ID, Name: p.Name, Value: p.Value, Unit: p.Unit, IsInRange: p.IsInRange,
		})
	}
	if len(b.Movements) > 0 {
		resp.Movements = ToMovementResponses(b.Movements)
	}
	return resp
}

func ToCheckResponse(c *entity.InventoryCheck) CheckResponse {
	resp := CheckResponse{
		ID:          c.ID,
		CheckNumber: c.CheckNumber,
		CheckDate:   c.CheckDate,
		Status:      c.Status,
		Notes:       c.Notes,
		CompletedAt: c.CompletedAt,
		Items:       make([]CheckItemResponse, 0, len(c.Items)),
		CreatedAt:   c.CreatedAt,
	}
	for _, it := range c.Items {
		resp.Items = append(resp.Items, CheckItemResponse{
			ID:         it.ID,
			MaterialID: it.MaterialID,
			SystemQty:  it.SystemQty,
			ActualQty:  it.ActualQty,
			Difference: it.Difference,
			Unit:       it.Unit,
			Notes:      it.Notes,
		})
	}
	return resp
}

func ToServiceOrderResponse(o *entity.ServiceOrder) ServiceOrderResponse {
	resp := ServiceOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerRef:    o.CustomerRef,
		EquipmentType:  o.EquipmentType,
		EquipmentModel: o.EquipmentModel,
		Location:       o.Location,
		Description:    o.Description,
		Priority:       o.Priority,
		Status:         o.Status,
		PlannedStart:   o.PlannedStart,
		PlannedEnd:     o.PlannedEnd,
		ActualStart:    o.ActualStart,
		ActualEnd:      o.ActualEnd,
		Notes:          o.Notes,
		Assignments:    make([]AssignmentResponse, 0, len(o.Assignments)),
		WorkLogs:       make([]WorkLogResponse, 0, len(o.WorkLogs)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, a := range o.Assignments {
		resp.Assignments = append(resp.Assignments, AssignmentResponse{
			ID:         a.ID,
			EngineerID: a.EngineerID,
			Notes:      a.Notes,
			AssignedAt: a.AssignedAt,
		})
	}
	for _, w := range o.WorkLogs {
		resp.WorkLogs = append(resp.WorkLogs, ToWorkLogResponse(w))
	}
	return resp
}

func ToWorkLogResponse(w entity.WorkLog) WorkLogResponse {
	return WorkLogResponse{
		ID:          w.ID,
		EngineerID:  w.EngineerID,
		WorkDate:    w.WorkDate,
		StartTime:   w.StartTime,
		EndTime:     w.EndTime,
		Description: w.Description,
		Result:      w.Result,
		Status:      w.Status,
	}
}
