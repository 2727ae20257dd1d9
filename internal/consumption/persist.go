package consumption

import (
	"context"
	"net/http"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/platform/logger"
)

// ObservationTag marks every record created through this channel.
const ObservationTag = "Consumo registrado via WhatsApp"

// defaultActivityID is the Agriwin activity the allocation is booked
// under. TODO: make configurable once Agriwin exposes the activity list.
const defaultActivityID = 1

// Persister posts resolved records to Agriwin and interprets the
// response.
type Persister struct {
	gateway catalog.Gateway
	log     *logger.Logger
}

func NewPersister(gateway catalog.Gateway, log *logger.Logger) *Persister {
	return &Persister{gateway: gateway, log: log}
}

// Save maps the record to the Agriwin payload and posts it. It returns
// whether the backend accepted the record and the backend's message,
// which the caller surfaces verbatim on rejection.
func (p *Persister) Save(ctx context.Context, growerID string, rec ResolvedConsumption) (bool, string, error) {
	req := buildPayload(growerID, rec)

	status, msg, err := p.gateway.SaveConsumption(ctx, req)
	if err != nil {
		return false, "", err
	}

	accepted := status >= http.StatusOK && status < http.StatusMultipleChoices
	if msg == "" && !accepted {
		msg = "Ocorreu um erro desconhecido."
	}

	p.log.Info("consumption persisted",
		"status", status,
		"accepted", accepted,
		"products", len(rec.Products),
	)
	return accepted, msg, nil
}

func buildPayload(growerID string, rec ResolvedConsumption) catalog.SaveConsumptionRequest {
	allocation := catalog.AllocationPayload{
		ActivityID: defaultActivityID,
		HarvestID:  rec.HarvestID,
		Season:     "SAFRA",
	}
	switch rec.AllocationKind {
	case AllocationProperty:
		allocation.Type = "PROPRIEDADE_AGRICOLA"
		allocation.Properties = rec.PropertyIDs
	default:
		allocation.Type = "PLANTIO"
		allocation.Plantings = rec.PlantingIDs
	}

	var machines []catalog.MachinePayload
	for _, m := range rec.Machines {
		item := catalog.MachinePayload{ID: m.ID}
		if m.HourStart != nil && m.HourEnd != nil {
			delta := *m.HourEnd - *m.HourStart
			item.HourMeter = &delta
		}
		machines = append(machines, item)
	}

	products := make([]catalog.ProductPayload, 0, len(rec.Products))
	for _, pr := range rec.Products {
		products = append(products, catalog.ProductPayload{ID: pr.ID, Quantity: pr.Quantity})
	}

	return catalog.SaveConsumptionRequest{
		GrowerID: growerID,
		Consumption: catalog.ConsumptionPayload{
			Date:          rec.Date.Format("02/01/2006"),
			ResponsibleID: rec.ResponsibleID,
			StockPointID:  rec.StockPointID,
			Note:          ObservationTag,
			Allocation:    allocation,
			Machines:      machines,
			Products:      products,
		},
	}
}
