package catalog

import "time"

// Wire-to-domain mapping. This is the only place that knows both
// shapes; invalid entries are dropped by the caller, not here.

func toProduct(dto productDTO) Product {
	units := make([]string, 0, len(dto.Units))
	for _, u := range dto.Units {
		units = append(units, u.Abbreviation)
	}
	ingredients := make([]string, 0, len(dto.ActiveIngredients))
	for _, ia := range dto.ActiveIngredients {
		ingredients = append(ingredients, ia.Name)
	}
	return Product{
		ID:                dto.ID,
		Name:              dto.Name,
		Units:             units,
		ActiveIngredients: ingredients,
	}
}

func toPlanting(dto plantingDTO) Planting {
	return Planting{
		ID:           dto.ID,
		HarvestID:    dto.Harvest.ID,
		PlotID:       dto.Plot.ID,
		PlotName:     dto.Plot.Name,
		PropertyID:   dto.Plot.Property.ID,
		PropertyName: dto.Plot.Property.Name,
	}
}

func toProperty(dto propertyDTO) Property {
	return Property{ID: dto.ID, Name: dto.Name}
}

func toMachine(dto machineDTO) Machine {
	m := Machine{
		ID:     dto.ID,
		Name:   dto.Name,
		Active: true,
	}
	if dto.Active != nil {
		m.Active = *dto.Active
	}
	if dto.SerialNumber != nil {
		m.SerialNumber = *dto.SerialNumber
	}
	if dto.HourMeter != nil {
		m.HourMeter = *dto.HourMeter
	}
	return m
}

func toStockPoint(dto stockPointDTO) StockPoint {
	sp := StockPoint{ID: dto.ID, Name: dto.Name, Active: true}
	if dto.Active != nil {
		sp.Active = *dto.Active
	}
	return sp
}

func toHarvest(dto harvestDTO) (Harvest, error) {
	start, err := time.Parse("2006-01-02", dto.StartDate)
	if err != nil {
		return Harvest{}, err
	}
	end, err := time.Parse("2006-01-02", dto.EndDate)
	if err != nil {
		return Harvest{}, err
	}
	return Harvest{
		ID:        dto.ID,
		StartYear: dto.StartYear,
		EndYear:   dto.EndYear,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func toResponsible(dto personDTO) Responsible {
	r := Responsible{ID: dto.ID, Name: dto.Name}
	if dto.TradeName != nil {
		r.TradeName = *dto.TradeName
	}
	if dto.Phone != nil {
		r.Phone = *dto.Phone
	}
	return r
}
