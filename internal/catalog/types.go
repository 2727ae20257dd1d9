// Package catalog talks to the Agriwin farm-management API: grower
// reference data (products, plantings, machines, stock points,
// harvests, people) and the consumption write endpoint.
package catalog

import "time"

// Product is an agricultural input registered for the grower.
type Product struct {
	ID                string
	Name              string
	Units             []string
	ActiveIngredients []string
}

// Planting ties a plot to a harvest. Plot-level allocations reference
// the planting id, not the plot id.
type Planting struct {
	ID           string
	HarvestID    string
	PlotID       string
	PlotName     string
	PropertyID   string
	PropertyName string
}

// Property is a farm of the grower.
type Property struct {
	ID   string
	Name string
}

// Machine is a fixed asset (tractor, sprayer) of the grower.
type Machine struct {
	ID           string
	Name         string
	SerialNumber string
	Active       bool
	HourMeter    string
}

// StockPoint is a warehouse the input is drawn from.
type StockPoint struct {
	ID     string
	Name   string
	Active bool
}

// Harvest is a crop season with an exact year pair and date range.
type Harvest struct {
	ID        string
	StartYear int
	EndYear   int
	StartDate time.Time
	EndDate   time.Time
}

// Responsible is a person registered for the grower, matched to a
// WhatsApp sender by phone number.
type Responsible struct {
	ID        string
	Name      string
	TradeName string
	Phone     string
}
