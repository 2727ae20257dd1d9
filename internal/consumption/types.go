// Package consumption implements the registration pipeline stages:
// extraction of a reported record from chat text, resolution of every
// mention to a catalog id, verification, and persistence to Agriwin.
package consumption

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Allocation kinds. A message naming any plot allocates per planting;
// only-property messages allocate per property.
const (
	AllocationPlot     = "talhao"
	AllocationProperty = "propriedade"
)

// ReportedProduct is a product mention before resolution.
type ReportedProduct struct {
	Name     string `json:"nome"`
	Quantity string `json:"quantidade"`
}

// ReportedMachine is a machine mention before resolution. Hour-meter
// bounds stay optional; both are required before persisting.
type ReportedMachine struct {
	Name      string   `json:"nome"`
	HourStart *float64 `json:"horimetro_inicio"`
	HourEnd   *float64 `json:"horimetro_fim"`
}

// ReportedConsumption is what the extraction stage understood from the
// message plus history. It is rebuilt from scratch every turn, never
// mutated in place.
type ReportedConsumption struct {
	Products       []ReportedProduct `json:"produtos_mencionados"`
	Machines       []ReportedMachine `json:"maquinas_mencionadas"`
	Plots          []string          `json:"talhoes_mencionados"`
	Properties     []string          `json:"propriedades_mencionadas"`
	AllocationKind string            `json:"tipo_rateio"`
	StockPointName string            `json:"ponto_estoque_mencionado"`
	DateText       string            `json:"data_mencionada"`
	HarvestText    string            `json:"safra_mencionada"`
}

// ResolvedProduct carries a catalog id and a numeric quantity.
type ResolvedProduct struct {
	ID       string
	Name     string
	Quantity float64
}

// ResolvedMachine carries a catalog id and the hour-meter bounds.
type ResolvedMachine struct {
	ID        string
	Name      string
	HourStart *float64
	HourEnd   *float64
}

// ResolvedConsumption is the fully identified record. It must not
// reach persistence unless every mandatory id is set and the
// allocation list matches the allocation kind.
type ResolvedConsumption struct {
	Products       []ResolvedProduct
	Machines       []ResolvedMachine
	PlantingIDs    []string
	PropertyIDs    []string
	AllocationKind string
	StockPointID   string
	HarvestID      string
	ResponsibleID  string
	Date           time.Time
}
