package catalog

// DTOs mirroring the Agriwin wire format. Every response wraps its
// payload in {"dados": ..., "mensagem": ...}.

type unitDTO struct {
	Abbreviation string `json:"sigla"`
}

type activeIngredientDTO struct {
	Name string `json:"nome"`
}

type productDTO struct {
	ID                string                `json:"identificador"`
	Name              string                `json:"nome"`
	Units             []unitDTO             `json:"unidades_medida"`
	ActiveIngredients []activeIngredientDTO `json:"ingredientes_ativo"`
}

type plantingPropertyDTO struct {
	ID   string `json:"identificador"`
	Name string `json:"descricao"`
}

type plantingPlotDTO struct {
	ID       string              `json:"identificador"`
	Name     string              `json:"descricao"`
	Property plantingPropertyDTO `json:"propriedade"`
}

type plantingHarvestDTO struct {
	ID string `json:"identificador"`
}

type plantingDTO struct {
	ID      string             `json:"identificador"`
	Harvest plantingHarvestDTO `json:"safra"`
	Plot    plantingPlotDTO    `json:"talhao"`
}

type propertyDTO struct {
	ID   string `json:"identificador"`
	Name string `json:"descricao"`
}

type machineDTO struct {
	ID           string  `json:"identificador"`
	Name         string  `json:"descricao"`
	Active       *bool   `json:"ativo"`
	SerialNumber *string `json:"numero_serie"`
	HourMeter    *string `json:"horimetro_atual"`
}

type stockPointDTO struct {
	ID     string `json:"identificador"`
	Name   string `json:"descricao"`
	Active *bool  `json:"ativo"`
}

type harvestDTO struct {
	ID        string `json:"identificador"`
	StartYear int    `json:"ano_inicio"`
	EndYear   int    `json:"ano_termino"`
	StartDate string `json:"data_inicio"`
	EndDate   string `json:"data_termino"`
}

type personDTO struct {
	ID        string  `json:"identificador"`
	Name      string  `json:"nome"`
	TradeName *string `json:"nome_fantasia"`
	Phone     *string `json:"telefone"`
}

// SaveConsumptionRequest is the body POSTed to the consumption endpoint.
type SaveConsumptionRequest struct {
	GrowerID    string             `json:"produtor_id"`
	Consumption ConsumptionPayload `json:"consumo"`
}

// ConsumptionPayload is the nested consumption record.
type ConsumptionPayload struct {
	Date            string            `json:"data"`
	ResponsibleID   string            `json:"responsavel_id"`
	StockPointID    string            `json:"ponto_estoque_id"`
	OperationTypeID *string           `json:"tipo_operacao_id"`
	Note            string            `json:"observacao"`
	Allocation      AllocationPayload `json:"rateio"`
	Machines        []MachinePayload  `json:"lista_imobilizados"`
	Products        []ProductPayload  `json:"lista_produtos"`
}

// AllocationPayload splits the consumption over plantings or whole
// properties. Exactly one of Plantings/Properties is set.
type AllocationPayload struct {
	ActivityID int      `json:"atividade_id"`
	HarvestID  string   `json:"safra_id"`
	Season     string   `json:"epoca"`
	Type       string   `json:"tipo"`
	Properties []string `json:"propriedades"`
	Plantings  []string `json:"plantios"`
	Cultures   []string `json:"culturas"`
	Lots       []string `json:"lotes"`
}

// MachinePayload records a machine used in the application. The
// hour-meter quantity is the end minus start reading.
type MachinePayload struct {
	ID        string   `json:"id"`
	HourMeter *float64 `json:"quantidade_horimetro_hodometro,omitempty"`
}

// ProductPayload records a consumed product and quantity.
type ProductPayload struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantidade"`
}
