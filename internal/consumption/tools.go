package consumption

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/internal/resolve"
)

// ToolDependencies contains the services and shared state the builder
// tools operate on. State is reset before each run; tools append their
// findings under the mutex and the builder reads the outcome after the
// agent loop finishes.
type ToolDependencies struct {
	Gateway     catalog.Gateway
	Products    *resolve.ProductService
	Harvests    *resolve.HarvestService
	StockPoints *resolve.StockPointService
	Machines    *resolve.MachineService
	LandUnits   *resolve.LandUnitService

	mu       sync.Mutex
	growerID string
	phone    string
	snapshot *catalog.Snapshot
	reported ReportedConsumption

	resolved    ResolvedConsumption
	ambiguities []string
	notFound    []string
	staged      bool
}

// Reset prepares the shared state for a new builder run.
func (d *ToolDependencies) Reset(growerID, phone string, snapshot *catalog.Snapshot, reported ReportedConsumption) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.growerID = growerID
	d.phone = phone
	d.snapshot = snapshot
	d.reported = reported
	d.resolved = ResolvedConsumption{AllocationKind: reported.AllocationKind}
	d.ambiguities = nil
	d.notFound = nil
	d.staged = false
}

// Outcome returns the termination data: ambiguity questions first,
// then not-found questions, then the staged record.
func (d *ToolDependencies) Outcome() (ambiguities, notFound []string, record ResolvedConsumption, staged bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ambiguities...), append([]string(nil), d.notFound...), d.resolved, d.staged
}

func (d *ToolDependencies) addAmbiguity(question string) {
	d.mu.Lock()
	d.ambiguities = append(d.ambiguities, question)
	d.mu.Unlock()
}

func (d *ToolDependencies) addNotFound(question string) {
	d.mu.Lock()
	d.notFound = append(d.notFound, question)
	d.mu.Unlock()
}

func quoteNames(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, "'"+n+"'")
	}
	return joinNatural(quoted)
}

type productView struct {
	ID                string   `json:"id"`
	Name              string   `json:"nome"`
	Units             []string `json:"unidades_medida"`
	ActiveIngredients []string `json:"ingredientes_ativos"`
}

func toProductViews(products []catalog.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			ID:                p.ID,
			Name:              p.Name,
			Units:             p.Units,
			ActiveIngredients: p.ActiveIngredients,
		})
	}
	return views
}

type lookupProductInput struct {
	Name string `json:"nome_produto"`
}

type lookupProductOutput struct {
	Resolved   *productView  `json:"produto_resolvido,omitempty"`
	Candidates []productView `json:"candidatos,omitempty"`
	Message    string        `json:"mensagem"`
}

func createLookupProductTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_produto_por_nome",
		Description: "Busca o produto mencionado pelo usuário no catálogo do produtor. A menção pode ser o nome comercial (ex: 'Tordon') ou um ingrediente ativo (ex: 'Glifosato'). A ferramenta aplica similaridade e desempate por consumo recente e estoque. Retorna o produto resolvido ou a lista de candidatos quando há ambiguidade.",
	}, func(ctx tool.Context, input lookupProductInput) (lookupProductOutput, error) {
		if strings.TrimSpace(input.Name) == "" {
			return lookupProductOutput{Message: "nome de produto vazio"}, nil
		}

		deps.mu.Lock()
		growerID := deps.growerID
		products := deps.snapshot.Products
		reported := deps.reported
		deps.mu.Unlock()

		res, err := deps.Products.Resolve(context.Background(), growerID, input.Name, products)
		if err != nil {
			return lookupProductOutput{}, err
		}

		switch {
		case res.Product != nil:
			view := toProductViews([]catalog.Product{*res.Product})[0]
			qty := quantityForMention(reported.Products, input.Name)
			deps.mu.Lock()
			deps.resolved.Products = append(deps.resolved.Products, ResolvedProduct{
				ID:       res.Product.ID,
				Name:     res.Product.Name,
				Quantity: qty,
			})
			deps.mu.Unlock()
			return lookupProductOutput{Resolved: &view, Message: "produto resolvido"}, nil

		case len(res.Candidates) > 0:
			names := make([]string, 0, len(res.Candidates))
			for _, c := range res.Candidates {
				names = append(names, c.Name)
			}
			deps.addAmbiguity(fmt.Sprintf("Notei que temos %s. Qual deles você utilizou?", quoteNames(names)))
			return lookupProductOutput{Candidates: toProductViews(res.Candidates), Message: "ambiguidade entre candidatos"}, nil

		default:
			deps.addNotFound(fmt.Sprintf("Não encontrei nenhum produto parecido com '%s'. Pode confirmar o nome, por favor?", input.Name))
			return lookupProductOutput{Message: "nenhum produto encontrado"}, nil
		}
	})
}

// quantityForMention pairs the agent's product lookup back to the
// quantity the extraction stage captured for that mention.
func quantityForMention(products []ReportedProduct, mention string) float64 {
	lowered := strings.ToLower(mention)
	for _, p := range products {
		if strings.ToLower(p.Name) == lowered {
			return parseQuantity(p.Quantity)
		}
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), lowered) || strings.Contains(lowered, strings.ToLower(p.Name)) {
			return parseQuantity(p.Quantity)
		}
	}
	return 0
}

type lookupPlotInput struct {
	Name string `json:"nome_talhao"`
}

type plotView struct {
	PlantingID   string `json:"id_plantio"`
	PlotName     string `json:"nome_talhao"`
	PropertyName string `json:"nome_propriedade"`
}

type lookupPlotOutput struct {
	Matches []plotView `json:"plantios"`
	Message string     `json:"mensagem"`
}

func createLookupPlotTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_talhao_por_nome",
		Description: "Busca o talhão mencionado pelo usuário entre os plantios do produtor. Chame uma vez por talhão mencionado, depois de resolver a safra, pois o mesmo talhão existe em várias safras.",
	}, func(ctx tool.Context, input lookupPlotInput) (lookupPlotOutput, error) {
		deps.mu.Lock()
		plantings := deps.snapshot.Plantings
		harvestID := deps.resolved.HarvestID
		deps.mu.Unlock()

		matches := deps.LandUnits.ResolvePlot(input.Name, plantings)
		if harvestID != "" {
			filtered := matches[:0:0]
			for _, m := range matches {
				if m.HarvestID == harvestID {
					filtered = append(filtered, m)
				}
			}
			matches = filtered
		}

		views := make([]plotView, 0, len(matches))
		for _, m := range matches {
			views = append(views, plotView{PlantingID: m.ID, PlotName: m.PlotName, PropertyName: m.PropertyName})
		}

		switch len(matches) {
		case 0:
			deps.addNotFound(fmt.Sprintf("Não encontrei nenhum talhão parecido com '%s'. Pode confirmar o nome, por favor?", input.Name))
			return lookupPlotOutput{Message: "nenhum talhão encontrado"}, nil
		case 1:
			deps.mu.Lock()
			deps.resolved.PlantingIDs = append(deps.resolved.PlantingIDs, matches[0].ID)
			deps.mu.Unlock()
			return lookupPlotOutput{Matches: views, Message: "talhão resolvido"}, nil
		default:
			names := make([]string, 0, len(matches))
			for _, m := range matches {
				names = append(names, m.PlotName+" ("+m.PropertyName+")")
			}
			deps.addAmbiguity(fmt.Sprintf("Encontrei mais de um talhão possível: %s. Qual deles você quis dizer?", quoteNames(names)))
			return lookupPlotOutput{Matches: views, Message: "ambiguidade entre talhões"}, nil
		}
	})
}

type lookupPropertyInput struct {
	Name string `json:"nome_propriedade"`
}

type propertyView struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type lookupPropertyOutput struct {
	Matches []propertyView `json:"propriedades"`
	Message string         `json:"mensagem"`
}

func createLookupPropertyTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_propriedade_por_nome",
		Description: "Busca a propriedade (fazenda) mencionada pelo usuário. Chame uma vez por propriedade mencionada, apenas quando o rateio é por propriedade.",
	}, func(ctx tool.Context, input lookupPropertyInput) (lookupPropertyOutput, error) {
		deps.mu.Lock()
		properties := deps.snapshot.Properties
		deps.mu.Unlock()

		matches := deps.LandUnits.ResolveProperty(input.Name, properties)
		views := make([]propertyView, 0, len(matches))
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			views = append(views, propertyView{ID: m.ID, Name: m.Name})
			names = append(names, m.Name)
		}

		switch len(matches) {
		case 0:
			deps.addNotFound(fmt.Sprintf("Não encontrei nenhuma propriedade parecida com '%s'. Pode confirmar o nome, por favor?", input.Name))
			return lookupPropertyOutput{Message: "nenhuma propriedade encontrada"}, nil
		case 1:
			deps.mu.Lock()
			deps.resolved.PropertyIDs = append(deps.resolved.PropertyIDs, matches[0].ID)
			deps.mu.Unlock()
			return lookupPropertyOutput{Matches: views, Message: "propriedade resolvida"}, nil
		default:
			deps.addAmbiguity(fmt.Sprintf("Encontrei mais de uma propriedade possível: %s. Qual delas você quis dizer?", quoteNames(names)))
			return lookupPropertyOutput{Matches: views, Message: "ambiguidade entre propriedades"}, nil
		}
	})
}

type lookupMachineInput struct {
	Term string `json:"nome_ou_serie"`
}

type machineView struct {
	ID           string `json:"id"`
	Name         string `json:"nome"`
	SerialNumber string `json:"numero_serie,omitempty"`
}

type lookupMachineOutput struct {
	Matches []machineView `json:"maquinas"`
	Message string        `json:"mensagem"`
}

func createLookupMachineTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_maquina",
		Description: "Busca uma máquina (imobilizado) pelo nome ou número de série. Número de série tem correspondência exata; nomes usam similaridade. Chame apenas se o usuário mencionou máquina.",
	}, func(ctx tool.Context, input lookupMachineInput) (lookupMachineOutput, error) {
		deps.mu.Lock()
		machines := deps.snapshot.Machines
		reported := deps.reported
		deps.mu.Unlock()

		matches := deps.Machines.Resolve(input.Term, machines)
		views := make([]machineView, 0, len(matches))
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			views = append(views, machineView{ID: m.ID, Name: m.Name, SerialNumber: m.SerialNumber})
			names = append(names, m.Name)
		}

		switch len(matches) {
		case 0:
			deps.addNotFound(fmt.Sprintf("Não encontrei nenhuma máquina parecida com '%s'. Pode confirmar o nome ou número de série, por favor?", input.Term))
			return lookupMachineOutput{Message: "nenhuma máquina encontrada"}, nil
		case 1:
			start, end := hoursForMention(reported.Machines, input.Term)
			deps.mu.Lock()
			deps.resolved.Machines = append(deps.resolved.Machines, ResolvedMachine{
				ID:        matches[0].ID,
				Name:      matches[0].Name,
				HourStart: start,
				HourEnd:   end,
			})
			deps.mu.Unlock()
			return lookupMachineOutput{Matches: views, Message: "máquina resolvida"}, nil
		default:
			deps.addAmbiguity(fmt.Sprintf("Encontrei mais de uma máquina possível: %s. Qual delas você utilizou?", quoteNames(names)))
			return lookupMachineOutput{Matches: views, Message: "ambiguidade entre máquinas"}, nil
		}
	})
}

func hoursForMention(machines []ReportedMachine, mention string) (*float64, *float64) {
	lowered := strings.ToLower(mention)
	for _, m := range machines {
		if strings.ToLower(m.Name) == lowered {
			return m.HourStart, m.HourEnd
		}
	}
	if len(machines) == 1 {
		return machines[0].HourStart, machines[0].HourEnd
	}
	return nil, nil
}

type lookupStockPointInput struct {
	Name string `json:"nome_ponto_estoque"`
}

type stockPointView struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type lookupStockPointOutput struct {
	Matches []stockPointView `json:"pontos_estoque"`
	Message string           `json:"mensagem"`
}

func createLookupStockPointTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_ponto_estoque",
		Description: "Busca o ponto de estoque (depósito) de onde o produto saiu. Se o usuário não mencionou nenhum, chame com nome vazio: um produtor com um único depósito usa esse depósito por padrão. Chame SEMPRE, mesmo sem menção.",
	}, func(ctx tool.Context, input lookupStockPointInput) (lookupStockPointOutput, error) {
		deps.mu.Lock()
		points := deps.snapshot.StockPoints
		deps.mu.Unlock()

		matches := deps.StockPoints.Resolve(strings.TrimSpace(input.Name), points)
		views := make([]stockPointView, 0, len(matches))
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			views = append(views, stockPointView{ID: m.ID, Name: m.Name})
			names = append(names, m.Name)
		}

		switch len(matches) {
		case 0:
			if strings.TrimSpace(input.Name) != "" {
				deps.addNotFound(fmt.Sprintf("Não encontrei nenhum ponto de estoque parecido com '%s'. Pode confirmar o nome, por favor?", input.Name))
				return lookupStockPointOutput{Message: "nenhum ponto de estoque encontrado"}, nil
			}
			allNames := make([]string, 0, len(points))
			for _, p := range points {
				allNames = append(allNames, p.Name)
			}
			deps.addAmbiguity(fmt.Sprintf("De qual ponto de estoque o produto saiu? Temos %s.", quoteNames(allNames)))
			return lookupStockPointOutput{Message: "ponto de estoque não informado"}, nil
		case 1:
			deps.mu.Lock()
			deps.resolved.StockPointID = matches[0].ID
			deps.mu.Unlock()
			return lookupStockPointOutput{Matches: views, Message: "ponto de estoque resolvido"}, nil
		default:
			deps.addAmbiguity(fmt.Sprintf("Encontrei mais de um ponto de estoque possível: %s. Qual deles?", quoteNames(names)))
			return lookupStockPointOutput{Matches: views, Message: "ambiguidade entre pontos de estoque"}, nil
		}
	})
}

type lookupHarvestInput struct {
	Text string `json:"safra_mencionada"`
}

type harvestView struct {
	ID        string `json:"id"`
	StartYear int    `json:"ano_inicio"`
	EndYear   int    `json:"ano_termino"`
}

type lookupHarvestOutput struct {
	Harvest *harvestView `json:"safra,omitempty"`
	Message string       `json:"mensagem"`
}

func createLookupHarvestTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_safra",
		Description: "Busca a safra do consumo. Se o usuário mencionou um período (ex: '24/25'), passe o texto; senão chame com texto vazio para obter a safra que contém a data de hoje. Chame SEMPRE, antes de buscar talhões.",
	}, func(ctx tool.Context, input lookupHarvestInput) (lookupHarvestOutput, error) {
		deps.mu.Lock()
		harvests := deps.snapshot.Harvests
		deps.mu.Unlock()

		found := deps.Harvests.Resolve(strings.TrimSpace(input.Text), harvests, time.Now())
		if found == nil {
			if strings.TrimSpace(input.Text) != "" {
				deps.addNotFound(fmt.Sprintf("Não encontrei a safra '%s'. Pode confirmar o período, por favor?", input.Text))
			} else {
				deps.addNotFound("Não consegui identificar a safra atual. Pode me informar a safra (ex: 24/25), por favor?")
			}
			return lookupHarvestOutput{Message: "nenhuma safra encontrada"}, nil
		}

		deps.mu.Lock()
		deps.resolved.HarvestID = found.ID
		deps.mu.Unlock()
		return lookupHarvestOutput{
			Harvest: &harvestView{ID: found.ID, StartYear: found.StartYear, EndYear: found.EndYear},
			Message: "safra resolvida",
		}, nil
	})
}

type lookupResponsibleOutput struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"nome,omitempty"`
	Message string `json:"mensagem"`
}

func createLookupResponsibleTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "buscar_responsavel_por_telefone",
		Description: "Busca o responsável pelo registro usando o telefone do remetente da conversa. Chame SEMPRE, sem parâmetros.",
	}, func(ctx tool.Context, input struct{}) (lookupResponsibleOutput, error) {
		deps.mu.Lock()
		growerID := deps.growerID
		phone := deps.phone
		deps.mu.Unlock()

		responsible, err := deps.Gateway.ResponsibleByPhone(context.Background(), growerID, phone)
		if err != nil {
			return lookupResponsibleOutput{}, err
		}
		if responsible == nil {
			deps.addNotFound("Não encontrei seu cadastro como responsável. Por favor, entre em contato com o suporte.")
			return lookupResponsibleOutput{Message: "responsável não encontrado"}, nil
		}

		deps.mu.Lock()
		deps.resolved.ResponsibleID = responsible.ID
		deps.mu.Unlock()
		return lookupResponsibleOutput{ID: responsible.ID, Name: responsible.Name, Message: "responsável resolvido"}, nil
	})
}

type stageRecordInput struct {
	Confirm bool `json:"confirmar"`
}

type stageRecordOutput struct {
	Staged  bool   `json:"registrado"`
	Message string `json:"mensagem"`
}

func createStageRecordTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "finalizar_registro_consumo",
		Description: "ETAPA FINAL: marca o registro como completo para ser salvo. Chame apenas depois de resolver responsável, produto(s), ponto de estoque, safra e os locais de aplicação, e somente se nenhuma busca ficou ambígua.",
	}, func(ctx tool.Context, input stageRecordInput) (stageRecordOutput, error) {
		deps.mu.Lock()
		defer deps.mu.Unlock()

		if len(deps.ambiguities) > 0 || len(deps.notFound) > 0 {
			return stageRecordOutput{Staged: false, Message: "existem pendências de esclarecimento; não é possível finalizar"}, nil
		}
		deps.staged = true
		return stageRecordOutput{Staged: true, Message: "registro pronto para ser salvo"}, nil
	})
}
