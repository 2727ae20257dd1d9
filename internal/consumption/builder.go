package consumption

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/internal/resolve"
	"consumo_wpp_backend/platform/apperr"
	"consumo_wpp_backend/platform/logger"
)

const builderAppName = "consumption-builder"

// One resolver run is a handful of lookups plus the staging call; a run
// still going after this many events is looping.
const maxResolverSteps = 32

const resolverTimeout = 2 * time.Minute

const builderInstruction = `Você é um assistente que resolve os dados de um registro de consumo de insumos agrícolas contra o catálogo do produtor, usando exclusivamente as ferramentas disponíveis.

Você recebe as informações extraídas da conversa (produtos, quantidades, locais de aplicação, máquinas, ponto de estoque, safra). Seu trabalho é chamar as ferramentas de busca para transformar cada menção em um identificador do catálogo.

REGRAS:
1. Chame SEMPRE 'buscar_responsavel_por_telefone', 'buscar_safra' e 'buscar_ponto_estoque', mesmo que o usuário não tenha mencionado nada sobre eles.
2. Chame 'buscar_safra' ANTES de buscar talhões.
3. Chame 'buscar_produto_por_nome' uma vez para cada produto mencionado.
4. Se o rateio é por talhão, chame 'buscar_talhao_por_nome' para cada talhão mencionado. Se é por propriedade, chame 'buscar_propriedade_por_nome' para cada propriedade mencionada.
5. Chame 'buscar_maquina' apenas se o usuário mencionou máquina.
6. Ao final, se TODAS as buscas resolveram sem ambiguidade, chame 'finalizar_registro_consumo'. Se alguma busca retornou ambiguidade ou não encontrou nada, NÃO finalize.
7. Nunca invente identificadores. Use apenas o que as ferramentas retornarem.`

// BuildOutcome is the builder's answer for one turn: exactly one of
// Record (data fully resolved) or Question (clarification needed for
// the user) is set.
type BuildOutcome struct {
	Record   *ResolvedConsumption
	Question string
}

// Builder resolves an extracted consumption report against the grower
// catalog. An LLM agent decides which lookups the mentions require;
// the lookups themselves are deterministic and accumulate their
// results in per-run state, so the final outcome never depends on the
// model's prose. Runs are independent: concurrent senders resolve in
// parallel, each with its own tool state, agent and session.
type Builder struct {
	llm         model.LLM
	gateway     catalog.Gateway
	growerID    string
	products    *resolve.ProductService
	harvests    *resolve.HarvestService
	stockPoints *resolve.StockPointService
	machines    *resolve.MachineService
	landUnits   *resolve.LandUnitService
	log         *logger.Logger
}

func NewBuilder(
	llm model.LLM,
	gateway catalog.Gateway,
	growerID string,
	products *resolve.ProductService,
	harvests *resolve.HarvestService,
	stockPoints *resolve.StockPointService,
	machines *resolve.MachineService,
	landUnits *resolve.LandUnitService,
	log *logger.Logger,
) (*Builder, error) {
	b := &Builder{
		llm:         llm,
		gateway:     gateway,
		growerID:    growerID,
		products:    products,
		harvests:    harvests,
		stockPoints: stockPoints,
		machines:    machines,
		landUnits:   landUnits,
		log:         log,
	}
	// agent configuration problems should surface at startup, not on
	// the first message
	if _, _, _, err := b.newRun(); err != nil {
		return nil, err
	}
	return b, nil
}

// newRun assembles the state for one resolution run: fresh tool
// dependencies, the agent bound to them, and its session service.
func (b *Builder) newRun() (*ToolDependencies, *runner.Runner, session.Service, error) {
	deps := &ToolDependencies{
		Gateway:     b.gateway,
		Products:    b.products,
		Harvests:    b.harvests,
		StockPoints: b.stockPoints,
		Machines:    b.machines,
		LandUnits:   b.landUnits,
	}

	tools, err := buildTools(deps)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create builder tools: %w", err)
	}

	resolverAgent, err := llmagent.New(llmagent.Config{
		Name:        "consumption_resolver",
		Model:       b.llm,
		Description: "Resolve menções de um registro de consumo contra o catálogo do produtor.",
		Instruction: builderInstruction,
		Tools:       tools,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create resolver agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        builderAppName,
		Agent:          resolverAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create resolver runner: %w", err)
	}
	return deps, r, sessionService, nil
}

func buildTools(deps *ToolDependencies) ([]tool.Tool, error) {
	constructors := []func(*ToolDependencies) (tool.Tool, error){
		createLookupResponsibleTool,
		createLookupProductTool,
		createLookupPlotTool,
		createLookupPropertyTool,
		createLookupMachineTool,
		createLookupStockPointTool,
		createLookupHarvestTool,
		createStageRecordTool,
	}
	tools := make([]tool.Tool, 0, len(constructors))
	for _, construct := range constructors {
		t, err := construct(deps)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// Resolve runs the agent over an extracted report and returns either a
// fully resolved record or the single clarification question to send
// back. Ambiguities outrank not-found reconfirmations, which outrank
// the staged record.
func (b *Builder) Resolve(ctx context.Context, phone string, reported ReportedConsumption, history []Turn) (BuildOutcome, error) {
	if question, ok := missingMachineHours(reported.Machines); ok {
		return BuildOutcome{Question: question}, nil
	}

	snapshot, err := catalog.LoadSnapshot(ctx, b.gateway, b.growerID)
	if err != nil {
		return BuildOutcome{}, apperr.Infra("falha ao carregar o catálogo do produtor", err)
	}

	deps, r, sessionService, err := b.newRun()
	if err != nil {
		return BuildOutcome{}, apperr.Infra("falha ao preparar a resolução do registro", err)
	}
	deps.Reset(b.growerID, phone, snapshot, reported)

	sessionID := uuid.New().String()
	userID := "resolver-" + phone
	if _, err := sessionService.Create(ctx, &session.CreateRequest{
		AppName:   builderAppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return BuildOutcome{}, apperr.Infra("falha ao criar sessão de resolução", err)
	}
	defer func() {
		_ = sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   builderAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildResolverPrompt(reported, history)}},
	}

	runCtx, cancel := context.WithTimeout(ctx, resolverTimeout)
	defer cancel()

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}
	steps := 0
	for event := range r.Run(runCtx, userID, sessionID, userMessage, runConfig) {
		_ = event
		steps++
		if steps >= maxResolverSteps {
			b.log.Warn("resolver step cap reached", "sender", phone)
			break
		}
	}

	ambiguities, notFound, resolved, staged := deps.Outcome()

	switch {
	case len(ambiguities) > 0:
		return BuildOutcome{Question: strings.Join(ambiguities, " ")}, nil
	case len(notFound) > 0:
		return BuildOutcome{Question: strings.Join(notFound, " ")}, nil
	case staged:
		resolved.Date = NormalizeDate(reported.DateText, time.Now())
		if resolved.AllocationKind == "" {
			resolved.AllocationKind = AllocationPlot
		}
		return BuildOutcome{Record: &resolved}, nil
	default:
		b.log.Error("resolver agent finished without staging or questions", "sender", phone)
		return BuildOutcome{}, apperr.Infra("o assistente não conseguiu concluir a resolução do registro", nil)
	}
}

// missingMachineHours rejects machine mentions without both hour meter
// readings before any lookup happens, since the usage delta cannot be
// computed without them.
func missingMachineHours(machines []ReportedMachine) (string, bool) {
	for _, m := range machines {
		if m.HourStart == nil || m.HourEnd == nil {
			name := m.Name
			if name == "" {
				name = "a máquina utilizada"
			}
			return fmt.Sprintf("Para registrar o uso de '%s', preciso do horímetro inicial e final. Pode me informar os dois valores, por favor?", name), true
		}
	}
	return "", false
}

func buildResolverPrompt(reported ReportedConsumption, history []Turn) string {
	var sb strings.Builder
	sb.WriteString("INFORMAÇÕES EXTRAÍDAS DA CONVERSA:\n")
	for _, p := range reported.Products {
		fmt.Fprintf(&sb, "- Produto: %s (quantidade: %s)\n", p.Name, p.Quantity)
	}
	for _, m := range reported.Machines {
		fmt.Fprintf(&sb, "- Máquina: %s\n", m.Name)
	}
	fmt.Fprintf(&sb, "- Tipo de rateio: %s\n", reported.AllocationKind)
	for _, p := range reported.Plots {
		fmt.Fprintf(&sb, "- Talhão: %s\n", p)
	}
	for _, p := range reported.Properties {
		fmt.Fprintf(&sb, "- Propriedade: %s\n", p)
	}
	if reported.StockPointName != "" {
		fmt.Fprintf(&sb, "- Ponto de estoque: %s\n", reported.StockPointName)
	}
	if reported.HarvestText != "" {
		fmt.Fprintf(&sb, "- Safra: %s\n", reported.HarvestText)
	}
	if reported.DateText != "" {
		fmt.Fprintf(&sb, "- Data: %s\n", reported.DateText)
	}
	if len(history) > 0 {
		sb.WriteString("\nHISTÓRICO DA CONVERSA:\n")
		sb.WriteString(FormatHistory(history))
		sb.WriteString("\n")
	}
	sb.WriteString("\nResolva todas as menções contra o catálogo usando as ferramentas e finalize o registro.")
	return sb.String()
}

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// parseQuantity pulls the first numeric value out of free text such as
// "15 litros" or "2,5 kg". Comma decimals are common in pt-BR input.
func parseQuantity(text string) float64 {
	match := numberRe.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0
	}
	return value
}
