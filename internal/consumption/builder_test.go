package consumption

import (
	"context"
	"iter"
	"strings"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"consumo_wpp_backend/internal/resolve"
	"consumo_wpp_backend/platform/logger"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"15 litros", 15},
		{"2,5 kg", 2.5},
		{"3.75", 3.75},
		{"uns 20 sacos", 20},
		{"", 0},
		{"muito", 0},
	}
	for _, c := range cases {
		if got := parseQuantity(c.in); got != c.want {
			t.Fatalf("parseQuantity(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMissingMachineHours(t *testing.T) {
	start, end := 100.0, 104.0

	if _, stop := missingMachineHours([]ReportedMachine{{Name: "Trator", HourStart: &start, HourEnd: &end}}); stop {
		t.Fatal("complete hour meters must not stop the run")
	}

	question, stop := missingMachineHours([]ReportedMachine{{Name: "Trator", HourStart: &start}})
	if !stop {
		t.Fatal("missing end reading must stop the run")
	}
	if !strings.Contains(question, "Trator") || !strings.Contains(question, "horímetro") {
		t.Fatalf("unexpected question %q", question)
	}

	question, stop = missingMachineHours([]ReportedMachine{{}})
	if !stop {
		t.Fatal("unnamed machine without readings must stop the run")
	}
	if !strings.Contains(question, "a máquina utilizada") {
		t.Fatalf("expected generic name in %q", question)
	}
}

func TestQuantityForMention(t *testing.T) {
	products := []ReportedProduct{
		{Name: "Tordon XT", Quantity: "15 litros"},
		{Name: "Glifosato", Quantity: "2,5"},
	}

	if got := quantityForMention(products, "glifosato"); got != 2.5 {
		t.Fatalf("exact-insensitive match failed, got %v", got)
	}
	if got := quantityForMention(products, "Tordon"); got != 15 {
		t.Fatalf("substring match failed, got %v", got)
	}
	if got := quantityForMention(products, "Roundup"); got != 0 {
		t.Fatalf("unknown mention must return 0, got %v", got)
	}
}

func TestHoursForMention_SingleMachineFallback(t *testing.T) {
	start, end := 10.0, 12.0
	machines := []ReportedMachine{{Name: "Pulverizador", HourStart: &start, HourEnd: &end}}

	s, e := hoursForMention(machines, "o pulverizador vermelho")
	if s == nil || e == nil || *s != 10 || *e != 12 {
		t.Fatalf("expected fallback to the only reported machine, got %v %v", s, e)
	}
}

func TestToolState_OutcomePriorities(t *testing.T) {
	deps := &ToolDependencies{}
	deps.Reset("350", "5599911112222", nil, ReportedConsumption{AllocationKind: AllocationPlot})

	deps.addAmbiguity("qual deles?")
	deps.addNotFound("não encontrei")

	ambiguities, notFound, _, staged := deps.Outcome()
	if len(ambiguities) != 1 || len(notFound) != 1 {
		t.Fatalf("expected 1 ambiguity and 1 not-found, got %d and %d", len(ambiguities), len(notFound))
	}
	if staged {
		t.Fatal("nothing was staged")
	}

	deps.Reset("350", "5599911112222", nil, ReportedConsumption{})
	ambiguities, notFound, _, _ = deps.Outcome()
	if len(ambiguities) != 0 || len(notFound) != 0 {
		t.Fatal("reset must clear pending questions")
	}
}

type staticModel struct{}

func (staticModel) Name() string { return "static" }

func (staticModel) GenerateContent(_ context.Context, _ *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(&model.LLMResponse{Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{genai.NewPartFromText("ok")},
		}}, nil)
	}
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	log := logger.New("test")
	gw := &fakeGateway{}
	b, err := NewBuilder(
		staticModel{},
		gw,
		"350",
		resolve.NewProductService(gw, log),
		resolve.NewHarvestService(),
		resolve.NewStockPointService(),
		resolve.NewMachineService(),
		resolve.NewLandUnitService(),
		log,
	)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func TestBuilderRunsAreIsolated(t *testing.T) {
	b := testBuilder(t)

	depsA, _, _, err := b.newRun()
	if err != nil {
		t.Fatalf("first run setup: %v", err)
	}
	depsB, _, _, err := b.newRun()
	if err != nil {
		t.Fatalf("second run setup: %v", err)
	}
	if depsA == depsB {
		t.Fatal("runs must not share tool state")
	}

	depsA.Reset("350", "5511911112222", nil, ReportedConsumption{})
	depsB.Reset("350", "5511933334444", nil, ReportedConsumption{})
	depsA.addAmbiguity("qual deles?")

	ambiguities, _, _, _ := depsB.Outcome()
	if len(ambiguities) != 0 {
		t.Fatalf("ambiguity bled across runs: %v", ambiguities)
	}
	ambiguities, _, _, _ = depsA.Outcome()
	if len(ambiguities) != 1 {
		t.Fatalf("expected the ambiguity on its own run, got %v", ambiguities)
	}
}
