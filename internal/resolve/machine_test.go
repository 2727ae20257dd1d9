package resolve

import (
	"testing"

	"consumo_wpp_backend/internal/catalog"
)

var machineList = []catalog.Machine{
	{ID: "1", Name: "Trator John Deere 6110", SerialNumber: "JD-6110-BR"},
	{ID: "2", Name: "Trator Massey Ferguson", SerialNumber: "MF-275"},
	{ID: "3", Name: "Pulverizador Jacto", SerialNumber: ""},
}

func TestMachineResolve_SerialNumberWinsOutright(t *testing.T) {
	svc := NewMachineService()

	got := svc.Resolve("jd-6110-br", machineList)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected machine 1 by serial, got %+v", got)
	}
}

func TestMachineResolve_NameFuzzyReturnsAllMatches(t *testing.T) {
	svc := NewMachineService()

	got := svc.Resolve("trator", machineList)
	if len(got) != 2 {
		t.Fatalf("expected both tractors, got %+v", got)
	}
}

func TestMachineResolve_NoMatch(t *testing.T) {
	svc := NewMachineService()

	if got := svc.Resolve("colheitadeira", machineList); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestMachineResolve_EmptyCatalog(t *testing.T) {
	svc := NewMachineService()
	if got := svc.Resolve("trator", nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestLandUnit_ResolvePlotReturnsPlantings(t *testing.T) {
	svc := NewLandUnitService()
	plantings := []catalog.Planting{
		{ID: "31", HarvestID: "9", PlotID: "4", PlotName: "T-04", PropertyName: "Santa Rita"},
		{ID: "18", HarvestID: "8", PlotID: "4", PlotName: "T-04", PropertyName: "Santa Rita"},
		{ID: "40", HarvestID: "9", PlotID: "7", PlotName: "Campo Novo", PropertyName: "Boa Vista"},
	}

	got := svc.ResolvePlot("t-04", plantings)
	if len(got) != 2 {
		t.Fatalf("expected both seasons of T-04, got %+v", got)
	}
}

func TestLandUnit_ResolveProperty(t *testing.T) {
	svc := NewLandUnitService()
	properties := []catalog.Property{
		{ID: "8", Name: "Fazenda Santa Rita"},
		{ID: "9", Name: "Sítio Boa Vista"},
	}

	got := svc.ResolveProperty("santa rita", properties)
	if len(got) != 1 || got[0].ID != "8" {
		t.Fatalf("expected property 8, got %+v", got)
	}
}
