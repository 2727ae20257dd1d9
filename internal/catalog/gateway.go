package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/phone"
)

// Gateway is the read/write surface the pipeline needs from Agriwin.
type Gateway interface {
	Products(ctx context.Context, growerID string) ([]Product, error)
	ProductsInStock(ctx context.Context, growerID string, names []string) ([]Product, error)
	RecentlyConsumedProducts(ctx context.Context, growerID string, names []string) ([]Product, error)
	Plantings(ctx context.Context, growerID string) ([]Planting, error)
	Properties(ctx context.Context, growerID string) ([]Property, error)
	Machines(ctx context.Context, growerID string) ([]Machine, error)
	StockPoints(ctx context.Context, growerID string) ([]StockPoint, error)
	Harvests(ctx context.Context, growerID string) ([]Harvest, error)
	ResponsibleByPhone(ctx context.Context, growerID, phone string) (*Responsible, error)
	SaveConsumption(ctx context.Context, req SaveConsumptionRequest) (int, string, error)
}

// HTTPGateway implements Gateway over the Agriwin HTTP API.
type HTTPGateway struct {
	client *Client
	log    *logger.Logger
}

// NewHTTPGateway creates the Agriwin-backed gateway.
func NewHTTPGateway(client *Client, log *logger.Logger) *HTTPGateway {
	return &HTTPGateway{client: client, log: log}
}

func growerParams(growerID string) url.Values {
	params := url.Values{}
	params.Set("identificador_produtor", growerID)
	return params
}

// fetchList GETs an endpoint and maps each entry, skipping entries the
// mapper rejects.
func fetchList[D any, T any](ctx context.Context, g *HTTPGateway, endpoint string, params url.Values, mapFn func(D) (T, error)) ([]T, error) {
	env, err := g.client.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var dtos []D
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &dtos); err != nil {
			// Some endpoints return a single object instead of a list.
			var single D
			if err2 := json.Unmarshal(env.Data, &single); err2 != nil {
				return nil, err
			}
			dtos = []D{single}
		}
	}

	out := make([]T, 0, len(dtos))
	for _, dto := range dtos {
		item, err := mapFn(dto)
		if err != nil {
			g.log.Warn("catalog entry skipped", "endpoint", endpoint, "error", err.Error())
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func noErr[D any, T any](fn func(D) T) func(D) (T, error) {
	return func(d D) (T, error) { return fn(d), nil }
}

func (g *HTTPGateway) Products(ctx context.Context, growerID string) ([]Product, error) {
	return fetchList(ctx, g, "/api/v1/produtos", growerParams(growerID), noErr(toProduct))
}

func (g *HTTPGateway) ProductsInStock(ctx context.Context, growerID string, names []string) ([]Product, error) {
	params := growerParams(growerID)
	params.Set("produtos", strings.Join(names, ","))
	return fetchList(ctx, g, "/api/v1/produtos/estoque", params, noErr(toProduct))
}

func (g *HTTPGateway) RecentlyConsumedProducts(ctx context.Context, growerID string, names []string) ([]Product, error) {
	params := growerParams(growerID)
	params.Set("produtos", strings.Join(names, ","))
	return fetchList(ctx, g, "/api/v1/produtos/consumos-recentes", params, noErr(toProduct))
}

func (g *HTTPGateway) Plantings(ctx context.Context, growerID string) ([]Planting, error) {
	return fetchList(ctx, g, "/api/v1/plantios", growerParams(growerID), noErr(toPlanting))
}

func (g *HTTPGateway) Properties(ctx context.Context, growerID string) ([]Property, error) {
	return fetchList(ctx, g, "/api/v1/propriedades", growerParams(growerID), noErr(toProperty))
}

func (g *HTTPGateway) Machines(ctx context.Context, growerID string) ([]Machine, error) {
	return fetchList(ctx, g, "/api/v1/imobilizados", growerParams(growerID), noErr(toMachine))
}

func (g *HTTPGateway) StockPoints(ctx context.Context, growerID string) ([]StockPoint, error) {
	return fetchList(ctx, g, "/api/v1/pontos-estoque", growerParams(growerID), noErr(toStockPoint))
}

func (g *HTTPGateway) Harvests(ctx context.Context, growerID string) ([]Harvest, error) {
	return fetchList(ctx, g, "/api/v1/safras", growerParams(growerID), toHarvest)
}

// ResponsibleByPhone lists the grower's people and matches the phone
// digit for digit; Agriwin stores numbers with punctuation. Returns nil
// when nobody matches.
func (g *HTTPGateway) ResponsibleByPhone(ctx context.Context, growerID, phoneNumber string) (*Responsible, error) {
	people, err := fetchList(ctx, g, "/api/v1/pessoas", growerParams(growerID), noErr(toResponsible))
	if err != nil {
		return nil, err
	}
	want := phone.Digits(phoneNumber)
	for _, p := range people {
		if p.Phone != "" && phone.Digits(p.Phone) == want {
			return &p, nil
		}
	}
	return nil, nil
}

// SaveConsumption posts the record and returns the HTTP status plus the
// backend's human-readable message.
func (g *HTTPGateway) SaveConsumption(ctx context.Context, req SaveConsumptionRequest) (int, string, error) {
	status, env, err := g.client.Post(ctx, "/api/v1/consumos", req)
	if err != nil {
		return 0, "", err
	}

	msg := env.Message
	if msg == "" {
		var fallback struct {
			Message string `json:"message"`
		}
		if env.Data != nil {
			_ = json.Unmarshal(env.Data, &fallback)
		}
		msg = fallback.Message
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		g.log.Warn("agriwin rejected consumption", "status", status, "message", msg)
	}
	return status, msg, nil
}

// Snapshot is the grower's reference data loaded once per resolution
// run.
type Snapshot struct {
	Products    []Product
	Plantings   []Planting
	Properties  []Property
	Machines    []Machine
	StockPoints []StockPoint
	Harvests    []Harvest
}

// LoadSnapshot fetches all reference lists concurrently.
func LoadSnapshot(ctx context.Context, g Gateway, growerID string) (*Snapshot, error) {
	snap := &Snapshot{}
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		var err error
		snap.Products, err = g.Products(ctx, growerID)
		return err
	})
	grp.Go(func() error {
		var err error
		snap.Plantings, err = g.Plantings(ctx, growerID)
		return err
	})
	grp.Go(func() error {
		var err error
		snap.Properties, err = g.Properties(ctx, growerID)
		return err
	})
	grp.Go(func() error {
		var err error
		snap.Machines, err = g.Machines(ctx, growerID)
		return err
	})
	grp.Go(func() error {
		var err error
		snap.StockPoints, err = g.StockPoints(ctx, growerID)
		return err
	})
	grp.Go(func() error {
		var err error
		snap.Harvests, err = g.Harvests(ctx, growerID)
		return err
	})

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
