package sri

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mvinueza/contaec/internal/domain"
	"github.com/mvinueza/contaec/pkg/security"
	pkgsri "github.com/mvinueza/contaec/pkg/sri"
)

const (
	lookupBaseURL = "https://srienlinea.sri.gob.ec/sri-catastro-sujeto-servicio-internet/rest/ConsolidadoContribuyente/obtenerPorNumerosRuc"

	// La consulta pública del SRI es cortés pero lenta: cache de un día y
	// máximo 5 consultas por minuto hacia afuera.
	lookupCacheTTL      = 24 * time.Hour
	lookupRatePerMinute = 5
	lookupTimeout       = 10 * time.Second

	lookupRateKey = "sri-lookup"
)

// ContribuyenteData datos públicos de un contribuyente según el catastro del SRI.
type ContribuyenteData struct {
	RUC          string
	RazonSocial  string
	Estado       string // ACTIVO, SUSPENDIDO, etc.
	Direccion    string
	Obligaciones []string
}

// LookupService consulta el catastro público de contribuyentes del SRI.
// Es un colaborador best-effort: el caller decide qué hacer si falla
// (típicamente continuar sin el dato enriquecido).
type LookupService struct {
	client *retryablehttp.Client
	cache  *gocache.Cache
	guard  *security.Guard
}

// NewLookupService construye el servicio con reintentos acotados y cache de 24 h.
func NewLookupService(guard *security.Guard) *LookupService {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = lookupTimeout
	client.Logger = nil

	return &LookupService{
		client: client,
		cache:  gocache.New(lookupCacheTTL, 2*lookupCacheTTL),
		guard:  guard,
	}
}

// contribuyenteJSON forma del elemento que devuelve el catastro del SRI.
type contribuyenteJSON struct {
	NumeroRuc           string `json:"numeroRuc"`
	RazonSocial         string `json:"razonSocial"`
	EstadoContribuyente string `json:"estadoContribuyenteRuc"`
	DireccionCorta      string `json:"direccionCorta"`
	Obligaciones        []struct {
		Descripcion string `json:"descripcion"`
	} `json:"obligaciones"`
}

// Lookup consulta los datos públicos de un RUC. Respuestas previas se sirven
// del cache; superado el límite de consultas por minuto retorna
// domain.ErrRateLimited sin tocar la red.
func (s *LookupService) Lookup(ctx context.Context, ruc string) (*ContribuyenteData, error) {
	if !pkgsri.ValidateRUC(ruc) {
		return nil, fmt.Errorf("%w: RUC %q", domain.ErrInvalidTaxID, ruc)
	}
	if cached, ok := s.cache.Get(ruc); ok {
		return cached.(*ContribuyenteData), nil
	}
	if !s.guard.CheckRateLimit(lookupRateKey, lookupRatePerMinute, time.Minute).Allowed {
		return nil, domain.ErrRateLimited
	}

	reqURL := lookupBaseURL + "?" + url.Values{"ruc": {ruc}}.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sri: crear request de catastro: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sri: consulta de catastro fallida: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sri: catastro respondió HTTP %d", resp.StatusCode)
	}
	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("sri: leer respuesta de catastro: %w", err)
	}

	var items []contribuyenteJSON
	if err := json.Unmarshal(rawBody, &items); err != nil {
		return nil, fmt.Errorf("sri: respuesta de catastro no es JSON válido: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: RUC %s no figura en el catastro", domain.ErrNotFound, ruc)
	}

	item := items[0]
	data := &ContribuyenteData{
		RUC:         ruc,
		RazonSocial: item.RazonSocial,
		Estado:      item.EstadoContribuyente,
		Direccion:   item.DireccionCorta,
	}
	for _, o := range item.Obligaciones {
		data.Obligaciones = append(data.Obligaciones, o.Descripcion)
	}
	s.cache.Set(ruc, data, lookupCacheTTL)
	return data, nil
}
