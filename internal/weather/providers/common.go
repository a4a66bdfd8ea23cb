package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-forecast-router/internal/common"
	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// ClientConfig bundles upstream endpoint and resilience settings.
type ClientConfig struct {
	BaseURL string
	APIKey  string

	// HTTPClient is shared by every request; nil uses a default client.
	HTTPClient *http.Client

	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the forecast provider. Decoded payloads are kept per
// coordinate and tier so that requests for different dates inside the same
// window share one upstream call.
type Client struct {
	rest     *resty.Client
	apiKey   string
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
	payloads *gocache.Cache
	log      logger.Logger
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithField("component", "provider_client")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	rest := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "weather-forecast-router/1.0")

	rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debugf("%s %s -> %d in %s (%d bytes)",
			resp.Request.Method, redactKey(resp.Request.URL, cfg.APIKey), resp.StatusCode(), resp.Time(), len(resp.Body()))
		return nil
	})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		rest:    rest,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(limit, burst),
		breakers: map[string]*gobreaker.CircuitBreaker{
			weather.TierHourly: newBreaker(weather.TierHourly),
			weather.TierDaily:  newBreaker(weather.TierDaily),
		},
		payloads: gocache.New(30*time.Minute, 10*time.Minute),
		log:      log,
	}
}

func newBreaker(tier string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "provider-" + tier,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// FlushPayloads drops every cached upstream payload.
func (c *Client) FlushPayloads() {
	c.payloads.Flush()
}

// envelope is the provider response shared by both endpoints.
type envelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	TZShift *int   `json:"tzshift"`
	Result  struct {
		Hourly *hourlyBlock `json:"hourly"`
		Daily  *dailyBlock  `json:"daily"`
	} `json:"result"`
}

// zone is the provider's local zone, or fallback without a tzshift.
func (e *envelope) zone(fallback *time.Location) *time.Location {
	if e.TZShift == nil {
		return fallback
	}
	shift := *e.TZShift
	sign := "+"
	if shift < 0 {
		sign = "-"
	}
	a := abs(shift)
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, a/3600, (a%3600)/60), shift)
}

// fetch performs GET {base}/{key}/{lng},{lat}/weather for tier.
func (c *Client) fetch(ctx context.Context, tier string, loc weather.LocationInfo, query map[string]string, ttl time.Duration) (*envelope, error) {
	op := tier + " request"
	payloadKey := fmt.Sprintf("%s:%.4f,%.4f", tier, loc.Longitude, loc.Latitude)

	if v, ok := c.payloads.Get(payloadKey); ok {
		c.log.Debugf("payload cache hit for %s", payloadKey)
		return v.(*envelope), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransport(ctx, op, err)
	}

	path := fmt.Sprintf("/%s/%.4f,%.4f/weather", url.PathEscape(c.apiKey), loc.Longitude, loc.Latitude)

	result, err := c.breakers[tier].Execute(func() (interface{}, error) {
		resp, execErr := c.rest.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(path)
		if execErr != nil {
			return nil, classifyTransport(ctx, op, execErr)
		}

		// Rate limiting and server errors count against the breaker.
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, &weather.Error{Kind: weather.KindAPIQuotaExceeded, Op: op, Msg: resp.Status()}
		}
		if resp.StatusCode() >= 500 {
			return nil, &weather.Error{Kind: weather.KindUpstream, Op: op, Msg: resp.Status(), Temporary: true}
		}
		return resp, nil
	})
	if err != nil {
		// If circuit is open, fail fast; retrying cannot help until it closes.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.Error{Kind: weather.KindUpstream, Op: op, Msg: "circuit breaker open", Err: err}
		}
		return nil, err
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", op)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return nil, &weather.Error{Kind: weather.KindLocationNotFound, Op: op,
			Msg: fmt.Sprintf("provider rejected %.4f,%.4f: %s", loc.Longitude, loc.Latitude, resp.Status())}
	case code < 200 || code >= 300:
		return nil, &weather.Error{Kind: weather.KindUpstream, Op: op, Msg: resp.Status()}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &weather.Error{Kind: weather.KindDataParse, Op: op, Msg: "failed to decode response", Err: err}
	}
	if err := statusError(op, &env); err != nil {
		return nil, err
	}

	c.payloads.Set(payloadKey, &env, ttl)
	return &env, nil
}

// statusError maps a non-ok provider status to an error kind.
func statusError(op string, env *envelope) error {
	if env.Status == "ok" {
		return nil
	}
	switch msg := env.Error; {
	case common.HasAny(msg, "location", "coordinate", "position"):
		return &weather.Error{Kind: weather.KindLocationNotFound, Op: op, Msg: env.Error}
	case common.HasAny(msg, "quota", "limit", "exceed", "too many"):
		return &weather.Error{Kind: weather.KindAPIQuotaExceeded, Op: op, Msg: env.Error}
	default:
		return &weather.Error{Kind: weather.KindDataParse, Op: op,
			Msg: fmt.Sprintf("status %q: %s", env.Status, env.Error)}
	}
}

// classifyTransport turns transport failures into error kinds. Cancellation
// by the caller is returned untouched.
func classifyTransport(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &weather.Error{Kind: weather.KindNetworkTimeout, Op: op, Err: err}
	}
	return &weather.Error{Kind: weather.KindUpstream, Op: op, Temporary: true, Err: err}
}

func redactKey(u, key string) string {
	if key == "" {
		return u
	}
	return strings.ReplaceAll(u, url.PathEscape(key), "***")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
