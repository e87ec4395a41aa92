package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wipertech/storefront/internal/cache"
	"wipertech/storefront/internal/config"
	"wipertech/storefront/internal/domain"
	"wipertech/storefront/internal/envelope"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// Envelope keys used by the commerce API for each entity.
const (
	keyMakes    = "vehicleMakes"
	keyModels   = "vehicleModels"
	keySeries   = "vehicleSeries"
	keyBodies   = "vehicleBodies"
	keyVehicles = "vehicles"
	keyVehicle  = "vehicle"
	keyKits     = "wiperKits"
)

// errNotFound marks a 404 from the API. Lookups turn it into "no entity".
var errNotFound = errors.New("not found")

// CommerceClient talks to the remote commerce API. Every method returns
// transport, status and decoding failures as errors; callers decide how
// to degrade.
type CommerceClient interface {
	ListMakes(ctx context.Context, page domain.Page) (envelope.List[domain.Make], error)
	ListModels(ctx context.Context, makeID string, page domain.Page) (envelope.List[domain.Model], error)
	ListSeries(ctx context.Context, modelID string, page domain.Page) (envelope.List[domain.Series], error)
	ListBodies(ctx context.Context, modelID string, page domain.Page) (envelope.List[domain.Body], error)
	FindVehicle(ctx context.Context, query domain.VehicleQuery) (*domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	FindWiperKits(ctx context.Context, vehicleID string) (envelope.List[domain.WiperKit], error)
}

type commerceClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	cache      cache.ResponseCache
	listTTL    time.Duration
	lookupTTL  time.Duration
}

// NewCommerceClient builds a client for cfg. responseCache may be nil.
func NewCommerceClient(cfg config.CommerceConfig, cacheCfg config.CacheConfig, responseCache cache.ResponseCache) CommerceClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	if cfg.PublishableKey != "" {
		client.SetHeader("x-publishable-api-key", cfg.PublishableKey)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &commerceClient{
		rl:         rl,
		httpClient: client,
		cache:      responseCache,
		listTTL:    time.Duration(cacheCfg.ListTTL) * time.Second,
		lookupTTL:  time.Duration(cacheCfg.LookupTTL) * time.Second,
	}
}

func pageParams(page domain.Page) map[string]string {
	return map[string]string{
		"limit":  strconv.Itoa(page.Limit),
		"offset": strconv.Itoa(page.Offset()),
	}
}

func (c *commerceClient) ListMakes(ctx context.Context, page domain.Page) (envelope.List[domain.Make], error) {
	return fetchList[domain.Make](ctx, c, "/store/vehicles/makes", pageParams(page), keyMakes, c.listTTL)
}

func (c *commerceClient) ListModels(ctx context.Context, makeID string, page domain.Page) (envelope.List[domain.Model], error) {
	params := pageParams(page)
	params["make_id"] = makeID
	return fetchList[domain.Model](ctx, c, "/store/vehicles/models", params, keyModels, c.listTTL)
}

func (c *commerceClient) ListSeries(ctx context.Context, modelID string, page domain.Page) (envelope.List[domain.Series], error) {
	params := pageParams(page)
	params["model_id"] = modelID
	return fetchList[domain.Series](ctx, c, "/store/vehicles/series", params, keySeries, c.listTTL)
}

func (c *commerceClient) ListBodies(ctx context.Context, modelID string, page domain.Page) (envelope.List[domain.Body], error) {
	params := pageParams(page)
	params["model_id"] = modelID
	return fetchList[domain.Body](ctx, c, "/store/vehicles/bodies", params, keyBodies, c.listTTL)
}

// FindVehicle returns the first vehicle matching query, or nil.
func (c *commerceClient) FindVehicle(ctx context.Context, query domain.VehicleQuery) (*domain.Vehicle, error) {
	list, err := fetchList[domain.Vehicle](ctx, c, "/store/vehicles", query.Params(), keyVehicles, c.lookupTTL)
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	if len(list.Items) > 1 {
		log.Debugf("Vehicle lookup %+v matched %d vehicles, using the first", query, len(list.Items))
	}
	vehicle := list.Items[0]
	return &vehicle, nil
}

func (c *commerceClient) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var (
		vehicle *domain.Vehicle
		shape   envelope.Shape
	)
	err := c.fetchJSON(ctx, "/store/vehicles/"+url.PathEscape(id), nil, c.lookupTTL, func(body []byte) error {
		var err error
		vehicle, shape, err = envelope.DecodeOne[domain.Vehicle](body, keyVehicle)
		return err
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch vehicle %s: %w", id, err)
	}
	if vehicle == nil {
		log.Debugf("No vehicle data found in response for %s", id)
		return nil, nil
	}

	log.Debugf("Decoded vehicle %s from %s envelope", id, shape)
	return vehicle, nil
}

func (c *commerceClient) FindWiperKits(ctx context.Context, vehicleID string) (envelope.List[domain.WiperKit], error) {
	list, err := fetchList[domain.WiperKit](ctx, c, "/store/wipers/kits", map[string]string{"vehicle_id": vehicleID}, keyKits, c.lookupTTL)
	if err != nil {
		return list, err
	}
	for i := range list.Items {
		list.Items[i].Description = plainText(list.Items[i].Description)
	}
	return list, nil
}

func fetchList[T any](ctx context.Context, c *commerceClient, path string, params map[string]string, key string, ttl time.Duration) (envelope.List[T], error) {
	var list envelope.List[T]
	err := c.fetchJSON(ctx, path, params, ttl, func(body []byte) error {
		var err error
		list, err = envelope.DecodeList[T](body, key)
		return err
	})
	if err != nil {
		return envelope.List[T]{Items: []T{}}, fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	if list.Shape == envelope.ShapeUnknown {
		log.Warnf("Unrecognized response shape from %s, treating as empty", path)
	} else {
		log.Debugf("Decoded %d %s (count %d) from %s envelope", len(list.Items), key, list.Count, list.Shape)
	}
	return list, nil
}

// fetchJSON hands the response body to decode. A body is cached only after
// decode accepts it; a cached body that no longer decodes is refetched.
func (c *commerceClient) fetchJSON(ctx context.Context, path string, params map[string]string, ttl time.Duration, decode func([]byte) error) error {
	key := cacheKey(path, params)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warnf("Response cache read failed for %s: %v", key, err)
		case ok:
			if err := decode(body); err == nil {
				log.Debugf("Response cache hit for %s", key)
				return nil
			}
			log.Warnf("Discarding undecodable cached response for %s: %v", key, err)
		}
	}

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return errNotFound
	}

	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	body := []byte(resp.String())
	if err := decode(body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, ttl); err != nil {
			log.Warnf("Response cache write failed for %s: %v", key, err)
		}
	}

	return nil
}

// cacheKey is path plus the encoded query, which url.Values sorts by key.
func cacheKey(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}
