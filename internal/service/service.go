package service

import (
	"context"
	"errors"
	"fmt"

	"wipertech/storefront/internal/client"
	"wipertech/storefront/internal/domain"
	"wipertech/storefront/internal/envelope"
	"wipertech/storefront/internal/fallback"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service is the storefront's view of the catalog. It never returns
// errors: a failed fetch is logged and degrades to an empty listing or a
// nil entity, so "could not determine" and "confirmed none" look the same
// to callers.
type Service struct {
	client       client.CommerceClient
	fallback     fallback.Provider
	fallbackMode fallback.Mode
	pageLimit    int
}

func NewService(
	client client.CommerceClient,
	provider fallback.Provider,
	mode fallback.Mode,
	pageLimit int,
) *Service {
	if provider == nil {
		mode = fallback.ModeOff
	}
	if pageLimit <= 0 {
		pageLimit = domain.DefaultPageLimit
	}
	return &Service{
		client:       client,
		fallback:     provider,
		fallbackMode: mode,
		pageLimit:    pageLimit,
	}
}

func (s *Service) page(pageParam int) domain.Page {
	return domain.NewPage(pageParam, s.pageLimit)
}

func (s *Service) ListMakes(ctx context.Context, pageParam int) domain.Listing[domain.Make] {
	page := s.page(pageParam)
	list, err := s.client.ListMakes(ctx, page)
	return toListing(ctx, list, err, page, "vehicle makes")
}

func (s *Service) ListModels(ctx context.Context, makeID string, pageParam int) domain.Listing[domain.Model] {
	page := s.page(pageParam)
	list, err := s.client.ListModels(ctx, makeID, page)
	return toListing(ctx, list, err, page, "vehicle models for make "+makeID)
}

func (s *Service) ListSeries(ctx context.Context, modelID string, pageParam int) domain.Listing[domain.Series] {
	page := s.page(pageParam)
	list, err := s.client.ListSeries(ctx, modelID, page)
	return toListing(ctx, list, err, page, "vehicle series for model "+modelID)
}

func (s *Service) ListBodies(ctx context.Context, modelID string, pageParam int) domain.Listing[domain.Body] {
	page := s.page(pageParam)
	list, err := s.client.ListBodies(ctx, modelID, page)
	return toListing(ctx, list, err, page, "vehicle bodies for model "+modelID)
}

// FindVehicle resolves a selection tuple to a vehicle, or nil.
func (s *Service) FindVehicle(ctx context.Context, query domain.VehicleQuery) *domain.Vehicle {
	vehicle, err := s.client.FindVehicle(ctx, query)
	if err != nil {
		logFetchError(ctx, fmt.Sprintf("vehicle for %+v", query), err)
		return nil
	}
	return vehicle
}

func (s *Service) GetVehicle(ctx context.Context, id string) *domain.Vehicle {
	if s.fallbackMode == fallback.ModeAlways {
		log.Debugf("Using sample vehicle data for %s", id)
		return s.fallback.Vehicle(id)
	}

	vehicle, err := s.client.GetVehicle(ctx, id)
	if err != nil {
		logFetchError(ctx, "vehicle "+id, err)
	}
	if vehicle == nil && s.fallbackMode == fallback.ModeOnFailure {
		log.Warnf("🔄 Falling back to sample vehicle data for %s", id)
		return s.fallback.Vehicle(id)
	}
	return vehicle
}

func (s *Service) FindWiperKits(ctx context.Context, vehicleID string) domain.Listing[domain.WiperKit] {
	if s.fallbackMode == fallback.ModeAlways {
		log.Debugf("Using sample wiper kits for %s", vehicleID)
		return sampleKits(s.fallback, vehicleID)
	}

	list, err := s.client.FindWiperKits(ctx, vehicleID)
	kits := domain.EmptyListing[domain.WiperKit]()
	if err != nil {
		logFetchError(ctx, "wiper kits for "+vehicleID, err)
	} else {
		kits = domain.Listing[domain.WiperKit]{Items: list.Items, Count: list.Count}
	}

	if kits.Empty() && s.fallbackMode == fallback.ModeOnFailure {
		log.Warnf("🔄 Falling back to sample wiper kits for %s", vehicleID)
		return sampleKits(s.fallback, vehicleID)
	}
	return kits
}

// VehicleDetail loads a vehicle and its compatible kits concurrently.
// It returns nil when the vehicle does not exist.
func (s *Service) VehicleDetail(ctx context.Context, id string) *domain.VehicleDetail {
	var (
		vehicle *domain.Vehicle
		kits    domain.Listing[domain.WiperKit]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vehicle = s.GetVehicle(gctx, id)
		return nil
	})
	g.Go(func() error {
		kits = s.FindWiperKits(gctx, id)
		return nil
	})
	_ = g.Wait()

	if vehicle == nil {
		log.Infof("Vehicle %s not found", id)
		return nil
	}

	return &domain.VehicleDetail{Vehicle: *vehicle, Kits: kits}
}

func sampleKits(provider fallback.Provider, vehicleID string) domain.Listing[domain.WiperKit] {
	kits := provider.WiperKits(vehicleID)
	return domain.Listing[domain.WiperKit]{Items: kits, Count: len(kits)}
}

func toListing[T any](ctx context.Context, list envelope.List[T], err error, page domain.Page, what string) domain.Listing[T] {
	if err != nil {
		logFetchError(ctx, what, err)
		return domain.EmptyListing[T]()
	}
	items := list.Items
	if items == nil {
		items = []T{}
	}
	return domain.Listing[T]{
		Items:    items,
		Count:    list.Count,
		NextPage: page.NextPage(list.Count),
	}
}

// logFetchError reports an upstream failure. Fetches abandoned by their
// caller (a closed selector, a timed out page) are only debug noise.
func logFetchError(ctx context.Context, what string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		log.Debugf("Fetch of %s abandoned: %v", what, err)
		return
	}
	log.Errorf("❌ Failed to fetch %s: %v", what, err)
}
