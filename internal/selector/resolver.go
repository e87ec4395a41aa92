// Package selector implements the cascading vehicle selector: a dependent
// chain Make → Model → Series → Body that resolves to a single vehicle.
//
// Option lists are fetched asynchronously. Every fetch is tagged with the
// generation of the selection level that issued it and its result is
// applied only if that generation is still current, so the state always
// reflects the last selection made and never the last response received.
package selector

import (
	"context"
	"errors"
	"sync"

	"wipertech/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoMake          = errors.New("no make selected")
	ErrNoModel         = errors.New("no model selected")
	ErrOptionsLoading  = errors.New("options are still loading")
	ErrUnknownOption   = errors.New("not one of the offered options")
	ErrBodyUnavailable = errors.New("model has no body options")
	ErrClosed          = errors.New("selector is closed")
)

// Catalog is the data the selector needs. Implementations report failures
// as empty listings or a nil vehicle.
type Catalog interface {
	ListModels(ctx context.Context, makeID string, pageParam int) domain.Listing[domain.Model]
	ListSeries(ctx context.Context, modelID string, pageParam int) domain.Listing[domain.Series]
	ListBodies(ctx context.Context, modelID string, pageParam int) domain.Listing[domain.Body]
	FindVehicle(ctx context.Context, query domain.VehicleQuery) *domain.Vehicle
}

type Resolver struct {
	catalog Catalog
	ctx     context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	state State

	// One generation per level. Selecting at a level bumps its own
	// generation and every deeper one.
	makeGen    uint64
	modelGen   uint64
	vehicleGen uint64

	pending int
	idle    chan struct{} // closed while pending == 0
	closed  bool
}

// NewResolver starts a selector offering makes. Fetches run on a context
// derived from ctx; they are not tied to any single caller.
func NewResolver(ctx context.Context, catalog Catalog, makes domain.Listing[domain.Make]) *Resolver {
	ctx, cancel := context.WithCancel(ctx)

	idle := make(chan struct{})
	close(idle)

	return &Resolver{
		catalog: catalog,
		ctx:     ctx,
		cancel:  cancel,
		idle:    idle,
		state: State{
			Makes:         optionsFrom(makes),
			Models:        emptyOptions[domain.Model](),
			Series:        emptyOptions[domain.Series](),
			Bodies:        emptyOptions[domain.Body](),
			VehicleStatus: VehicleIdle,
		},
	}
}

func (r *Resolver) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resolver) snapshotLocked() State {
	s := r.state
	if s.Vehicle != nil {
		v := *s.Vehicle
		s.Vehicle = &v
	}
	return s
}

// SelectMake clears the model, series and body selections with their
// options and any resolved vehicle, then loads the make's models. An empty
// id clears the make as well.
func (r *Resolver) SelectMake(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if id != "" && !contains(r.state.Makes.Items, id, func(m domain.Make) string { return m.ID }) {
		return ErrUnknownOption
	}

	r.makeGen++
	r.modelGen++
	r.vehicleGen++

	s := &r.state
	s.MakeID = id
	s.ModelID, s.SeriesID, s.BodyID = "", "", ""
	s.Models = emptyOptions[domain.Model]()
	s.Series = emptyOptions[domain.Series]()
	s.Bodies = emptyOptions[domain.Body]()
	s.Vehicle = nil
	s.VehicleStatus = VehicleIdle

	if id != "" {
		s.Models = loadingOptions[domain.Model]()
		gen := r.makeGen
		r.launch(func(ctx context.Context) {
			models := r.catalog.ListModels(ctx, id, 1)
			r.apply("models for make "+id, func() bool { return r.makeGen == gen }, func(s *State) {
				s.Models = optionsFrom(models)
			})
		})
	}

	r.touchLocked()
	return nil
}

// SelectModel clears the series and body selections with their options
// and any resolved vehicle, then loads series and bodies independently.
func (r *Resolver) SelectModel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	s := &r.state
	if s.MakeID == "" {
		return ErrNoMake
	}
	if id != "" {
		if s.Models.Loading {
			return ErrOptionsLoading
		}
		if !contains(s.Models.Items, id, func(m domain.Model) string { return m.ID }) {
			return ErrUnknownOption
		}
	}

	r.modelGen++
	r.vehicleGen++

	s.ModelID = id
	s.SeriesID, s.BodyID = "", ""
	s.Series = emptyOptions[domain.Series]()
	s.Bodies = emptyOptions[domain.Body]()
	s.Vehicle = nil
	s.VehicleStatus = VehicleIdle

	if id != "" {
		s.Series = loadingOptions[domain.Series]()
		s.Bodies = loadingOptions[domain.Body]()
		gen := r.modelGen
		current := func() bool { return r.modelGen == gen }

		r.launch(func(ctx context.Context) {
			series := r.catalog.ListSeries(ctx, id, 1)
			r.apply("series for model "+id, current, func(s *State) {
				s.Series = optionsFrom(series)
			})
		})
		r.launch(func(ctx context.Context) {
			bodies := r.catalog.ListBodies(ctx, id, 1)
			r.apply("bodies for model "+id, current, func(s *State) {
				s.Bodies = optionsFrom(bodies)
				// The body dimension is now known; completion may have changed.
				r.resolveLocked()
			})
		})
	}

	r.touchLocked()
	return nil
}

// SelectSeries picks the year range and resolves the vehicle once the
// selection is complete.
func (r *Resolver) SelectSeries(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	s := &r.state
	if s.ModelID == "" {
		return ErrNoModel
	}
	if id != "" {
		if s.Series.Loading {
			return ErrOptionsLoading
		}
		if !contains(s.Series.Items, id, func(m domain.Series) string { return m.ID }) {
			return ErrUnknownOption
		}
	}

	s.SeriesID = id
	r.resolveLocked()
	r.touchLocked()
	return nil
}

// SelectBody is only possible when the model offers at least one body.
func (r *Resolver) SelectBody(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	s := &r.state
	if s.ModelID == "" {
		return ErrNoModel
	}
	if s.Bodies.Loading {
		return ErrOptionsLoading
	}
	if id != "" {
		if !s.BodyRequired() {
			return ErrBodyUnavailable
		}
		if !contains(s.Bodies.Items, id, func(m domain.Body) string { return m.ID }) {
			return ErrUnknownOption
		}
	}

	s.BodyID = id
	r.resolveLocked()
	r.touchLocked()
	return nil
}

// resolveLocked drops any resolved or in-flight vehicle and, when the
// selection is complete, starts a new lookup.
func (r *Resolver) resolveLocked() {
	r.vehicleGen++
	s := &r.state
	s.Vehicle = nil
	s.VehicleStatus = VehicleIdle

	if !s.SelectionComplete() {
		return
	}

	query := domain.VehicleQuery{
		MakeID:   s.MakeID,
		ModelID:  s.ModelID,
		SeriesID: s.SeriesID,
		BodyID:   s.BodyID,
	}
	s.VehicleStatus = VehicleLoading
	gen := r.vehicleGen

	r.launch(func(ctx context.Context) {
		vehicle := r.catalog.FindVehicle(ctx, query)
		r.apply("vehicle lookup", func() bool { return r.vehicleGen == gen }, func(s *State) {
			s.Vehicle = vehicle
			if vehicle != nil {
				s.VehicleStatus = VehicleFound
			} else {
				s.VehicleStatus = VehicleNotFound
			}
		})
	})
}

// launch runs fetch in the background. Callers hold r.mu.
func (r *Resolver) launch(fetch func(ctx context.Context)) {
	if r.pending == 0 {
		r.idle = make(chan struct{})
	}
	r.pending++

	go func() {
		defer r.finish()
		fetch(r.ctx)
	}()
}

func (r *Resolver) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending--
	if r.pending == 0 {
		close(r.idle)
	}
}

// apply writes a fetch result unless its selection has been superseded.
func (r *Resolver) apply(what string, current func() bool, update func(s *State)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if !current() {
		log.Debugf("Dropping stale %s", what)
		return
	}

	update(&r.state)
	r.touchLocked()
}

func (r *Resolver) touchLocked() {
	r.state.Version++
}

// Wait blocks until no fetch is in flight or ctx is done.
func (r *Resolver) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.pending == 0 {
			r.mu.Unlock()
			return nil
		}
		idle := r.idle
		r.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting selections. Fetches still in flight are cancelled
// and their results discarded.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
}
