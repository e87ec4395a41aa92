package selector

import "wipertech/storefront/internal/domain"

// Phase is the position of a selection in the Make → Model → Series →
// Body → Vehicle chain.
type Phase string

const (
	PhaseNoMake          Phase = "no_make"
	PhaseMakeSelected    Phase = "make_selected"
	PhaseModelSelected   Phase = "model_selected"
	PhaseSeriesSelected  Phase = "series_selected"
	PhaseVehicleResolved Phase = "vehicle_resolved"
)

type VehicleStatus string

const (
	VehicleIdle     VehicleStatus = "idle"
	VehicleLoading  VehicleStatus = "loading"
	VehicleFound    VehicleStatus = "found"
	VehicleNotFound VehicleStatus = "not_found"
)

// Options is one dropdown's option list.
type Options[T any] struct {
	Items   []T  `json:"items"`
	Count   int  `json:"count"`
	Loading bool `json:"loading"`
}

func optionsFrom[T any](listing domain.Listing[T]) Options[T] {
	items := listing.Items
	if items == nil {
		items = []T{}
	}
	return Options[T]{Items: items, Count: listing.Count}
}

func loadingOptions[T any]() Options[T] {
	return Options[T]{Items: []T{}, Loading: true}
}

func emptyOptions[T any]() Options[T] {
	return Options[T]{Items: []T{}}
}

// State is a snapshot of the selector. Version increases with every change.
type State struct {
	Version uint64 `json:"version"`

	MakeID   string `json:"makeId,omitempty"`
	ModelID  string `json:"modelId,omitempty"`
	SeriesID string `json:"seriesId,omitempty"`
	BodyID   string `json:"bodyId,omitempty"`

	Makes  Options[domain.Make]   `json:"makes"`
	Models Options[domain.Model]  `json:"models"`
	Series Options[domain.Series] `json:"series"`
	Bodies Options[domain.Body]   `json:"bodies"`

	Vehicle       *domain.Vehicle `json:"vehicle"`
	VehicleStatus VehicleStatus   `json:"vehicleStatus"`
}

// BodyRequired reports whether the chosen model has a body dimension.
func (s State) BodyRequired() bool {
	return len(s.Bodies.Items) > 0
}

// SelectionComplete is true once make, model and series are chosen, the
// body options have settled, and a body is chosen if the model has any.
func (s State) SelectionComplete() bool {
	if s.MakeID == "" || s.ModelID == "" || s.SeriesID == "" {
		return false
	}
	if s.Bodies.Loading {
		return false
	}
	return !s.BodyRequired() || s.BodyID != ""
}

func (s State) Phase() Phase {
	switch {
	case s.MakeID == "":
		return PhaseNoMake
	case s.ModelID == "":
		return PhaseMakeSelected
	case s.SeriesID == "":
		return PhaseModelSelected
	case s.VehicleStatus == VehicleFound:
		return PhaseVehicleResolved
	default:
		return PhaseSeriesSelected
	}
}

func (s State) Loading() bool {
	return s.Models.Loading || s.Series.Loading || s.Bodies.Loading || s.VehicleStatus == VehicleLoading
}

func (s State) SelectedMake() *domain.Make {
	return find(s.Makes.Items, s.MakeID, func(m domain.Make) string { return m.ID })
}

func (s State) SelectedModel() *domain.Model {
	return find(s.Models.Items, s.ModelID, func(m domain.Model) string { return m.ID })
}

func (s State) SelectedSeries() *domain.Series {
	return find(s.Series.Items, s.SeriesID, func(m domain.Series) string { return m.ID })
}

func (s State) SelectedBody() *domain.Body {
	return find(s.Bodies.Items, s.BodyID, func(m domain.Body) string { return m.ID })
}

func find[T any](items []T, id string, idOf func(T) string) *T {
	if id == "" {
		return nil
	}
	for i := range items {
		if idOf(items[i]) == id {
			return &items[i]
		}
	}
	return nil
}

func contains[T any](items []T, id string, idOf func(T) string) bool {
	return find(items, id, idOf) != nil
}
