// Package fallback supplies sample catalog data that can stand in for the
// commerce API during development or demos.
package fallback

import (
	"fmt"

	"wipertech/storefront/internal/domain"
)

// Mode decides when the catalog consults a Provider.
type Mode string

const (
	ModeOff       Mode = "off"
	ModeOnFailure Mode = "on_failure" // API failed or returned nothing
	ModeAlways    Mode = "always"     // never call the API for these lookups
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeOff, ModeOnFailure, ModeAlways:
		return m, nil
	case "":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("unknown fallback mode %q", s)
	}
}

// Provider returns sample entities. Implementations must not do I/O.
type Provider interface {
	Vehicle(id string) *domain.Vehicle
	WiperKits(vehicleID string) []domain.WiperKit
}

// Sample is the built-in development data set.
type Sample struct{}

func (Sample) Vehicle(id string) *domain.Vehicle {
	return &domain.Vehicle{
		ID:       id,
		MakeID:   "make_01",
		ModelID:  "model_01",
		SeriesID: "series_01",
		BodyID:   "body_01",
		Title:    "2023 Example Vehicle",
		Price:    29999,
		Images:   []string{"https://placehold.co/800x600/333/white?text=Vehicle+Image"},
	}
}

func (Sample) WiperKits(vehicleID string) []domain.WiperKit {
	kits := []domain.WiperKit{
		{
			ID:            "wiper_kit_01",
			Title:         "Wipertech Front Wiper Blade Set",
			Description:   "Premium front wiper blades (left & right) custom-designed for your vehicle",
			Price:         39.99,
			Images:        []string{"https://placehold.co/800x600/333/white?text=Wipertech+Front+Set"},
			Compatibility: domain.Compatibility{FrontSet: true},
		},
		{
			ID:            "wiper_kit_02",
			Title:         "Wipertech Rear Wiper Blade",
			Description:   "Specialized rear wiper blade designed specifically for your vehicle's rear window",
			Price:         19.99,
			Images:        []string{"https://placehold.co/800x600/333/white?text=Wipertech+Rear+Blade"},
			Compatibility: domain.Compatibility{Rear: true},
		},
		{
			ID:            "wiper_kit_03",
			Title:         "Wipertech Complete Wiper Set",
			Description:   "Full set of front (left & right) and rear wiper blades for complete visibility",
			Price:         49.99,
			Images:        []string{"https://placehold.co/800x600/333/white?text=Wipertech+Complete+Set"},
			Compatibility: domain.Compatibility{FrontSet: true, Rear: true},
		},
	}
	for i := range kits {
		kits[i].VehicleIDs = []string{vehicleID}
	}
	return kits
}
