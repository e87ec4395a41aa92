package domain

type Compatibility struct {
	FrontSet bool `json:"frontSet"` // left and right front wipers
	Rear     bool `json:"rear"`
}

type WiperKit struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Price         float64       `json:"price"`
	Images        []string      `json:"images,omitempty"`
	VehicleIDs    []string      `json:"vehicle_ids,omitempty"`
	Compatibility Compatibility `json:"compatibility"`
}

func (k WiperKit) PrimaryImage() string {
	if len(k.Images) == 0 {
		return ""
	}
	return k.Images[0]
}
