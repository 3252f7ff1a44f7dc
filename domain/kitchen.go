package domain

// PrepStation is a kitchen routing target configured per restaurant.
type PrepStation struct {
	GUID   string `json:"guid"`
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// KitchenConfig bundles the kitchen configuration documents the
// gateway exposes to clients.
type KitchenConfig struct {
	PrepStations []PrepStation `json:"prepStations"`
}
