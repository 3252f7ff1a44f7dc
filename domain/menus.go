package domain

// MenuDocument is the vendor's published menu catalog: a tree of menus,
// recursively nested groups, and items, plus flat reference tables for
// modifier groups and options. Immutable once received.
type MenuDocument struct {
	RestaurantGUID           string                    `json:"restaurantGuid,omitempty"`
	LastUpdated              string                    `json:"lastUpdated,omitempty"`
	Menus                    []Menu                    `json:"menus"`
	ModifierGroupReferences  map[string]ModifierGroup  `json:"modifierGroupReferences,omitempty"`
	ModifierOptionReferences map[string]ModifierOption `json:"modifierOptionReferences,omitempty"`
}

// Menu is a top-level menu (e.g. "Food", "Drinks").
type Menu struct {
	GUID            string      `json:"guid,omitempty"`
	Name            string      `json:"name,omitempty"`
	MultiLocationID string      `json:"multiLocationId,omitempty"`
	Groups          []MenuGroup `json:"menuGroups,omitempty"`
}

// MenuGroup is a grouping of items; groups nest arbitrarily deep.
type MenuGroup struct {
	GUID            string      `json:"guid,omitempty"`
	Name            string      `json:"name,omitempty"`
	MultiLocationID string      `json:"multiLocationId,omitempty"`
	Items           []MenuItem  `json:"menuItems,omitempty"`
	Groups          []MenuGroup `json:"menuGroups,omitempty"`
}

// MenuItem is a sellable catalog entry. ReferenceID keeps its decoded
// JSON type: the vendor sends it as either a number or a string and the
// two must not be conflated during lookup.
type MenuItem struct {
	GUID            string   `json:"guid,omitempty"`
	Name            string   `json:"name,omitempty"`
	MultiLocationID string   `json:"multiLocationId,omitempty"`
	ReferenceID     any      `json:"referenceId,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	PLU             string   `json:"plu,omitempty"`
	SKU             string   `json:"sku,omitempty"`
}

// ModifierGroup is a flat-table entry grouping modifier options.
type ModifierGroup struct {
	GUID            string `json:"guid,omitempty"`
	Name            string `json:"name,omitempty"`
	MultiLocationID string `json:"multiLocationId,omitempty"`
	ReferenceID     any    `json:"referenceId,omitempty"`
	MinSelections   *int   `json:"minSelections,omitempty"`
	MaxSelections   *int   `json:"maxSelections,omitempty"`
}

// ModifierOption is a flat-table entry for a single modifier choice.
type ModifierOption struct {
	GUID            string   `json:"guid,omitempty"`
	Name            string   `json:"name,omitempty"`
	MultiLocationID string   `json:"multiLocationId,omitempty"`
	ReferenceID     any      `json:"referenceId,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// MenuMetadata is the cheap endpoint used to detect catalog changes
// without pulling the full document.
type MenuMetadata struct {
	RestaurantGUID string `json:"restaurantGuid,omitempty"`
	LastUpdated    string `json:"lastUpdated"`
}
