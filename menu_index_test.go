package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

func indexedCatalog() *domain.MenuDocument {
	return &domain.MenuDocument{
		Menus: []domain.Menu{
			{
				GUID: "menu-1",
				Name: "Food",
				Groups: []domain.MenuGroup{
					{
						GUID: "group-1",
						Items: []domain.MenuItem{
							{GUID: "g1", Name: "Margherita", MultiLocationID: "m1", ReferenceID: 42},
						},
						Groups: []domain.MenuGroup{
							{
								GUID: "group-1a",
								Items: []domain.MenuItem{
									{GUID: "g2", Name: "Calzone", ReferenceID: "42"},
								},
							},
						},
					},
				},
			},
		},
		ModifierOptionReferences: map[string]domain.ModifierOption{
			"100": {GUID: "opt-1", Name: "Extra Cheese", MultiLocationID: "opt-m1"},
		},
	}
}

func TestFindItemByEachScheme(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	item, ok := idx.FindItem(domain.ItemRef{GUID: "g1"})
	require.True(t, ok)
	assert.Equal(t, "Margherita", item.Name)

	item, ok = idx.FindItem(domain.ItemRef{MultiLocationID: "m1"})
	require.True(t, ok)
	assert.Equal(t, "Margherita", item.Name)

	item, ok = idx.FindItem(domain.ItemRef{ReferenceID: 42})
	require.True(t, ok)
	assert.Equal(t, "Margherita", item.Name)
}

func TestFindItemGuidDoesNotFallThrough(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	// A present-but-unmatched guid decides the lookup; the matching
	// multi-location id is never consulted.
	_, ok := idx.FindItem(domain.ItemRef{GUID: "wrong", MultiLocationID: "m1"})
	assert.False(t, ok)
}

func TestFindItemReferenceIDTypesDistinct(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	item, ok := idx.FindItem(domain.ItemRef{ReferenceID: float64(42)})
	require.True(t, ok)
	assert.Equal(t, "Margherita", item.Name, "numeric 42 resolves the numeric key")

	item, ok = idx.FindItem(domain.ItemRef{ReferenceID: "42"})
	require.True(t, ok)
	assert.Equal(t, "Calzone", item.Name, "string \"42\" resolves the string key")
}

func TestFindItemNestedGroups(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	item, ok := idx.FindItem(domain.ItemRef{GUID: "g2"})
	require.True(t, ok)
	assert.Equal(t, "Calzone", item.Name)
}

func TestFindModifier(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	opt, ok := idx.FindModifier(domain.ItemRef{GUID: "opt-1"})
	require.True(t, ok)
	assert.Equal(t, "Extra Cheese", opt.Name)

	opt, ok = idx.FindModifier(domain.ItemRef{MultiLocationID: "opt-m1"})
	require.True(t, ok)
	assert.Equal(t, "Extra Cheese", opt.Name)
}

func TestNilDocumentYieldsEmptyIndex(t *testing.T) {
	idx := BuildMenuIndex(nil)

	_, ok := idx.FindItem(domain.ItemRef{GUID: "g1"})
	assert.False(t, ok)
	_, ok = idx.FindModifier(domain.ItemRef{GUID: "opt-1"})
	assert.False(t, ok)
}

func TestEmptyReferenceNeverResolves(t *testing.T) {
	idx := BuildMenuIndex(indexedCatalog())

	_, ok := idx.FindItem(domain.ItemRef{})
	assert.False(t, ok)
}
