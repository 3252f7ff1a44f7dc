package gateway

import (
	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

// refIndex maps each of the vendor's three identifier schemes onto a
// catalog node. Reference ids keep their original JSON type: a numeric
// 42 and the string "42" are distinct keys.
type refIndex[T any] struct {
	byGUID          map[string]T
	byMultiLocation map[string]T
	byReference     map[string]T
}

func newRefIndex[T any]() refIndex[T] {
	return refIndex[T]{
		byGUID:          make(map[string]T),
		byMultiLocation: make(map[string]T),
		byReference:     make(map[string]T),
	}
}

func (ix refIndex[T]) add(guid, multiLocationID string, referenceID any, v T) {
	if guid != "" {
		ix.byGUID[guid] = v
	}
	if multiLocationID != "" {
		ix.byMultiLocation[multiLocationID] = v
	}
	if key, ok := referenceKey(referenceID); ok {
		ix.byReference[key] = v
	}
}

// find resolves a reference using a fixed precedence: guid, then
// multi-location id, then reference id. The first identifier PRESENT
// on the reference decides the outcome; a present-but-unmatched guid
// does not fall through to the weaker schemes.
func (ix refIndex[T]) find(ref domain.ItemRef) (T, bool) {
	var zero T
	if ref.GUID != "" {
		v, ok := ix.byGUID[ref.GUID]
		return v, ok
	}
	if ref.MultiLocationID != "" {
		v, ok := ix.byMultiLocation[ref.MultiLocationID]
		return v, ok
	}
	if ref.ReferenceID != nil {
		key, ok := referenceKey(ref.ReferenceID)
		if !ok {
			return zero, false
		}
		v, found := ix.byReference[key]
		return v, found
	}
	return zero, false
}

// referenceKey renders a reference id as a type-tagged map key.
func referenceKey(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if t == "" {
			return "", false
		}
		return "s:" + t, true
	default:
		if s, ok := domain.CoerceString(v); ok {
			return "n:" + s, true
		}
		return "", false
	}
}

// MenuIndex resolves sparse order line-item references against a menu
// catalog. Built once per composition pass and discarded afterwards.
type MenuIndex struct {
	items     refIndex[*domain.MenuItem]
	modifiers refIndex[*domain.ModifierOption]
}

// BuildMenuIndex flattens a catalog document into lookup tables. A nil
// document yields an empty index whose lookups all miss; callers treat
// an unresolved item as a degraded result, not an error.
func BuildMenuIndex(doc *domain.MenuDocument) *MenuIndex {
	idx := &MenuIndex{
		items:     newRefIndex[*domain.MenuItem](),
		modifiers: newRefIndex[*domain.ModifierOption](),
	}
	if doc == nil {
		return idx
	}

	// The modifier option table is already flat.
	for key := range doc.ModifierOptionReferences {
		opt := doc.ModifierOptionReferences[key]
		idx.modifiers.add(opt.GUID, opt.MultiLocationID, opt.ReferenceID, &opt)
	}

	// Depth-first over the menu tree with an explicit stack. Traversal
	// order does not matter: indexing is by identifier, not position.
	var stack []*domain.MenuGroup
	for mi := range doc.Menus {
		menu := &doc.Menus[mi]
		for gi := range menu.Groups {
			stack = append(stack, &menu.Groups[gi])
		}
	}
	for len(stack) > 0 {
		group := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for ii := range group.Items {
			item := &group.Items[ii]
			idx.items.add(item.GUID, item.MultiLocationID, item.ReferenceID, item)
		}
		for gi := range group.Groups {
			stack = append(stack, &group.Groups[gi])
		}
	}

	return idx
}

// FindItem resolves an item reference.
func (x *MenuIndex) FindItem(ref domain.ItemRef) (*domain.MenuItem, bool) {
	return x.items.find(ref)
}

// FindModifier resolves a modifier option reference.
func (x *MenuIndex) FindModifier(ref domain.ItemRef) (*domain.ModifierOption, bool) {
	return x.modifiers.find(ref)
}
