package gateway

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

// ComposeInput bundles one composition request: the raw orders
// snapshot, the menu catalog it should be resolved against, and the
// caller's expansion budget.
type ComposeInput struct {
	Orders        []domain.Document
	Menu          *domain.MenuDocument
	MenuUpdatedAt string

	// Limit bounds how many orders are expanded; zero means all.
	Limit int

	// StartedAt plus TimeBudget defines a soft deadline checked
	// between order expansions. Exceeding it truncates the result, it
	// never fails the call. Zero StartedAt means "now"; zero
	// TimeBudget disables the deadline.
	StartedAt  time.Time
	TimeBudget time.Duration
}

// ComposeResult is the expanded-and-sorted orders payload.
type ComposeResult struct {
	Orders    []domain.Document `json:"orders"`
	Truncated bool              `json:"truncated,omitempty"`
}

// Composer expands sparse order selections into enriched line items
// using a per-pass MenuIndex, orders them deterministically, and
// memoizes whole payloads in the composition cache.
type Composer struct {
	cache *CompositionCache
	now   func() time.Time
}

// NewComposer creates a Composer over the given cache.
func NewComposer(cache *CompositionCache) *Composer {
	return &Composer{cache: cache, now: time.Now}
}

// CacheStats exposes the composition cache counters for diagnostics.
func (c *Composer) CacheStats() CacheStats {
	return c.cache.Stats()
}

// BuildExpandedOrders returns the expanded orders for the input
// snapshot, serving repeats of the same content fingerprint from
// cache. The returned payload is always an independent deep copy.
func (c *Composer) BuildExpandedOrders(ctx context.Context, in ComposeInput) *ComposeResult {
	key, err := compositionFingerprint(in.Orders, in.MenuUpdatedAt)
	if err != nil {
		// Unfingerprintable payloads are computed without memoization.
		log.Ctx(ctx).Warn().Err(err).Msg("composition fingerprint failed, skipping cache")
		orders, truncated := c.expandAll(in)
		return &ComposeResult{Orders: orders, Truncated: truncated}
	}

	// Budgeted (truncated) expansions are not representative of the
	// full snapshot, so only complete expansions enter the cache under
	// the content key.
	if cached, ok := c.cache.get(key); ok {
		return c.applyLimit(cached, in)
	}

	orders, truncated := c.expandAll(in)
	if !truncated {
		c.cache.put(key, orders)
	}
	return &ComposeResult{Orders: orders, Truncated: truncated}
}

// applyLimit trims a cached full expansion down to the caller's limit.
func (c *Composer) applyLimit(orders []domain.Document, in ComposeInput) *ComposeResult {
	if in.Limit > 0 && len(orders) > in.Limit {
		return &ComposeResult{Orders: orders[:in.Limit], Truncated: true}
	}
	return &ComposeResult{Orders: orders}
}

// expandAll expands orders until the payload is done or the budget is
// exhausted. Truncation keeps the leading orders in payload order, so
// identical inputs always produce identical results.
func (c *Composer) expandAll(in ComposeInput) ([]domain.Document, bool) {
	idx := BuildMenuIndex(in.Menu)

	var deadline time.Time
	if in.TimeBudget > 0 {
		base := in.StartedAt
		if base.IsZero() {
			base = c.now()
		}
		deadline = base.Add(in.TimeBudget)
	}

	out := make([]domain.Document, 0, len(in.Orders))
	for _, order := range in.Orders {
		if in.Limit > 0 && len(out) >= in.Limit {
			return out, true
		}
		if !deadline.IsZero() && c.now().After(deadline) {
			return out, true
		}
		out = append(out, expandOrder(order, idx))
	}
	return out, false
}

// expandOrder rebuilds one raw order with every check's selections
// expanded and sorted.
func expandOrder(order domain.Document, idx *MenuIndex) domain.Document {
	orderID, _ := order.String("guid")

	expanded := make(domain.Document, len(order))
	for k, v := range order {
		expanded[k] = v
	}

	checks, ok := order.Slice("checks")
	if !ok {
		return expanded
	}
	newChecks := make([]any, 0, len(checks))
	for ci, raw := range checks {
		m, ok := raw.(map[string]any)
		if !ok {
			newChecks = append(newChecks, raw)
			continue
		}
		newChecks = append(newChecks, map[string]any(expandCheck(orderID, ci, domain.Document(m), idx)))
	}
	expanded["checks"] = newChecks
	return expanded
}

// expandedItem pairs an enriched selection with its sort key for the
// duration of one check's sort.
type expandedItem struct {
	doc  domain.Document
	meta ItemSortMeta
}

// expandCheck expands and sorts the selections of one check.
func expandCheck(orderID string, checkIdx int, check domain.Document, idx *MenuIndex) domain.Document {
	expanded := make(domain.Document, len(check))
	for k, v := range check {
		expanded[k] = v
	}

	selections, ok := check.Slice("selections")
	if !ok {
		return expanded
	}

	// Iteration disambiguates repeated selections of the same logical
	// item within one check, counted in selection order.
	iterations := make(map[string]int)

	items := make([]expandedItem, 0, len(selections))
	passthrough := make([]any, 0)
	for si, raw := range selections {
		m, ok := raw.(map[string]any)
		if !ok {
			passthrough = append(passthrough, raw)
			continue
		}
		items = append(items, expandSelection(orderID, checkIdx, si, domain.Document(m), idx, iterations))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return compareSortMeta(&items[i].meta, &items[j].meta) < 0
	})

	sorted := make([]any, 0, len(items)+len(passthrough))
	for i := range items {
		sorted = append(sorted, map[string]any(items[i].doc))
	}
	sorted = append(sorted, passthrough...)
	expanded["selections"] = sorted
	return expanded
}

// expandSelection enriches one selection with its resolved catalog
// identity and sort metadata.
func expandSelection(orderID string, checkIdx, selIdx int, sel domain.Document, idx *MenuIndex, iterations map[string]int) expandedItem {
	var ref domain.ItemRef
	if itemDoc, ok := sel.Child("item"); ok {
		ref = domain.ItemRefFrom(itemDoc)
	}

	var resolved *domain.MenuItem
	if !ref.Empty() {
		resolved, _ = idx.FindItem(ref)
	}

	// Unresolved items degrade to a null name; they are never an error.
	var resolvedName any
	var resolvedMenuItemID any
	menuItemID := ref.GUID
	displayName, _ := sel.String("displayName")
	if resolved != nil {
		resolvedName = resolved.Name
		resolvedMenuItemID = resolved.GUID
		menuItemID = resolved.GUID
		if resolved.Name != "" {
			displayName = resolved.Name
		}
	}

	lineItemID, _ := sel.String("guid")
	if lineItemID == "" {
		// Derived, not random: keeps the final sort tiebreak and any
		// truncation deterministic for identical inputs.
		lineItemID = fmt.Sprintf("ln-%s-%d-%d", orderID, checkIdx, selIdx)
	}

	iterKey := menuItemID
	if iterKey == "" {
		iterKey = strings.ToLower(displayName)
	}
	if iterKey == "" {
		iterKey = lineItemID
	}
	iterations[iterKey]++
	iteration := iterations[iterKey]

	enriched := make(domain.Document, len(sel)+4)
	for k, v := range sel {
		enriched[k] = v
	}
	enriched["lineItemId"] = lineItemID
	enriched["resolvedName"] = resolvedName
	enriched["resolvedMenuItemId"] = resolvedMenuItemID
	enriched["iteration"] = iteration
	if mods, ok := sel.Slice("modifiers"); ok {
		enriched["modifiers"] = expandModifiers(mods, idx)
	}

	meta := extractSortMeta(sel, displayName, menuItemID, lineItemID, iteration)
	return expandedItem{doc: enriched, meta: meta}
}

// expandModifiers resolves modifier sub-selections against the flat
// modifier option table. Order is preserved; modifiers do not re-sort.
func expandModifiers(mods []any, idx *MenuIndex) []any {
	out := make([]any, 0, len(mods))
	for _, raw := range mods {
		m, ok := raw.(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}
		mod := domain.Document(m)

		var ref domain.ItemRef
		if itemDoc, ok := mod.Child("item"); ok {
			ref = domain.ItemRefFrom(itemDoc)
		}

		enriched := make(domain.Document, len(mod)+1)
		for k, v := range mod {
			enriched[k] = v
		}
		var resolvedName any
		if !ref.Empty() {
			if opt, ok := idx.FindModifier(ref); ok {
				resolvedName = opt.Name
			}
		}
		enriched["resolvedName"] = resolvedName
		out = append(out, map[string]any(enriched))
	}
	return out
}
