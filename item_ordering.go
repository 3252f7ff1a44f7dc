package gateway

import (
	"strings"

	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

// ItemSortMeta is the sortable metadata distilled from one expanded
// line item. Pointer fields are nil when the vendor supplied nothing
// coercible. Used only as a sort key, never exposed to clients.
type ItemSortMeta struct {
	DisplayOrder    *float64
	CreatedTime     *int64 // epoch milliseconds
	ReceiptPosition *float64
	SelectionIndex  *float64
	Iteration       int
	SeatNumber      *float64
	ItemNameLower   string
	MenuItemID      string
	LineItemID      string
}

// Each sortable field is probed across an ordered list of candidate
// vendor field names, including dotted paths into the nested context
// object. The first present, coercible candidate wins.
var (
	displayOrderPaths    = []string{"displayOrder", "context.displayOrder", "position"}
	createdTimePaths     = []string{"createdDate", "context.createdDate", "createdAt"}
	receiptPositionPaths = []string{"receiptLinePosition", "context.receiptLinePosition", "receiptPosition"}
	selectionIndexPaths  = []string{"selectionIndex", "context.selectionIndex", "index"}
	seatNumberPaths      = []string{"seatNumber", "context.seatNumber"}
)

// extractSortMeta builds the sort key for one selection.
func extractSortMeta(sel domain.Document, displayName, menuItemID, lineItemID string, iteration int) ItemSortMeta {
	return ItemSortMeta{
		DisplayOrder:    probeNumber(sel, displayOrderPaths),
		CreatedTime:     probeTime(sel, createdTimePaths),
		ReceiptPosition: probeNumber(sel, receiptPositionPaths),
		SelectionIndex:  probeNumber(sel, selectionIndexPaths),
		Iteration:       iteration,
		SeatNumber:      probeNumber(sel, seatNumberPaths),
		ItemNameLower:   strings.ToLower(displayName),
		MenuItemID:      menuItemID,
		LineItemID:      lineItemID,
	}
}

func probeNumber(doc domain.Document, paths []string) *float64 {
	for _, p := range paths {
		if n, ok := doc.Number(p); ok {
			return &n
		}
	}
	return nil
}

// probeTime resolves the first candidate that parses to a timestamp.
// Numeric values are taken as epoch milliseconds as-is.
func probeTime(doc domain.Document, paths []string) *int64 {
	for _, p := range paths {
		v, ok := doc.Value(p)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if ms, ok := domain.ParseVendorTime(t); ok {
				return &ms
			}
		default:
			if n, ok := domain.CoerceNumber(v); ok {
				ms := int64(n)
				return &ms
			}
		}
	}
	return nil
}

// compareNullableFloat orders ascending with nil sorting after any
// value: a present value is "smaller" than absence.
func compareNullableFloat(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func compareNullableInt(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// compareSortMeta imposes the strict total order over expanded line
// items. Ties break in sequence: displayOrder, createdTime,
// receiptPosition, selectionIndex, iteration, seatNumber,
// case-insensitive item name, menu item id, and finally the line item
// id, which is always present and unique, so no ties remain.
func compareSortMeta(a, b *ItemSortMeta) int {
	if c := compareNullableFloat(a.DisplayOrder, b.DisplayOrder); c != 0 {
		return c
	}
	if c := compareNullableInt(a.CreatedTime, b.CreatedTime); c != 0 {
		return c
	}
	if c := compareNullableFloat(a.ReceiptPosition, b.ReceiptPosition); c != 0 {
		return c
	}
	if c := compareNullableFloat(a.SelectionIndex, b.SelectionIndex); c != 0 {
		return c
	}
	if a.Iteration != b.Iteration {
		if a.Iteration < b.Iteration {
			return -1
		}
		return 1
	}
	if c := compareNullableFloat(a.SeatNumber, b.SeatNumber); c != 0 {
		return c
	}
	if c := strings.Compare(a.ItemNameLower, b.ItemNameLower); c != 0 {
		return c
	}
	if c := strings.Compare(a.MenuItemID, b.MenuItemID); c != 0 {
		return c
	}
	return strings.Compare(a.LineItemID, b.LineItemID)
}
