package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestCompareValueSortsBeforeAbsence(t *testing.T) {
	a := ItemSortMeta{DisplayOrder: f64(3), LineItemID: "a"}
	b := ItemSortMeta{LineItemID: "b"}

	assert.Negative(t, compareSortMeta(&a, &b), "a present displayOrder sorts before a missing one")
	assert.Positive(t, compareSortMeta(&b, &a))
}

func TestCompareItemNameCaseInsensitive(t *testing.T) {
	banana := ItemSortMeta{ItemNameLower: "banana", LineItemID: "a"}
	apple := ItemSortMeta{ItemNameLower: "apple", LineItemID: "b"}

	assert.Positive(t, compareSortMeta(&banana, &apple), `"Apple" orders before "banana"`)
}

func TestCompareTieSequence(t *testing.T) {
	base := ItemSortMeta{
		DisplayOrder:    f64(1),
		CreatedTime:     i64(1000),
		ReceiptPosition: f64(2),
		SelectionIndex:  f64(0),
		Iteration:       1,
		SeatNumber:      f64(4),
		ItemNameLower:   "latte",
		MenuItemID:      "g1",
		LineItemID:      "line-1",
	}

	other := base
	other.LineItemID = "line-2"
	assert.Negative(t, compareSortMeta(&base, &other), "lineItemId is the final tiebreak")

	other = base
	other.LineItemID = "line-0"
	other.MenuItemID = "g2"
	assert.Negative(t, compareSortMeta(&base, &other), "menuItemId breaks before lineItemId")

	other = base
	other.SeatNumber = nil
	assert.Negative(t, compareSortMeta(&base, &other), "a seated item sorts before an unseated one")

	other = base
	other.Iteration = 2
	assert.Negative(t, compareSortMeta(&base, &other))

	other = base
	other.CreatedTime = i64(500)
	assert.Positive(t, compareSortMeta(&base, &other))

	other = base
	other.DisplayOrder = f64(0)
	assert.Positive(t, compareSortMeta(&base, &other), "displayOrder dominates every later key")
}

func TestCompareEqualMetas(t *testing.T) {
	a := ItemSortMeta{Iteration: 1, ItemNameLower: "x", LineItemID: "same"}
	b := a
	assert.Zero(t, compareSortMeta(&a, &b))
}

func TestExtractSortMetaProbesCandidates(t *testing.T) {
	sel := domain.Document{
		"displayOrder": float64(7),
		"context": map[string]any{
			"receiptLinePosition": "12",
			"createdDate":         "2024-10-10T10:00:00.000Z",
		},
		"seatNumber": float64(2),
	}

	meta := extractSortMeta(sel, "Latte", "g1", "line-1", 1)

	require.NotNil(t, meta.DisplayOrder)
	assert.Equal(t, 7.0, *meta.DisplayOrder)

	require.NotNil(t, meta.ReceiptPosition, "dotted context path is probed")
	assert.Equal(t, 12.0, *meta.ReceiptPosition)

	require.NotNil(t, meta.CreatedTime)
	assert.Equal(t, int64(1728554400000), *meta.CreatedTime)

	require.NotNil(t, meta.SeatNumber)
	assert.Equal(t, 2.0, *meta.SeatNumber)

	assert.Nil(t, meta.SelectionIndex, "absent candidates yield nil")
	assert.Equal(t, "latte", meta.ItemNameLower)
}

func TestExtractSortMetaTopLevelWinsOverContext(t *testing.T) {
	sel := domain.Document{
		"receiptLinePosition": float64(1),
		"context": map[string]any{
			"receiptLinePosition": float64(99),
		},
	}

	meta := extractSortMeta(sel, "", "", "line-1", 1)
	require.NotNil(t, meta.ReceiptPosition)
	assert.Equal(t, 1.0, *meta.ReceiptPosition)
}

func TestExtractSortMetaUnparseableValues(t *testing.T) {
	sel := domain.Document{
		"displayOrder": "not-a-number",
		"createdDate":  "yesterday-ish",
	}

	meta := extractSortMeta(sel, "", "", "line-1", 1)
	assert.Nil(t, meta.DisplayOrder)
	assert.Nil(t, meta.CreatedTime)
}
