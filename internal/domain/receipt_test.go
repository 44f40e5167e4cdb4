package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/domain"
)

func TestParseTagAction(t *testing.T) {
	add, err := domain.ParseTagAction("add")
	require.NoError(t, err)
	assert.Equal(t, domain.TagAdd, add)

	remove, err := domain.ParseTagAction("remove")
	require.NoError(t, err)
	assert.Equal(t, domain.TagRemove, remove)

	_, err = domain.ParseTagAction("toggle")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestItem_AddTag_Idempotent(t *testing.T) {
	item := domain.Item{ID: "a"}

	item.AddTag("user-1")
	item.AddTag("user-1")
	item.AddTag("user-2")

	assert.Equal(t, []string{"user-1", "user-2"}, item.Tags)
	assert.True(t, item.HasTag("user-1"))
	assert.False(t, item.HasTag("user-3"))
}

func TestItem_RemoveTag_Idempotent(t *testing.T) {
	item := domain.Item{ID: "a", Tags: []string{"user-1", "user-2"}}

	item.RemoveTag("user-1")
	item.RemoveTag("user-1")

	assert.Equal(t, []string{"user-2"}, item.Tags)

	// removing an absent tag is a no-op
	item.RemoveTag("user-9")
	assert.Equal(t, []string{"user-2"}, item.Tags)
}

func TestReceipt_ItemByID(t *testing.T) {
	receipt := domain.Receipt{Items: []domain.Item{{ID: "a"}, {ID: "b"}}}

	found := receipt.ItemByID("b")
	require.NotNil(t, found)
	assert.Equal(t, "b", found.ID)

	// the pointer aliases the slice element, so mutations stick
	found.AddTag("user-1")
	assert.Equal(t, []string{"user-1"}, receipt.Items[1].Tags)

	assert.Nil(t, receipt.ItemByID("missing"))
}

// Receipts carry whatever shape the extractor produced. Unknown top-level
// and per-item fields must survive a store/load cycle untouched.
func TestReceipt_JSONRoundTrip_PreservesExtractorFields(t *testing.T) {
	const doc = `{
		"restaurantName": "Guido's",
		"total": 42.50,
		"tax": {"cgst": 1.25, "sgst": 1.25},
		"items": [
			{"id": "itm-1", "name": "Margherita", "price": 12.5, "quantity": 1, "tags": ["user-1"]},
			{"id": "itm-2", "name": "Tiramisu", "price": 6, "quantity": 2, "tags": []}
		]
	}`

	var receipt domain.Receipt
	require.NoError(t, json.Unmarshal([]byte(doc), &receipt))

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "itm-1", receipt.Items[0].ID)
	assert.Equal(t, []string{"user-1"}, receipt.Items[0].Tags)
	assert.JSONEq(t, `"Margherita"`, string(receipt.Items[0].Extra["name"]))
	assert.JSONEq(t, `"Guido's"`, string(receipt.Extra["restaurantName"]))

	out, err := json.Marshal(receipt)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
}

func TestReceipt_Marshal_EmptyItemsNeverNull(t *testing.T) {
	out, err := json.Marshal(domain.Receipt{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items": []}`, string(out))
}

func TestItem_Marshal_TagsNeverNull(t *testing.T) {
	out, err := json.Marshal(domain.Item{ID: "a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "a", "tags": []}`, string(out))
}

func TestItem_Unmarshal_MissingTagsBecomesEmptySlice(t *testing.T) {
	var item domain.Item
	require.NoError(t, json.Unmarshal([]byte(`{"id": "a", "name": "Pasta"}`), &item))

	require.NotNil(t, item.Tags)
	assert.Empty(t, item.Tags)
}
