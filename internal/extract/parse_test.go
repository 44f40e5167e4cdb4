package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/domain"
	"github.com/splitroom-app/backend/internal/extract"
)

func TestParseReceipt_PlainJSON(t *testing.T) {
	receipt, err := extract.ParseReceipt(`{
		"restaurantName": "Guido's",
		"items": [{"name": "Margherita", "price": 12.5}]
	}`)

	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.NotEmpty(t, receipt.Items[0].ID, "every item gets a stable id")
	assert.NotNil(t, receipt.Items[0].Tags, "tags normalized to empty slice")
	assert.JSONEq(t, `"Guido's"`, string(receipt.Extra["restaurantName"]))
}

func TestParseReceipt_MarkdownFence(t *testing.T) {
	receipt, err := extract.ParseReceipt("```json\n{\"items\": [{\"name\": \"Dosa\"}]}\n```")

	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.JSONEq(t, `"Dosa"`, string(receipt.Items[0].Extra["name"]))
}

func TestParseReceipt_BareFence(t *testing.T) {
	receipt, err := extract.ParseReceipt("```\n{\"items\": []}\n```")

	require.NoError(t, err)
	assert.Empty(t, receipt.Items)
}

func TestParseReceipt_ProseAroundObject(t *testing.T) {
	receipt, err := extract.ParseReceipt(
		`Here is the extracted receipt: {"items": [{"name": "Chai"}]} Let me know if you need anything else.`)

	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
}

func TestParseReceipt_MissingItemsArray(t *testing.T) {
	receipt, err := extract.ParseReceipt(`{"restaurantName": "Guido's"}`)

	require.NoError(t, err)
	require.NotNil(t, receipt.Items)
	assert.Empty(t, receipt.Items)
}

func TestParseReceipt_DiscardsModelSuppliedTags(t *testing.T) {
	receipt, err := extract.ParseReceipt(
		`{"items": [{"name": "Pasta", "tags": ["some-user"]}, {"name": "Chai"}]}`)

	require.NoError(t, err)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, []string{}, receipt.Items[0].Tags, "model-invented tags are dropped")
	assert.Equal(t, []string{}, receipt.Items[1].Tags)
}

func TestParseReceipt_PreservesExistingIDs(t *testing.T) {
	receipt, err := extract.ParseReceipt(`{"items": [{"id": "itm-1", "name": "Pasta"}]}`)

	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "itm-1", receipt.Items[0].ID)
}

func TestParseReceipt_NotJSON(t *testing.T) {
	_, err := extract.ParseReceipt("I could not read the image, sorry.")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestParseReceipt_Empty(t *testing.T) {
	_, err := extract.ParseReceipt("")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
