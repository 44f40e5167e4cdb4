package domain

import (
	"encoding/json"
	"fmt"
)

// TagAction is the requested mutation on an item's tag set.
type TagAction string

const (
	TagAdd    TagAction = "add"
	TagRemove TagAction = "remove"
)

// ParseTagAction validates the wire value of a tag action.
func ParseTagAction(s string) (TagAction, error) {
	switch TagAction(s) {
	case TagAdd, TagRemove:
		return TagAction(s), nil
	default:
		return "", fmt.Errorf("unknown tag action %q: %w", s, ErrValidation)
	}
}

// Receipt is the structured line-item data extracted from an uploaded image.
// The extraction collaborator decides most of the shape; anything it returns
// beyond the items array (restaurant name, totals, taxes, ...) is preserved
// verbatim in Extra so the stored receipt round-trips byte-for-byte.
type Receipt struct {
	Items []Item
	Extra map[string]json.RawMessage
}

// Item is one line on the receipt. ID is a stable identifier assigned at
// extraction time so tags survive item reordering; Tags holds the user ids
// of participants sharing this item's cost, each at most once. All
// extractor-defined fields (name, price, quantity, ...) live in Extra.
type Item struct {
	ID    string
	Tags  []string
	Extra map[string]json.RawMessage
}

// HasTag reports whether userID is already tagged on the item.
func (it *Item) HasTag(userID string) bool {
	for _, t := range it.Tags {
		if t == userID {
			return true
		}
	}
	return false
}

// AddTag tags userID on the item. Idempotent: a second add is a no-op.
func (it *Item) AddTag(userID string) {
	if it.HasTag(userID) {
		return
	}
	it.Tags = append(it.Tags, userID)
}

// RemoveTag untags userID from the item. Idempotent: removing an absent
// tag is a no-op.
func (it *Item) RemoveTag(userID string) {
	out := it.Tags[:0]
	for _, t := range it.Tags {
		if t != userID {
			out = append(out, t)
		}
	}
	it.Tags = out
}

// ItemByID returns a pointer into Items for the item with the given stable
// id, or nil if no item carries it.
func (r *Receipt) ItemByID(id string) *Item {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

// MarshalJSON flattens the extractor-defined fields back alongside items.
func (r Receipt) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+1)
	for k, v := range r.Extra {
		out[k] = v
	}
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	out["items"] = raw
	return json.Marshal(out)
}

// UnmarshalJSON splits the items array out of the document and keeps every
// other top-level field raw.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Items = nil
	if itemsRaw, ok := raw["items"]; ok {
		if err := json.Unmarshal(itemsRaw, &r.Items); err != nil {
			return err
		}
		delete(raw, "items")
	}
	r.Extra = raw
	return nil
}

// MarshalJSON emits id and tags next to the extractor-defined fields.
// Tags always marshals as an array, never null.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(it.Extra)+2)
	for k, v := range it.Extra {
		out[k] = v
	}
	id, err := json.Marshal(it.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = id
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	out["tags"] = rawTags
	return json.Marshal(out)
}

// UnmarshalJSON splits id and tags out and keeps the rest raw.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it.ID = ""
	if idRaw, ok := raw["id"]; ok {
		if err := json.Unmarshal(idRaw, &it.ID); err != nil {
			return err
		}
		delete(raw, "id")
	}
	it.Tags = nil
	if tagsRaw, ok := raw["tags"]; ok {
		if err := json.Unmarshal(tagsRaw, &it.Tags); err != nil {
			return err
		}
		delete(raw, "tags")
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	it.Extra = raw
	return nil
}
