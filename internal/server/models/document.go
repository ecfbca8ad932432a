package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collections served by the content API.
const (
	CollectionServices = "services"
	CollectionProducts = "products"
	CollectionInsights = "insights"
	CollectionCards    = "cards"
	CollectionPosts    = "posts"
	CollectionAbout    = "about"
)

// Document is one record of a content collection. Data is the free-form
// JSON body; the remaining fields are managed by the server.
type Document struct {
	ID         string
	Collection string
	// Slug is empty for collections addressed by id only.
	Slug      string
	Published bool
	// AuthorID is set for posts.
	AuthorID  string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON flattens Data and the managed fields into one object. Managed
// fields win over keys of the same name in Data.
func (d Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &out); err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
	}

	out["id"] = d.ID
	if d.Slug != "" {
		out["slug"] = d.Slug
	}
	out["published"] = d.Published
	if d.AuthorID != "" {
		out["author"] = d.AuthorID
	}
	out["createdAt"] = d.CreatedAt
	out["updatedAt"] = d.UpdatedAt

	return json.Marshal(out)
}
