package flickr

import (
	"encoding/json"
	"fmt"
)

// PhotoReference identifies one remote image. Two references with the same
// four fields denote the same resource.
type PhotoReference struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
	Server string `json:"server"`
	Farm   int    `json:"farm"`
	Owner  string `json:"owner,omitempty"`
	Title  string `json:"title,omitempty"`
}

// URL returns the static image URL for the reference.
func (p PhotoReference) URL() string {
	return fmt.Sprintf(ImageURLPattern, p.Farm, p.Server, p.ID, p.Secret)
}

// Valid reports whether all fields needed to build the URL are present.
func (p PhotoReference) Valid() bool {
	return p.ID != "" && p.Secret != "" && p.Server != ""
}

// SearchResponse is the envelope returned by flickr.photos.search.
type SearchResponse struct {
	Photos  PhotoPage `json:"photos"`
	Stat    string    `json:"stat"`
	Code    int       `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

// PhotoPage is one page of search results.
type PhotoPage struct {
	Page    int              `json:"page"`
	Pages   int              `json:"pages"`
	PerPage int              `json:"perpage"`
	Total   json.Number      `json:"total"`
	Photo   []PhotoReference `json:"photo"`
}
