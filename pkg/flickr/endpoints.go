package flickr

import (
	"net/url"
	"strconv"
	"time"
)

const (
	// BaseURL is the REST endpoint of the Flickr API
	BaseURL = "https://api.flickr.com/services/rest/"

	// MethodPhotosSearch is the API method used for keyword search
	MethodPhotosSearch = "flickr.photos.search"

	// ImageURLPattern formats farm, server, id and secret into a photo URL
	ImageURLPattern = "https://farm%d.staticflickr.com/%s/%s_%s.jpg"

	// MaxPerPage is the largest page the API will return
	MaxPerPage = 500
)

// SearchQuery describes one page request.
type SearchQuery struct {
	Text          string
	MinUploadDate time.Time
	PerPage       int
	Page          int
}

// SearchURL builds the request URL for q against baseURL.
func SearchURL(baseURL, apiKey string, q SearchQuery) string {
	params := url.Values{}
	params.Set("method", MethodPhotosSearch)
	params.Set("api_key", apiKey)
	params.Set("text", q.Text)
	params.Set("min_upload_date", strconv.FormatInt(q.MinUploadDate.Unix(), 10))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	return baseURL + "?" + params.Encode()
}

// redactKey hides the API key when a URL is logged.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
