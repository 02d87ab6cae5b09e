package parse

import (
	"fmt"
	"time"

	"github.com/five82/pushboard/internal/query"
)

// FilterClass is the Parse class holding saved audience filters.
const FilterClass = "Filter"

// Filter mirrors a saved audience filter record.
type Filter struct {
	ObjectID  string          `json:"objectId" yaml:"objectId"`
	Name      string          `json:"name" yaml:"name"`
	Query     query.Predicate `json:"query" yaml:"query"`
	CreatedAt time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updatedAt"`
	TimesUsed int             `json:"timesUsed" yaml:"timesUsed"`
}

// FilterPage is one page of a Filter query.
type FilterPage struct {
	Results []Filter
	// ShowMore reports that the server holds more records than were returned.
	ShowMore bool
}

// queryResponse mirrors /classes/{class} with count=1.
type queryResponse struct {
	Results []Filter `json:"results"`
	Count   *int     `json:"count"`
}

// CreateAudienceRequest is the body of POST /push_audiences.
type CreateAudienceRequest struct {
	Query string `json:"query"`
	Name  string `json:"name"`
}

// CreateAudienceResponse mirrors the POST /push_audiences reply.
type CreateAudienceResponse struct {
	NewAudience *struct {
		ObjectID string `json:"objectId"`
	} `json:"new_audience"`
}

// ObjectID returns the id assigned by the server, or "" when it sent none.
func (r CreateAudienceResponse) ObjectID() string {
	if r.NewAudience == nil {
		return ""
	}
	return r.NewAudience.ObjectID
}

// availableDevicesResponse mirrors /available_devices.
type availableDevicesResponse struct {
	AvailableDevices []string `json:"available_devices"`
}

// APIError is a request the server rejected.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"error"`
	Path    string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	if e.Code != 0 {
		return fmt.Sprintf("api %s returned status %d: %s (code %d)", e.Path, e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// Parse error codes this client cares about.
const (
	CodeObjectNotFound     = 101
	CodeInvalidJSON        = 107
	CodeOperationForbidden = 119
)
