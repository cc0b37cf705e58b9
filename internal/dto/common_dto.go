package dto

import (
	"time"

	"github.com/noah-isme/planner-go-api/internal/models"
)

const (
	isoLayout  = time.RFC3339
	dateLayout = "2006-01-02"
)

// ResourcePayload is a titled link supplied by clients.
type ResourcePayload struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title" validate:"required,max=200"`
}

// ResourceResponse is a titled link returned to clients.
type ResourceResponse struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ToModel converts the payload.
func (p ResourcePayload) ToModel() models.ResourceLink {
	return models.ResourceLink{URL: p.URL, Title: p.Title}
}

// ResourcesToModel converts a payload list, keeping nil as nil.
func ResourcesToModel(payload []ResourcePayload) []models.ResourceLink {
	if payload == nil {
		return nil
	}
	out := make([]models.ResourceLink, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.ToModel())
	}
	return out
}

// NewResourceResponseSlice converts model links.
func NewResourceResponseSlice(resources []models.ResourceLink) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		out = append(out, ResourceResponse{URL: resource.URL, Title: resource.Title})
	}
	return out
}

// ParseDate accepts RFC3339 timestamps and bare dates. Bare dates are read
// as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if parsed, err := time.Parse(isoLayout, value); err == nil {
		return parsed, nil
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
