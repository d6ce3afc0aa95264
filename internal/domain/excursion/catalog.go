package excursion

import "time"

// Review is one traveler review of a product
type Review struct {
	ReviewRef     string    `json:"reviewRef"`
	Provider      string    `json:"provider,omitempty"`
	Rating        int       `json:"rating"`
	Title         string    `json:"title,omitempty"`
	Text          string    `json:"text"`
	UserName      string    `json:"userName,omitempty"`
	PublishedDate time.Time `json:"publishedDate,omitzero"`
}

// ReviewPage is one page of reviews with the upstream total count hint
type ReviewPage struct {
	ProductCode string   `json:"productCode"`
	Reviews     []Review `json:"reviews"`
	TotalCount  int      `json:"totalCount"`
	Page        int      `json:"page"`
	PageSize    int      `json:"pageSize"`
	HasMore     bool     `json:"hasMore"`
}

// Destination is a place products are grouped under
type Destination struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type,omitempty"`
	ParentID        string `json:"parentId,omitempty"`
	TimeZone        string `json:"timeZone,omitempty"`
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
}

// DestinationList is the full destination catalog
type DestinationList struct {
	Destinations []Destination `json:"destinations"`
	TotalCount   int           `json:"totalCount"`
}

// Find returns the destination with the given ID
func (l *DestinationList) Find(id string) (Destination, bool) {
	for _, d := range l.Destinations {
		if d.ID == id {
			return d, true
		}
	}
	return Destination{}, false
}
