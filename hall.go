package dining

import (
	"strings"
	"time"
)

// HallID identifies a dining hall.
type HallID string

// Dining hall identifiers.
const (
	Worcester HallID = "worcester"
	Franklin  HallID = "franklin"
	Berkshire HallID = "berkshire"
	Hampshire HallID = "hampshire"
)

// Hall is static reference data describing a dining hall.
type Hall struct {
	ID        HallID `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	URLSlug   string `json:"urlSlug"`
}

// MenuURL returns the menu page URL for the hall on the given date.
func (h Hall) MenuURL(baseURL string, date time.Time) string {
	return strings.TrimRight(baseURL, "/") + "/" + h.URLSlug + "/" + FormatDate(date)
}

var halls = []Hall{
	{ID: Worcester, Name: "Worcester Dining Commons", ShortName: "Worcester", URLSlug: "worcester"},
	{ID: Franklin, Name: "Franklin Dining Commons", ShortName: "Franklin", URLSlug: "franklin"},
	{ID: Berkshire, Name: "Berkshire Dining Commons", ShortName: "Berkshire", URLSlug: "berkshire"},
	{ID: Hampshire, Name: "Hampshire Dining Commons", ShortName: "Hampshire", URLSlug: "hampshire"},
}

// Halls returns the dining hall table in scrape order.
// The returned slice is a copy and may be modified by the caller.
func Halls() []Hall {
	out := make([]Hall, len(halls))
	copy(out, halls)
	return out
}

// FindHall returns the hall with the given ID.
func FindHall(id HallID) (Hall, bool) {
	for _, h := range halls {
		if h.ID == id {
			return h, true
		}
	}
	return Hall{}, false
}

// ParseHallID validates a user-supplied hall identifier.
// Returns EINVALID for unknown halls.
func ParseHallID(s string) (HallID, error) {
	id := HallID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := FindHall(id); !ok {
		return "", Errorf(EINVALID, "unknown dining hall %q", s)
	}
	return id, nil
}
