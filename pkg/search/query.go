package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

// Query encodes c as URL query parameters.
func (c Criteria) Query() (url.Values, error) {
	return query.Values(c)
}

// CriteriaFromQuery is the inverse of Criteria.Query. Multi-value filters
// accept repeated keys as well as comma separated values.
func CriteriaFromQuery(q url.Values) (Criteria, error) {
	c := Criteria{
		Location:         q.Get("location"),
		Genders:          splitValues(q["gender"]),
		SupervisionTypes: splitValues(q["supervision"]),
		RoomTypes:        splitValues(q["room_type"]),
	}

	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Criteria{}, fmt.Errorf("max_price: %w", err)
		}
		c.MaxPrice = &p
	}

	var err error
	if c.MATFriendlyOnly, err = parseFlag(q.Get("mat_friendly")); err != nil {
		return Criteria{}, fmt.Errorf("mat_friendly: %w", err)
	}
	if c.AcceptsCouplesOnly, err = parseFlag(q.Get("accepts_couples")); err != nil {
		return Criteria{}, fmt.Errorf("accepts_couples: %w", err)
	}
	return c, nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func splitValues(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
