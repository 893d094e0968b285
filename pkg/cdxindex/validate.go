package cdxindex

import (
	"fmt"
	"strings"

	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

var matchTypes = []MatchType{MatchExact, MatchPrefix, MatchHost, MatchDomain}

// ParseMatchType maps a request parameter to a MatchType. Empty means exact.
func ParseMatchType(s string) (MatchType, error) {
	if s == "" {
		return MatchExact, nil
	}

	for _, mt := range matchTypes {
		if strings.EqualFold(s, string(mt)) {
			return mt, nil
		}
	}

	return "", errors.NewValidationError(
		nil, errors.ErrValidationInvalidData, fmt.Sprintf("Unsupported matchType %q", s),
	).
		WithField("matchType").
		WithExpected(matchTypes).
		WithProvided(s)
}

// normalizeQuery validates q and returns it with MatchType in canonical form.
func normalizeQuery(q Query) (Query, error) {
	if strings.TrimSpace(q.URL) == "" {
		return q, errors.NewRequiredFieldError("url").WithExpected("non-empty URL").WithProvided(q.URL)
	}

	mt, err := ParseMatchType(string(q.MatchType))
	if err != nil {
		return q, err
	}
	q.MatchType = mt

	if q.Limit < 0 {
		return q, errors.NewValidationError(
			nil, errors.ErrValidationInvalidData, fmt.Sprintf("limit must not be negative, got %d", q.Limit),
		).
			WithField("limit").
			WithExpected(">= 0").
			WithProvided(q.Limit)
	}

	return q, nil
}
