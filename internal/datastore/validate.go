package datastore

import (
	"fmt"
	"regexp"

	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

const collectionNamePattern = `^[A-Za-z0-9_-]+$`

var collectionNameRegexp = regexp.MustCompile(collectionNamePattern)

// ValidateCollectionName rejects names that could address anything outside the
// data directory.
func ValidateCollectionName(name string) error {
	if name == "" {
		return errors.NewRequiredFieldError("collection").
			WithCode(errors.ErrValidationInvalidCollection).
			WithExpected(collectionNamePattern).
			WithProvided(name)
	}

	if !collectionNameRegexp.MatchString(name) {
		return errors.NewValidationError(
			nil, errors.ErrValidationInvalidCollection, fmt.Sprintf("Invalid collection name %q", name),
		).
			WithField("collection").
			WithExpected(collectionNamePattern).
			WithProvided(name)
	}

	return nil
}
