package service

import (
	"errors"

	"github.com/tuanvumaihuynh/self-checkout/internal/apperr"
	"github.com/tuanvumaihuynh/self-checkout/pkg/zerror"
)

// dependencyErr marks a failure of the store, the broker or the detector so it is reported
// apart from domain errors.
func dependencyErr(err error) error {
	return apperr.DependencyUnavailableErr.WrapParent(err)
}

// txErr keeps domain errors raised inside a transaction and classifies anything else,
// such as a failed BEGIN or COMMIT, as a dependency failure.
func txErr(err error) error {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}
	return dependencyErr(err)
}
