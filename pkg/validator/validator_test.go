package validator_test

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/pkg/validator"
)

type item struct {
	Name     string  `json:"name" validate:"required,notblank"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept a valid struct", func(t *testing.T) {
		assert.NoError(t, v.Validate(item{Name: "tea", Price: 1, Quantity: 0}))
	})

	t.Run("Should report json field names", func(t *testing.T) {
		err := v.Validate(item{Name: "   ", Price: -1, Quantity: -2})
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		var fieldErrs govalidator.ValidationErrors
		require.True(t, errors.As(err, &fieldErrs))

		got := map[string]string{}
		for _, fe := range fieldErrs {
			got[fe.Field()] = validator.ValidationErrorMessage(fe)
		}
		assert.Equal(t, map[string]string{
			"name":     "must not be blank",
			"price":    "must be greater than or equal to 0",
			"quantity": "must be greater than or equal to 0",
		}, got)
	})
}
