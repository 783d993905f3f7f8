package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentMethodPayload struct {
	Method string `json:"method" binding:"required,payment_method"`
}

func TestSetupValidator_PaymentMethodTag(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&paymentMethodPayload{Method: "mobile_money"})
	assert.NoError(t, err)

	err = binding.Validator.ValidateStruct(&paymentMethodPayload{Method: "barter"})
	require.Error(t, err)
	assert.Contains(t, ValidationMessage(err), "unknown payment method")
}

func TestValidationMessage_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&paymentMethodPayload{})
	require.Error(t, err)
	msg := ValidationMessage(err)
	assert.Contains(t, msg, "method: this field is required")
}

func TestValidationMessage_PassesThroughNonValidationErrors(t *testing.T) {
	assert.Equal(t, "boom", ValidationMessage(errors.New("boom")))
}
