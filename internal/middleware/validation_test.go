package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProductRequest struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
	Stock *int     `json:"stock" validate:"omitempty,gte=0"`
}

// Property: a request missing any required field is rejected
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includePrice bool, price float64) bool {
			reqMap := make(map[string]interface{})
			if includeName {
				reqMap["name"] = "Laptop"
			}
			if includePrice {
				reqMap["price"] = price
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(reqBody))

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if includeName && includePrice {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Float64Range(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Zero is a valid price; only absence is rejected
func TestDecodeAndValidate_ZeroPriceIsPresent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":"Free","price":0}`))

	var testReq testProductRequest
	require.NoError(t, DecodeAndValidate(req, &testReq))
	require.NotNil(t, testReq.Price)
	assert.Zero(t, *testReq.Price)
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"stock":-1}`))

	var testReq testProductRequest
	err := DecodeAndValidate(req, &testReq)
	require.Error(t, err)

	fields := map[string]string{}
	for _, e := range FormatValidationErrors(err) {
		fields[e.Field] = e.Message
	}

	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "This field is required", fields["price"])
	assert.Equal(t, "Value must be greater than or equal to 0", fields["stock"])
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":`))

	var testReq testProductRequest
	err := DecodeAndValidate(req, &testReq)
	assert.ErrorIs(t, err, ErrInvalidBody)
	assert.Empty(t, FormatValidationErrors(err))

	w := httptest.NewRecorder()
	RespondWithRequestError(w, err, "ignored")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request body", response.Message)
}
