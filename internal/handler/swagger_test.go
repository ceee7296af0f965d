package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformRefs(t *testing.T) {
	in := map[string]interface{}{
		"schema": map[string]interface{}{"$ref": "#/definitions/domain.Loan"},
		"items":  []interface{}{map[string]interface{}{"$ref": "#/definitions/domain.Payment"}},
	}

	out := transformRefs(in).(map[string]interface{})

	assert.Equal(t, "#/components/schemas/domain.Loan", out["schema"].(map[string]interface{})["$ref"])
	items := out["items"].([]interface{})
	assert.Equal(t, "#/components/schemas/domain.Payment", items[0].(map[string]interface{})["$ref"])
}

func TestTransformParameter(t *testing.T) {
	param := map[string]interface{}{
		"name":     "extra",
		"in":       "query",
		"type":     "string",
		"required": false,
		"default":  "0",
	}

	out := transformParameter(param)

	assert.Equal(t, "extra", out["name"])
	assert.Equal(t, map[string]interface{}{"type": "string", "default": "0"}, out["schema"])
	assert.NotContains(t, out, "type")
}

func TestTransformParameter_BodyUnchanged(t *testing.T) {
	param := map[string]interface{}{"name": "request", "in": "body", "schema": map[string]interface{}{}}

	assert.Equal(t, param, transformParameter(param))
}

func TestConvertToOpenAPI3(t *testing.T) {
	doc := []byte(`{
		"swagger": "2.0",
		"info": {"title": "MPWR Borrower Portal API"},
		"paths": {"/customers/{customerId}/dashboard": {"get": {"responses": {"200": {"schema": {"$ref": "#/definitions/domain.DashboardSummary"}}}}}},
		"definitions": {"domain.DashboardSummary": {"type": "object"}},
		"securityDefinitions": {"BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}}
	}`)

	spec, err := convertToOpenAPI3(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "MPWR Borrower Portal API", spec.Info["title"])
	assert.Contains(t, spec.Components, "schemas")
	assert.Contains(t, spec.Components, "securitySchemes")
	assert.Len(t, spec.Servers, 2)

	_, err = convertToOpenAPI3([]byte("not json"))
	assert.Error(t, err)
}
