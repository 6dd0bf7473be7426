package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 1 << 20

// decimalSchema accepts decimals as JSON strings or plain numbers. String
// exponents are limited to two digits; checkNumberLiterals does the same for
// numbers and the solver enforces the exact bounds.
const decimalSchema = `{
	"anyOf": [
		{"type": "string", "maxLength": 140, "pattern": "^-?[0-9]+(\\.[0-9]+)?([eE][-+]?[0-9]{1,2})?$"},
		{"type": "number"}
	]
}`

const itemSchema = `{
	"type": "object",
	"required": ["name", "size", "price"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 256},
		"size": ` + decimalSchema + `,
		"price": ` + decimalSchema + `
	}
}`

var (
	inventorySchema = jsonschema.MustCompileString("inventory.json", `{
	"type": "object",
	"required": ["capacity", "items"],
	"properties": {
		"capacity": `+decimalSchema+`,
		"items": {"type": "array", "minItems": 1, "maxItems": 10000, "items": `+itemSchema+`}
	}
}`)

	solveSchema = jsonschema.MustCompileString("solve.json", `{
	"type": "object",
	"properties": {
		"capacity": `+decimalSchema+`,
		"items": {"type": "array", "maxItems": 10000, "items": `+itemSchema+`}
	}
}`)

	stepSchema = jsonschema.MustCompileString("step.json", `{
	"type": "object",
	"required": ["sizes"],
	"properties": {
		"sizes": {"type": "array", "minItems": 1, "maxItems": 10000, "items": `+decimalSchema+`}
	}
}`)
)

var errEmptyBody = errors.New("request body is empty")

// maxNumberLength bounds the literal length of JSON numbers.
const maxNumberLength = 140

// checkNumberLiterals rejects JSON numbers with long literals or exponents of
// more than two digits before anything converts them to exact values.
func checkNumberLiterals(doc any) error {
	switch v := doc.(type) {
	case json.Number:
		lit := v.String()
		if len(lit) > maxNumberLength {
			return fmt.Errorf("number literal longer than %d characters", maxNumberLength)
		}
		if i := strings.IndexAny(lit, "eE"); i >= 0 {
			exp := strings.TrimLeft(lit[i+1:], "+-")
			if len(exp) > 2 {
				return fmt.Errorf("number %s has an exponent of more than two digits", lit)
			}
		}
	case map[string]any:
		for _, child := range v {
			if err := checkNumberLiterals(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range v {
			if err := checkNumberLiterals(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeValidated reads the request body, validates it against schema and
// decodes it into dst. An empty body is reported as errEmptyBody.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	if err := checkNumberLiterals(doc); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
