package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchemas holds JSON schemas for the responses the gate and the
// sign-up flow depend on. Commands without an entry pass through unchecked.
var envelopeSchemas = map[string]string{
	CmdAuthStatus: `{
		"type": ["object", "null"],
		"properties": {
			"status": {"enum": ["Success", "Error"]},
			"data": {"enum": ["Admin", "MedicalPersonnel", "AdministrativePersonnel", null]}
		}
	}`,
	CmdGetProfile: `{
		"type": "object",
		"required": ["status", "data"],
		"properties": {
			"status": {"enum": ["Success", "Error"]},
			"data": {
				"type": "object",
				"required": ["id", "iotaAddress", "prePublicKey"],
				"properties": {
					"id": {"type": "string"},
					"iotaAddress": {"type": "string"},
					"prePublicKey": {"type": "string"},
					"name": {"type": ["string", "null"]}
				}
			}
		}
	}`,
	CmdGenerateMnemonic: `{
		"type": "object",
		"required": ["status", "data"],
		"properties": {
			"status": {"enum": ["Success", "Error"]},
			"data": {"type": "string", "minLength": 1}
		}
	}`,
}

type validatedInvoker struct {
	next    Invoker
	schemas map[string]*gojsonschema.Schema
}

// Validated wraps next and checks the responses of known commands against
// their JSON schema. A mismatch is reported as ErrMalformedResponse.
func Validated(next Invoker) (Invoker, error) {
	schemas := make(map[string]*gojsonschema.Schema, len(envelopeSchemas))

	for command, source := range envelopeSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", command, err)
		}

		schemas[command] = schema
	}

	return &validatedInvoker{next: next, schemas: schemas}, nil
}

func (v *validatedInvoker) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	raw, err := v.next.Invoke(ctx, command, args)
	if err != nil {
		return nil, err
	}

	schema, ok := v.schemas[command]
	if !ok {
		return raw, nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", command, ErrMalformedResponse, err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return nil, fmt.Errorf("%s: %w: %s", command, ErrMalformedResponse, strings.Join(problems, "; "))
	}

	return raw, nil
}
