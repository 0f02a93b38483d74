package prprun

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type resultSchema struct {
	schema *gojsonschema.Schema
}

func compileResultSchema(src string) (*resultSchema, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}

	return &resultSchema{schema: schema}, nil
}

// validate checks a decoded document. A nil schema accepts everything.
func (s *resultSchema) validate(doc any) error {
	if s == nil {
		return nil
	}

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate result schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, err := range result.Errors() {
		errs = append(errs, err.String())
	}

	return fmt.Errorf("%w: %s", ErrResultSchemaInvalid, strings.Join(errs, "; "))
}
