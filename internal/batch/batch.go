// Package batch reads batch input files and writes result documents.
//
// A batch file is a JSON array of posts:
//
//	[{"description": "...", "platform": "linkedin", "context": "..."}]
//
// platform defaults to instagram and context to "". The file is checked
// against an embedded JSON Schema before any post is decoded. Platform
// names are not checked here: unsupported ones fail per post.
package batch

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"

	"github.com/alnah/postopt/internal/optimize"
	"github.com/alnah/postopt/internal/platform"
)

// DefaultPlatform is used for records without a platform field.
const DefaultPlatform = platform.Instagram

// ErrInvalidFile indicates the batch file is not valid JSON or does not
// match the batch schema.
var ErrInvalidFile = errors.New("invalid batch file")

//go:embed schema.json
var schema []byte

var schemaLoader = gojsonschema.NewBytesLoader(schema)

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in a batch file.
// It matches ErrInvalidFile with errors.Is.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrInvalidFile.Error())
	sb.WriteString(":")
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// Is reports whether target is ErrInvalidFile.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidFile
}

// record is one post as written in the batch file.
// Pointers distinguish a missing field from an empty one.
type record struct {
	Description string  `json:"description"`
	Platform    *string `json:"platform"`
	Context     *string `json:"context"`
}

// Decode validates and decodes a batch document.
func Decode(r io.Reader) ([]optimize.Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidFile)
	}

	if err := validate(data); err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	return lo.Map(records, func(rec record, _ int) optimize.Request {
		return optimize.Request{
			Description: rec.Description,
			Platform:    lo.FromPtrOr(rec.Platform, DefaultPlatform),
			Context:     lo.FromPtr(rec.Context),
		}
	}), nil
}

// LoadFile reads and decodes the batch file at path.
func LoadFile(path string) (_ []optimize.Request, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close batch file: %w", closeErr)
		}
	}()

	reqs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
