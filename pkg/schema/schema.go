// Package schema validates JSON request bodies against the embedded JSON
// schemas before they are decoded into Go values.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

const base = "https://dbhub.example/schemas/"

// Schema IDs of the request bodies
const (
	Register       = base + "register.json"
	Login          = base + "login.json"
	UserUpdate     = base + "user_update.json"
	DatabaseCreate = base + "database_create.json"
	DatabaseUpdate = base + "database_update.json"
	MemberAdd      = base + "member_add.json"
	AppCreate      = base + "app_create.json"
	AppUpdate      = base + "app_update.json"
	Installation   = base + "installation.json"
)

// maxBodySize caps request bodies read by Decode
const maxBodySize = 1 << 20

//go:embed schemas
var embedded embed.FS

// ValidationError lists the reasons a document failed validation
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "the document is not valid: " + strings.Join(e.Details, "; ")
}

// Validator holds the compiled request schemas keyed by their $id
type Validator struct {
	compiled map[string]*gojsonschema.Schema
}

// NewDefaultValidator compiles the schemas embedded in the binary
func NewDefaultValidator() (*Validator, error) {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load compiles every .json document in fsys. Documents under refs/ are
// only registered as $ref targets; every other document becomes a request
// schema. Each document must carry a unique $id.
func Load(fsys fs.FS) (*Validator, error) {
	pool := gojsonschema.NewSchemaLoader()
	pending := map[string][]byte{}
	seen := map[string]string{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".json" {
			return err
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		id, err := documentID(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%s: $id %s already used by %s", p, id, prev)
		}
		seen[id] = p

		if strings.HasPrefix(p, "refs/") {
			return pool.AddSchemas(gojsonschema.NewBytesLoader(raw))
		}
		pending[id] = raw
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	v := &Validator{compiled: make(map[string]*gojsonschema.Schema, len(pending))}
	for id, raw := range pending {
		compiled, err := pool.Compile(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", seen[id], err)
		}
		v.compiled[id] = compiled
	}
	return v, nil
}

func documentID(raw []byte) (string, error) {
	var doc struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	if doc.ID == "" {
		return "", errors.New("missing $id")
	}
	return doc.ID, nil
}

// ValidateBytes validates a JSON document against schemaID
func (v *Validator) ValidateBytes(doc []byte, schemaID string) error {
	return v.validate(gojsonschema.NewBytesLoader(doc), schemaID)
}

// Decode reads a JSON document from r, validates it against schemaID and
// unmarshals it into dst. An empty body is treated as {}.
func (v *Validator) Decode(r io.Reader, schemaID string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("cannot read body: %w", err)
	}
	if len(body) > maxBodySize {
		return &ValidationError{Details: []string{"request body too large"}}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return &ValidationError{Details: []string{"request body is not valid JSON"}}
	}
	if err := v.ValidateBytes(body, schemaID); err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func (v *Validator) validate(doc gojsonschema.JSONLoader, schemaID string) error {
	compiled, ok := v.compiled[schemaID]
	if !ok {
		return fmt.Errorf("unknown schema %s", schemaID)
	}

	result, err := compiled.Validate(doc)
	if err != nil {
		return &ValidationError{Details: []string{err.Error()}}
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, e := range result.Errors() {
			verr.Details = append(verr.Details, e.String())
		}
		return verr
	}
	return nil
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
