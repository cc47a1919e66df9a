// Package testsupport loads record fixtures shared by package tests.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/schema"
)

// LoadRecord reads a JSON or YAML fixture into a record. Testing helpers fail
// the test on error to keep table setup concise.
func LoadRecord(t *testing.T, path string) schema.Record {
	t.Helper()

	record, err := LoadRecordFromPath(path)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	return record
}

// LoadRecordFromPath returns a record without requiring testing.T. The format
// follows the file extension; anything that is not .yaml/.yml is read as
// JSON.
func LoadRecordFromPath(path string) (schema.Record, error) {
	if path == "" {
		return nil, errors.New("testsupport: record path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read record: %w", err)
	}

	var out schema.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode record %s: %w", path, err)
	}
	return out, nil
}

// With returns a copy of base with overrides applied. A nil override value
// deletes the key.
func With(base schema.Record, overrides map[string]any) schema.Record {
	out := base.Clone()
	for key, value := range overrides {
		if value == nil {
			delete(out, key)
			continue
		}
		out[key] = value
	}
	return out
}
