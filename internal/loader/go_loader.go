package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/arbitrary-partials/internal/document"
)

// GoDocumentsFunc is the function a Go document script must define.
const GoDocumentsFunc = "Documents"

// LoadGoFile evaluates a Go script and builds a document from the elements
// its Documents() function returns.
//
// Each entry of the returned slice is decoded separately and its elements are
// appended in slice order, so an element that refers to another by idref must
// come in a later entry. Keys within one entry are marshalled in sorted order.
func LoadGoFile(path string) (Source, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return Source{}, fmt.Errorf("loader: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return Source{}, fmt.Errorf("loader: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return Source{}, fmt.Errorf("loader: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(GoDocumentsFunc)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s must define %s() ([]map[string]any, error): %w", path, GoDocumentsFunc, err)
	}
	entries, err := invokeDocumentsFunc(fnValue)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	root, err := buildRoot(entries)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	return Source{Path: filepath.Clean(path), Root: root}, nil
}

func buildRoot(entries []map[string]any) (*document.Node, error) {
	root := document.NewNode(document.RootTag)
	if len(entries) == 0 {
		return nil, document.Errorf(root, "%s returned no elements", GoDocumentsFunc)
	}
	for idx, raw := range entries {
		payload, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("element[%d]: %w", idx, err)
		}
		entry, err := document.ParseYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("element[%d]: %w", idx, err)
		}
		for _, child := range entry.Children() {
			root.Append(child)
		}
	}
	return root, nil
}

func invokeDocumentsFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", GoDocumentsFunc)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", GoDocumentsFunc)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", GoDocumentsFunc)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", GoDocumentsFunc)
	}
	docsVal := results[0]
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", GoDocumentsFunc)
	}
	if docs, ok := docsVal.Interface().([]map[string]any); ok {
		return docs, nil
	}
	if docsVal.Kind() == reflect.Slice {
		result := make([]map[string]any, docsVal.Len())
		for i := 0; i < docsVal.Len(); i++ {
			m, ok := docsVal.Index(i).Interface().(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", GoDocumentsFunc, i)
			}
			result[i] = m
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", GoDocumentsFunc)
}
