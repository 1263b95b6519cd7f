package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
	"learning-service/internal/domain"
)

//go:embed module.schema.json
var moduleSchemaJSON []byte

var moduleSchema = gojsonschema.NewBytesLoader(moduleSchemaJSON)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateQuestion, QuestionFile{})
	return v
}

func validateQuestion(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionFile)
	if q.CorrectAnswer >= len(q.Options) {
		sl.ReportError(q.CorrectAnswer, "CorrectAnswer", "correctAnswer", "ltoptions", "")
	}
}

// ValidationError lists every schema or rule violation found in one file.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}

// ListFiles returns the module definition files of dir in lexical order.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads, validates and decodes one module definition.
func LoadFile(path string) (ModuleFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ModuleFile{}, err
	}
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if raw, err = yamlToJSON(raw); err != nil {
			return ModuleFile{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return Decode(name, raw)
}

// Decode validates a JSON module definition against the schema and the field rules.
func Decode(name string, raw []byte) (ModuleFile, error) {
	result, err := gojsonschema.Validate(moduleSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return ModuleFile{}, &ValidationError{File: name, Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return ModuleFile{}, &ValidationError{File: name, Problems: problems}
	}

	var f ModuleFile
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&f); err != nil {
		return ModuleFile{}, &ValidationError{File: name, Problems: []string{err.Error()}}
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ModuleFile{}, err
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return ModuleFile{}, &ValidationError{File: name, Problems: problems}
	}
	return f, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one schema.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	normalized, err := normalizeYAML(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

func normalizeYAML(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("yaml key %v is not a string", k)
			}
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []interface{}:
		for i, item := range t {
			n, err := normalizeYAML(item)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
