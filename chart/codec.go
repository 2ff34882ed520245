package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a configuration document cannot be
// parsed at all. Individual malformed fields never produce it.
var ErrInvalidDocument = errors.New("chart: invalid configuration document")

// Decode reads a JSON configuration document.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("chart: reading document: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal parses a JSON configuration document.
func Unmarshal(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if cfg.Chart.Type == "" {
		cfg.Chart.Type = Simple
	}
	return cfg, nil
}

// DecodeYAML reads a YAML configuration document. YAML is bridged through
// JSON so both formats share one set of field rules.
func DecodeYAML(r io.Reader) (Config, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Unmarshal(data)
}

// DecodeFile picks JSON or YAML from the file name extension.
func DecodeFile(name string, data []byte) (Config, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return Unmarshal(data)
	}
}

// Marshal returns the pretty-printed JSON form of cfg.
func Marshal(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("chart: encoding document: %w", err)
	}
	return data, nil
}

// Encode writes the pretty-printed JSON form of cfg.
func Encode(w io.Writer, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
