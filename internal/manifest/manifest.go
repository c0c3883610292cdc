// manifest.go: Package manifest writes the image to name mapping consumed by the game.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pinggame/pingharvest/internal/errors"
)

const componentName = "manifest"

// Record describes one downloaded image
type Record struct {
	Name   string  `json:"name"`    // display name
	NameKo *string `json:"name_ko"` // localized name, null when unresolved
	NameEn string  `json:"name_en"` // canonical name
	Season *int    `json:"season"`  // null when unknown
	File   string  `json:"file"`    // path relative to the output directory
	Source string  `json:"source"`
}

// Summary counts the images and distinct display names in a manifest
type Summary struct {
	Images int
	Names  int
}

// String returns the summary line printed at the end of a run
func (s Summary) String() string {
	return fmt.Sprintf("Downloaded %d images for %d names.", s.Images, s.Names)
}

// Summarize counts records and distinct display names
func Summarize(records []Record) Summary {
	names := make(map[string]struct{}, len(records))
	for i := range records {
		names[records[i].Name] = struct{}{}
	}
	return Summary{Images: len(records), Names: len(names)}
}

// Marshal renders records as an indented JSON array with non-ASCII text kept literal
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryManifest).
			Context("operation", "encode").
			Build()
	}
	// Encoder appends a newline; keep the document byte for byte a JSON array
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write replaces the manifest at path atomically, creating its directory
func Write(path string, records []Record) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileError(err, "create_directory", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fileError(err, "create_temp_file", dir)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fileError(writeErr, "write_temp_file", tmpPath)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fileError(err, "chmod_temp_file", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fileError(err, "rename_temp_file", path)
	}
	return nil
}

// Read loads a manifest written by Write
func Read(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(err, "read", path)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	return records, nil
}

func fileError(err error, operation, path string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		Context("path", path).
		Build()
}
