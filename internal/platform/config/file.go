package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	perr "glossarysync/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// LoadFile decodes the YAML document at path into dst
// unknown keys are rejected so typos surface instead of silently falling back to defaults
// an empty path is a no-op
func LoadFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return perr.WithField(perr.NotFoundf("config file %s does not exist", path), path)
		}
		return perr.Wrapf(err, perr.ErrorCodeValidation, "read config file %s", path)
	}
	return Decode(b, dst)
}

// Decode decodes a YAML document into dst with strict field checking
// an empty document leaves dst untouched
func Decode(b []byte, dst any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid config yaml")
	}
	return nil
}
