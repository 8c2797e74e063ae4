package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/ezoic/carprice/pkg/errors"
)

// SaveModel writes m to filename using encoding/gob. Estimators keep their
// learned state in exported fields so that gob can see it.
func SaveModel(m interface{}, filename string) error {
	file, err := os.Create(filepath.Clean(filename))
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}

	if err := SaveModelToWriter(m, file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "failed to close file")
	}
	return nil
}

// SaveModelToWriter gob-encodes m to w.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModel decodes filename into m, which must be a pointer.
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	return LoadModelFromReader(m, file)
}

// LoadModelFromReader gob-decodes r into m, which must be a pointer.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
