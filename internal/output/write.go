// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIO is returned when an input cannot be read or an output cannot be written
var ErrIO = errors.New("i/o error")

// ReadFile reads a whole input file, wrapping failures in ErrIO
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return data, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never see a partial file. An existing target is
// only replaced when force is set.
func WriteFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", ErrIO, path)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to sync %s: %v", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", ErrIO, path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: failed to set mode on %s: %v", ErrIO, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", ErrIO, path, err)
	}

	committed = true
	return nil
}
