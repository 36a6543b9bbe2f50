// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const licenseHeader = "// Copyright (c) 2025 Daniel Kuo.\n// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.\n"

func TestSourceFilesCarryLicenseHeader(t *testing.T) {
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(string(data), licenseHeader) {
			t.Errorf("%s is missing the license header", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk source tree: %v", err)
	}
}
