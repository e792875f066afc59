// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the crosspair configuration directory.
func GetConfigDir() string {
	// Check for explicit override first
	if dir := os.Getenv("CROSSPAIR_CONFIG_DIR"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".crosspair"
	}
	return filepath.Join(home, ".crosspair")
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetDataDir returns the directory where downloaded datasets are cached.
func GetDataDir() string {
	if dir := os.Getenv("CROSSPAIR_DATA_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(GetConfigDir(), "data")
}
