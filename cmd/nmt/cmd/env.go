// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envSearchDepth is how many directories loadEnvFile walks up.
const envSearchDepth = 5

// loadEnvFile loads the nearest .env file in the working directory or one
// of its parents. Variables already set in the environment win.
func loadEnvFile() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	path, ok := findEnvFile(dir)
	if !ok {
		return nil
	}
	return godotenv.Load(path)
}

func findEnvFile(dir string) (string, bool) {
	for i := 0; i < envSearchDepth; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
