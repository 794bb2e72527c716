//go:build mage

// Package main provides build targets for the strata project using Mage.
//
// Usage:
//
//	mage build     Compile the strata binary to bin/
//	mage test      Run all tests
//	mage lint      Run golangci-lint
//	mage clean     Remove build artifacts
//	mage install   Install strata to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

const (
	binaryName = "strata"
	binaryDir  = "bin"
	cmdDir     = "./cmd/strata"
)

// Build compiles the strata binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint over the whole module.
func Lint() error {
	if _, err := sh.Output("golangci-lint", "version"); err != nil {
		return fmt.Errorf("golangci-lint not found: %w", err)
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install installs the strata binary to GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", cmdDir)
}
