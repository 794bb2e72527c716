// Package types defines the value model, timestamps, configuration,
// collaborator interfaces, and standard error types for the Strata driver.
package types
