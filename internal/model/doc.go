// Package model defines the domain types and value objects for the
// cratectl CLI.
//
// This package contains pure data structures with no external dependencies.
// The central type is NewCrate, the metadata envelope sent to the registry
// alongside a package archive on publish. It is built once from a manifest
// or a stdin payload and serialized exactly once.
//
// The package also defines exit codes (ExitCode) and the unified error type
// (CLIError) into which every failure of the command pipeline is converted
// before it reaches the error reporter.
package model
