// Package testsupport provides shared helpers for package tests: temp-backed
// configs, store setup, and stubbed external binaries.
package testsupport
