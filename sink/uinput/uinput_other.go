//go:build !linux

// Package uinput provides the Linux pass-through backend. On other
// platforms the package compiles empty and registers nothing; pick the
// viiper or discard backend instead.
package uinput
