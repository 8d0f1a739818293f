// Package tables registers the raw table shapes with the core registry.
// Import this package to ensure all shapes are registered.
package tables

// This file exists to provide a single import point.
// Each shape file uses init() to register its shape.
