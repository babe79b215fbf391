// Package handlers implements the logic behind each CLI command.
//
// Clients and collaborators are created through package-level factory
// variables so tests can replace them with doubles.
package handlers
