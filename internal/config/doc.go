// Package config loads the YAML run configuration.
//
// Values of the form ${VAR} are expanded from the environment before parsing. Secrets
// that are left empty in the file are then filled from well-known environment variables
// (see Secrets), and a .env file in the working directory is honored when present.
package config
