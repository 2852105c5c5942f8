// Package database provides connection pool management for the PostgreSQL sales ledger.
package database
