// Package repository provides generic Bun repositories with per-call
// transactions, primary-key upserts, sorting and pagination, plus the
// Student repository and its derived finders.
package repository
