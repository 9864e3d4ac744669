// Package database provides the session factory for studentdb: connection
// configuration and pooling on top of Bun, SQL statement logging, error
// classification, model registration, optional table creation, and a
// transaction manager that scopes each unit of work to one transaction.
package database
