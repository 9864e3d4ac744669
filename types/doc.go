// Package types holds the value types shared by repositories and callers:
// page requests, sort orders, result pages and the enum contract.
package types
