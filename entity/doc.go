// Package entity declares the tables mapped by studentdb. Importing it
// registers each model with the database package.
package entity
