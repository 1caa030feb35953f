// Package database provides the connection pool for the PostgreSQL warehouse.
//
// Every job writes into one database; the configured dataset is a schema in it,
// so a table reference project.dataset.table maps to database.schema.table.
package database
