// Package store implements persistence for alarm events.
//
// The Store interface exposes the query contract the lifecycle manager
// depends on. Filters are structured predicates (field, operator, value)
// that each backend renders safely: the Postgres store produces
// parameterized SQL, the memory store evaluates them directly. Raw string
// concatenation never reaches a query.
package store
