// Package database stores the history of urltally runs in SQLite.
//
// Every saved run keeps its full report as JSON next to a few summary
// columns, so listing runs is cheap and comparing two runs only needs the
// two rows involved. The driver is modernc.org/sqlite, which is CGO-free.
package database
