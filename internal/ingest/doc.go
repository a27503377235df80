// Package ingest reads sensor records from CSV input.
//
// Each row is "H.MM,name,value": a time of day in hours and minutes, a
// sensor name and a floating-point reading. Rows are returned in file order
// and are never re-sorted. Blank lines are skipped, as is a leading header
// row whose first field is not a time. Malformed rows stop reading with an
// error naming the line.
package ingest
