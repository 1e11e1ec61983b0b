// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names every table and column the Postgres stores touch.

Stores build their SQL from these definitions so a renamed column is a
one-line change here instead of a grep through query strings. The DDL
itself lives in data/migrations.
*/
package schema

import "strings"

// List joins columns into a SELECT or INSERT column list.
func List(columns []string) string {
	return strings.Join(columns, ", ")
}

// Prefixed qualifies every column with alias, as in "u.id, u.username".
func Prefixed(alias string, columns []string) string {
	qualified := make([]string, len(columns))
	for index, column := range columns {
		qualified[index] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
