// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package data ships the SQL migrations inside the server binary.
package data

import "embed"

// Migrations holds data/migrations/*.sql in golang-migrate naming.
//
//go:embed migrations/*.sql
var Migrations embed.FS
