// Package migrations embeds the sqlite schema for meals, carts and orders.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
