// Package search plans and runs the paged photo search for one keyword.
//
// A keyword's quota is covered by full pages of the configured size plus at
// most one smaller remainder page. Pages are fetched lazily through a
// PageIterator; Plan drains it and returns either every reference or an
// error, never a partial list.
package search
