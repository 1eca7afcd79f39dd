//go:build purego

package index

import _ "modernc.org/sqlite"

const driverName = "sqlite"

func dataSource(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
