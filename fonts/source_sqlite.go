package fonts

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Catalog cache is a plain SQLite database with a single table, in the spirit
// of fontconfig caches. Rebuilding a catalog from font directories is slow
// enough to be worth caching between runs.

const cacheSchema = `CREATE TABLE IF NOT EXISTS fonts (
	family TEXT NOT NULL,
	style TEXT NOT NULL,
	PRIMARY KEY (family, style)
) WITHOUT ROWID;`

// LoadCache reads a catalog from a cache database, preserving row order.
func LoadCache(path string) (*Catalog, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("unable to open font cache '%s': %w", path, err)
	}
	defer conn.Close()

	c := NewCatalog()
	err = sqlitex.Execute(conn, `SELECT family, style FROM fonts ORDER BY family, style`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			c.Add(Name{Family: stmt.ColumnText(0), Style: stmt.ColumnText(1)})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to read font cache '%s': %w", path, err)
	}
	return c, nil
}

// SaveCache writes the catalog to a cache database, replacing previous
// content.
func SaveCache(path string, c *Catalog) error {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return fmt.Errorf("unable to create font cache '%s': %w", path, err)
	}
	defer conn.Close()

	if err := sqlitex.ExecuteScript(conn, cacheSchema+"\nDELETE FROM fonts;", nil); err != nil {
		return fmt.Errorf("unable to prepare font cache '%s': %w", path, err)
	}
	for _, n := range c.Entries() {
		err := sqlitex.Execute(conn, `INSERT OR IGNORE INTO fonts (family, style) VALUES (?, ?)`,
			&sqlitex.ExecOptions{Args: []any{n.Family, n.Style}})
		if err != nil {
			return fmt.Errorf("unable to store font cache entry %s: %w", n.Key(), err)
		}
	}
	return nil
}
