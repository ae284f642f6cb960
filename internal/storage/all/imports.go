// Package all wires every built-in storage backend into the storage
// factory.
//
// The package exists purely for side effects: a blank import causes the
// init functions of each backend to run, registering their repository
// factories and DDL bootstrappers with the storage package. Importing it
// makes the following storage kinds available at runtime:
//
//   - "postgres" (musicetl/internal/storage/postgres)
//   - "mysql"    (musicetl/internal/storage/mysql)
//   - "mssql"    (musicetl/internal/storage/mssql)
//   - "sqlite"   (musicetl/internal/storage/sqlite)
//
// A binary that should support only a subset of backends can import the
// required backend packages directly instead of this one.
package all

import (
	_ "musicetl/internal/storage/mssql"
	_ "musicetl/internal/storage/mysql"
	_ "musicetl/internal/storage/postgres"
	_ "musicetl/internal/storage/sqlite"
)
