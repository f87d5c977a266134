// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (even as a blank import) runs the init functions of each
// concrete backend, which register their factories and DDL dialects with the
// storage package:
//
//   - "postgres" (hdidash/internal/storage/postgres)
//   - "mysql"    (hdidash/internal/storage/mysql)
//   - "mssql"    (hdidash/internal/storage/mssql)
//   - "sqlite"   (hdidash/internal/storage/sqlite)
//
// Typical usage (in cmd/hdidash):
//
//	import _ "hdidash/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:  run.Storage.Kind,
//	    DSN:   run.Storage.DB.DSN,
//	    Table: run.Storage.DB.Table,
//	})
//	if err != nil { ... }
//	defer repo.Close()
//	_, err = storage.Save(ctx, repo, table, storage.SaveOptions{...})
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "hdidash/internal/storage/mssql"
	_ "hdidash/internal/storage/mysql"
	_ "hdidash/internal/storage/postgres"
	_ "hdidash/internal/storage/sqlite"
)
