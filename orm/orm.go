// Package orm binds gorm to several databases at once.
//
// A Manager opens one engine per bind key from an ordered URI spec and keeps
// one Namespace of table definitions per bind key. Sessions route every
// table to the engine of its bind key. DB adds table DDL across bind keys
// and a Registry of tables defined at runtime: single dynamic tables and
// per-regional tables named {prefix}{r}.
//
//	db, err := orm.Open(orm.URISpec{{Key: "a", URI: "sqlite:///a.db"}}, nil)
//	ns, _ := db.Model("a")
//	users, _ := ns.Define("user", &User{})
//	_ = db.CreateTables(ctx, nil, "a")
//	db.Query(ctx, users).Create(&User{Name: "x"})
//
// Nothing here is global: construct a DB once at startup and pass it to
// whatever owns the request lifecycle, which must call Remove when a scoped
// unit of work ends.
package orm
