package orm

import (
	"net"
	"net/url"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultBind is the bind key used when a single URI string is configured,
// and the key callers pass to mean "the default bind key".
const DefaultBind = ""

const (
	driverSQLite   = "sqlite"
	driverMySQL    = "mysql"
	driverPostgres = "postgres"

	mysqlPoolSize    = 10
	mysqlPoolRecycle = 7200 // seconds, below the server's wait_timeout
	defaultOverflow  = 10
)

// BindURI pairs a bind key with the database URI it is bound to.
type BindURI struct {
	Key string
	URI string
}

// URISpec is the ordered set of binds. The first entry is the default bind.
type URISpec []BindURI

// SingleURI returns a spec with one URI under DefaultBind.
func SingleURI(uri string) URISpec {
	return URISpec{{Key: DefaultBind, URI: uri}}
}

// EngineOptions tunes the connection pool of every engine.
// Zero values mean "use the driver default" except where noted.
type EngineOptions struct {
	// PoolSize is the number of connections kept open. An explicit 0 is
	// meaningful for SQLite (no pooling) and invalid for in-memory SQLite.
	PoolSize *int `yaml:"pool_size"`
	// MaxOverflow is how many connections may be opened beyond PoolSize.
	MaxOverflow *int `yaml:"max_overflow"`
	// PoolRecycle closes connections older than this many seconds.
	PoolRecycle int `yaml:"pool_recycle"`

	Logger logger.Interface `yaml:"-"`
}

// enginePlan is everything needed to open one engine, derived from a URI.
type enginePlan struct {
	driver   string
	dsn      string
	inMemory bool

	maxOpen  int // 0 leaves database/sql unlimited
	maxIdle  *int
	lifetime time.Duration
}

func intPtr(v int) *int { return &v }

// planEngine parses an SQLAlchemy style URI and applies the driver specific
// pool tuning.
func planEngine(uri string, opts *EngineOptions) (*enginePlan, error) {
	if opts == nil {
		opts = &EngineOptions{}
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Annotatef(ErrConfiguration, "parse uri: %v", err)
	}
	driver := strings.SplitN(u.Scheme, "+", 2)[0]
	overflow := defaultOverflow
	if opts.MaxOverflow != nil {
		overflow = *opts.MaxOverflow
	}

	plan := &enginePlan{}
	switch driver {
	case "sqlite", "sqlite3":
		plan.driver = driverSQLite
		database := strings.TrimPrefix(u.Path, "/")
		if database == "" && u.Opaque != "" {
			database = u.Opaque
		}
		query := u.Query()
		// SQLite ships with foreign keys disabled; the driver runs the
		// pragma on every connection it opens.
		query.Set("_foreign_keys", "on")
		if database == "" || database == ":memory:" {
			plan.inMemory = true
			if opts.PoolSize != nil && *opts.PoolSize == 0 {
				return nil, errors.Annotatef(ErrConfiguration,
					"sqlite in-memory database with an empty pool is not possible due to data loss")
			}
			// Every connection to :memory: is a fresh database, so all
			// goroutines share the single connection.
			plan.dsn = ":memory:?" + query.Encode()
			plan.maxOpen = 1
			plan.maxIdle = intPtr(1)
			return plan, nil
		}
		plan.dsn = database + "?" + query.Encode()
		if opts.PoolSize == nil || *opts.PoolSize == 0 {
			plan.maxIdle = intPtr(0)
		} else {
			plan.maxIdle = intPtr(*opts.PoolSize)
			plan.maxOpen = *opts.PoolSize + overflow
		}
	case "mysql":
		plan.driver = driverMySQL
		cfg := mysqldriver.NewConfig()
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" && u.Host != "" {
			cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
		}
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		cfg.ParseTime = true
		cfg.Params = map[string]string{}
		for k, v := range u.Query() {
			if len(v) > 0 {
				cfg.Params[k] = v[0]
			}
		}
		if _, ok := cfg.Params["charset"]; !ok {
			cfg.Params["charset"] = "utf8"
		}
		plan.dsn = cfg.FormatDSN()

		poolSize := mysqlPoolSize
		if opts.PoolSize != nil {
			poolSize = *opts.PoolSize
		}
		recycle := mysqlPoolRecycle
		if opts.PoolRecycle > 0 {
			recycle = opts.PoolRecycle
		}
		plan.maxIdle = intPtr(poolSize)
		plan.maxOpen = poolSize + overflow
		plan.lifetime = time.Duration(recycle) * time.Second
	case "postgres", "postgresql":
		plan.driver = driverPostgres
		pu := *u
		pu.Scheme = "postgres"
		plan.dsn = pu.String()
		if opts.PoolSize != nil {
			plan.maxIdle = intPtr(*opts.PoolSize)
			plan.maxOpen = *opts.PoolSize + overflow
		}
		if opts.PoolRecycle > 0 {
			plan.lifetime = time.Duration(opts.PoolRecycle) * time.Second
		}
	default:
		return nil, errors.Annotatef(ErrConfiguration, "unsupported database driver %q", u.Scheme)
	}
	return plan, nil
}

func (p *enginePlan) dialector() gorm.Dialector {
	switch p.driver {
	case driverMySQL:
		return mysql.Open(p.dsn)
	case driverPostgres:
		return postgres.Open(p.dsn)
	default:
		return sqlite.Open(p.dsn)
	}
}

// openEngine connects to uri and applies the pool plan. It fails fast; there
// is no retry because engines are only built at startup.
func openEngine(uri string, opts *EngineOptions) (*gorm.DB, error) {
	plan, err := planEngine(uri, opts)
	if err != nil {
		return nil, err
	}
	cfg := &gorm.Config{}
	if opts != nil && opts.Logger != nil {
		cfg.Logger = opts.Logger
	}
	db, err := gorm.Open(plan.dialector(), cfg)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s engine", plan.driver)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if plan.maxIdle != nil {
		sqlDB.SetMaxIdleConns(*plan.maxIdle)
	}
	if plan.maxOpen > 0 {
		sqlDB.SetMaxOpenConns(plan.maxOpen)
	}
	if plan.lifetime > 0 {
		sqlDB.SetConnMaxLifetime(plan.lifetime)
	}
	return db, nil
}
