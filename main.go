package main

import (
	"context"

	"pyape/config"
	"pyape/dao/query"
	"pyape/logutils"
	"pyape/orm"
	"pyape/rdb"
	"pyape/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.GetConfig()
	if err := logutils.SetLevel(cfg.Log.Level); err != nil {
		logutils.Log.Fatal(err)
	}
	if err := query.InitDB(); err != nil {
		logutils.Log.Fatal("err init: ", err)
	}
	db := query.DB
	defer db.Close()

	rconf, err := cfg.RegionalConfig()
	if err != nil {
		logutils.Log.Fatal(err)
	}
	svc, err := service.NewRegionalService(db, orm.DefaultBind)
	if err != nil {
		logutils.Log.Fatal(err)
	}
	ctx := context.Background()
	if err := db.CreateAll(ctx); err != nil {
		logutils.Log.Fatal(err)
	}
	source := query.StaticRegionals(rconf)
	if rconf == nil {
		// no static list: the regional table is the source of truth
		source = svc.Regionals().Source()
		if rconf, err = svc.Regionals().LoadRegionalConfig(ctx, nil); err != nil {
			logutils.Log.Warn("no regional loaded: ", err)
		}
	}
	users := query.NewUserDao(db, source)
	if _, err := users.InitRoot(ctx); err != nil && !query.IsUserExists(err) {
		logutils.Log.Warn("init user tables: ", err)
	}

	redisClients, err := rdb.New(cfg.Redis.URI.Spec())
	if err != nil {
		logutils.Log.Fatal(err)
	}
	defer redisClients.Close()
	if err := redisClients.Ping(ctx); err != nil {
		logutils.Log.Warn(err)
	}
	if err := orm.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logutils.Log.Fatal(err)
	}

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api := r.Group("/api", service.SessionMiddleware(db))
	service.RegisterRegional(api, svc)
	service.RegisterUser(api, service.NewUserService(users))
	service.RegisterRedis(api, service.NewRedisService(redisClients, rconf))

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":7320"
	}
	if err := r.Run(addr); err != nil {
		logutils.Log.Fatal(err)
	}
}
