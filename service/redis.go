package service

import (
	"net/http"

	"pyape/orm"
	"pyape/rdb"
	"pyape/response"

	"github.com/gin-gonic/gin"
)

type RedisService struct {
	clients *rdb.Clients
	rconf   *orm.RegionalConfig
}

func NewRedisService(clients *rdb.Clients, rconf *orm.RegionalConfig) *RedisService {
	return &RedisService{clients: clients, rconf: rconf}
}

// PingRegional pings the redis of a regional.
func (s *RedisService) PingRegional(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	client, err := s.clients.RegionalClient(s.rconf, uri.R)
	switch {
	case orm.IsUnknownTenant(err):
		response.NotFoundError(c, err.Error(), response.UnknownRegional)
		return
	case err != nil:
		response.Error(c, err.Error(), response.NotSpecified)
		return
	}
	pong, err := client.Ping(c.Request.Context()).Result()
	if err != nil {
		response.HTTPError(c, http.StatusServiceUnavailable, err.Error(), response.NotSpecified)
		return
	}
	response.Success(c, pong)
}

func RegisterRedis(group *gin.RouterGroup, s *RedisService) {
	group.GET("/redis/:r/ping", s.PingRegional)
}
