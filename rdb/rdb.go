// Package rdb keeps one redis client per redis bind key, the way orm keeps
// one engine per database bind key.
package rdb

import (
	"context"

	"pyape/orm"

	"github.com/go-redis/redis/v8"
	"github.com/juju/errors"
)

type Clients struct {
	defaultKey string
	keys       []string
	clients    map[string]*redis.Client
}

// New creates a client for every entry of spec. Clients connect lazily. An
// empty spec gives a set with no clients.
func New(spec orm.URISpec) (*Clients, error) {
	c := &Clients{clients: map[string]*redis.Client{}}
	for i, b := range spec {
		if _, ok := c.clients[b.Key]; ok {
			_ = c.Close()
			return nil, errors.Annotatef(orm.ErrDuplicateBind, "redis %q", b.Key)
		}
		opt, err := redis.ParseURL(b.URI)
		if err != nil {
			_ = c.Close()
			return nil, errors.Annotatef(orm.ErrConfiguration, "redis %q: %v", b.Key, err)
		}
		if i == 0 {
			c.defaultKey = b.Key
		}
		c.clients[b.Key] = redis.NewClient(opt)
		c.keys = append(c.keys, b.Key)
	}
	return c, nil
}

// BindKeys lists the redis bind keys in configuration order.
func (c *Clients) BindKeys() []string {
	return append([]string(nil), c.keys...)
}

// Client returns the client of bindKey; orm.DefaultBind is the first one.
func (c *Clients) Client(bindKey string) (*redis.Client, error) {
	if bindKey == orm.DefaultBind {
		bindKey = c.defaultKey
	}
	client, ok := c.clients[bindKey]
	if !ok {
		return nil, errors.Annotatef(orm.ErrUnknownBind, "redis %q", bindKey)
	}
	return client, nil
}

// RegionalClient returns the client named by regional r's bind_key_redis.
func (c *Clients) RegionalClient(rconf *orm.RegionalConfig, r int) (*redis.Client, error) {
	if rconf == nil {
		return nil, errors.Annotatef(orm.ErrUnknownTenant, "%d", r)
	}
	reg, ok := rconf.Get(r)
	if !ok {
		return nil, errors.Annotatef(orm.ErrUnknownTenant, "%d", r)
	}
	return c.Client(reg.BindKeyRedis)
}

// Ping checks every client.
func (c *Clients) Ping(ctx context.Context) error {
	for _, key := range c.keys {
		if err := c.clients[key].Ping(ctx).Err(); err != nil {
			return errors.Annotatef(err, "redis %q", key)
		}
	}
	return nil
}

func (c *Clients) Close() error {
	var firstErr error
	for _, key := range c.keys {
		if err := c.clients[key].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
