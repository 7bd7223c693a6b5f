package session

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/wricardo/landlord/game/service"
)

const (
	redisKeyPrefix = "game:"
	redisIndexKey  = "games"
)

// ConnSource hands out redis connections. *redis.Pool satisfies it.
type ConnSource interface {
	Get() redis.Conn
}

// NewRedisPool creates a connection pool for a redis:// URL
func NewRedisPool(url string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// RedisPersistence implements SessionPersistence on top of redis. Each game
// lives under game:<id> and the set "games" indexes the ids.
type RedisPersistence struct {
	conns ConnSource
}

// NewRedisPersistence creates a redis-backed session persistence layer
func NewRedisPersistence(conns ConnSource) *RedisPersistence {
	return &RedisPersistence{conns: conns}
}

func redisKey(id string) string {
	return redisKeyPrefix + key(id)
}

// Ping checks the connection
func (rp *RedisPersistence) Ping() error {
	conn := rp.conns.Get()
	defer conn.Close()

	if _, err := redis.String(conn.Do("PING")); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Save stores the session and records its id in the index
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := encodeSession(session, false)
	if err != nil {
		return err
	}
	if !validID(session.ID) {
		return ErrInvalidSessionID
	}

	conn := rp.conns.Get()
	defer conn.Close()

	reply, err := redis.String(conn.Do("SET", redisKey(session.ID), data))
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if reply != "OK" {
		return fmt.Errorf("failed to store session: unexpected reply %q", reply)
	}
	if _, err := conn.Do("SADD", redisIndexKey, key(session.ID)); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	if !validID(id) {
		return nil, ErrSessionNotFound
	}

	conn := rp.conns.Get()
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", redisKey(id)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return decodeSession(data)
}

// Delete removes a session and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	if !validID(id) {
		return ErrSessionNotFound
	}

	conn := rp.conns.Get()
	defer conn.Close()

	n, err := redis.Int(conn.Do("DEL", redisKey(id)))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if _, err := conn.Do("SREM", redisIndexKey, key(id)); err != nil {
		return fmt.Errorf("failed to unindex session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (rp *RedisPersistence) ListAll() ([]string, error) {
	conn := rp.conns.Get()
	defer conn.Close()

	ids, err := redis.Strings(conn.Do("SMEMBERS", redisIndexKey))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists checks if a session is stored
func (rp *RedisPersistence) Exists(id string) bool {
	if !validID(id) {
		return false
	}

	conn := rp.conns.Get()
	defer conn.Close()

	exists, err := redis.Bool(conn.Do("EXISTS", redisKey(id)))
	return err == nil && exists
}
