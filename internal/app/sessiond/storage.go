package sessiond

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v9"
	"github.com/gofrs/uuid"
)

var errValidationNotFound = errors.New("validation not found")

// storage caches successful validations keyed by username and client IP.
type storage interface {
	GetValidation(username string, ip net.IP) (uuid.UUID, error)
	PutValidation(username string, ip net.IP, playerUUID uuid.UUID) error
	Close() error
}

func validationKey(username string, ip net.IP) string {
	key := xxhash.New()
	_, _ = key.WriteString(username)
	_, _ = key.WriteString(ip.String())
	return strconv.FormatUint(key.Sum64(), 16)
}

type redisConfig struct {
	URI string        `mapstructure:"uri"`
	TTL time.Duration `mapstructure:"ttl"`
}

type redisStorage struct {
	cli          *redis.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	ttl          time.Duration
}

func newRedis(cfg redisConfig) (*redisStorage, error) {
	opts, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 3 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}

	return &redisStorage{
		cli:          redis.NewClient(opts),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		ttl:          cfg.TTL,
	}, nil
}

func (s redisStorage) PutValidation(username string, ip net.IP, playerUUID uuid.UUID) error {
	key := validationKey(username, ip)
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	return s.cli.Set(ctx, key, playerUUID.String(), s.ttl).Err()
}

func (s redisStorage) GetValidation(username string, ip net.IP) (uuid.UUID, error) {
	key := validationKey(username, ip)
	ctx, cancel := context.WithTimeout(context.Background(), s.readTimeout)
	defer cancel()
	v, err := s.cli.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, errValidationNotFound
		}
		return uuid.Nil, err
	}

	return uuid.FromString(v)
}

func (s redisStorage) Close() error {
	return s.cli.Close()
}
