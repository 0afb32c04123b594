package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up the shared client used by the reference data cache. When
// required is false and no address is configured the cache is skipped.
func Connect(required bool) error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["URBANTRANSIT_REDIS_ADDRESS"] != "" {
		address = env["URBANTRANSIT_REDIS_ADDRESS"]
	} else if !required {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	if env["URBANTRANSIT_REDIS_PASSWORD"] != "" {
		password = env["URBANTRANSIT_REDIS_PASSWORD"]
	}

	if env["URBANTRANSIT_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["URBANTRANSIT_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	Client = client

	log.Info().Str("address", address).Int("database", database).Msg("Redis client setup")

	return nil
}

func Disconnect() error {
	if Client == nil {
		return nil
	}

	err := Client.Close()
	Client = nil

	return err
}
