package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/travigo/urbantransit/pkg/util"
)

const defaultURI = "neo4j://localhost:7687"
const defaultUser = "neo4j"
const defaultDatabase = "neo4j"

type Connection struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// Connect returns nil without error when no URI is configured, callers
// then fall back to the in-process topology
func Connect(required bool) (*Connection, error) {
	env := util.GetEnvironmentVariables()

	uri := env["URBANTRANSIT_NEO4J_URI"]
	if uri == "" {
		if !required {
			return nil, nil
		}
		uri = defaultURI
	}

	user := defaultUser
	if env["URBANTRANSIT_NEO4J_USER"] != "" {
		user = env["URBANTRANSIT_NEO4J_USER"]
	}

	database := defaultDatabase
	if env["URBANTRANSIT_NEO4J_DATABASE"] != "" {
		database = env["URBANTRANSIT_NEO4J_DATABASE"]
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, env["URBANTRANSIT_NEO4J_PASSWORD"], ""))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return &Connection{Driver: driver, Database: database}, nil
}

func (c *Connection) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}
