package reference

import (
	"github.com/travigo/urbantransit/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the relational reference schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "connection",
				Usage: "PostgreSQL connection string, defaults to URBANTRANSIT_POSTGRES_CONNECTION",
			},
		},
		Action: func(c *cli.Context) error {
			connString := c.String("connection")
			if connString == "" {
				connString = database.PostgresConnectionString()
			}

			return RunMigrations(connString)
		},
	}
}
