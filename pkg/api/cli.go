package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/travigo/urbantransit/pkg/database"
	"github.com/travigo/urbantransit/pkg/elastic_client"
	"github.com/travigo/urbantransit/pkg/graph"
	"github.com/travigo/urbantransit/pkg/redis_client"
	"github.com/travigo/urbantransit/pkg/transit"
	"github.com/urfave/cli/v2"
)

// TopologyFlags are shared by every command that composes routes
var TopologyFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "topology-file",
		Usage:   "CSV edge list used when Neo4j is not configured",
		EnvVars: []string{"URBANTRANSIT_TOPOLOGY_FILE"},
	},
	&cli.StringFlag{
		Name:    "stops-file",
		Usage:   "CSV stop list for the in-process topology",
		EnvVars: []string{"URBANTRANSIT_TOPOLOGY_STOPS_FILE"},
	},
}

// Connect opens the stores every command needs. Elasticsearch and Redis are
// optional.
func Connect() error {
	if err := database.Connect(); err != nil {
		return err
	}
	if err := elastic_client.Connect(false); err != nil {
		return err
	}
	if err := redis_client.Connect(false); err != nil {
		return err
	}

	return nil
}

func Disconnect(services *Services) {
	if services != nil {
		services.Close(context.Background())
	}

	elastic_client.WaitUntilQueueEmpty()
	redis_client.Disconnect()
	database.Disconnect()
}

func TopologyFilesFromCLI(c *cli.Context) TopologyFiles {
	return TopologyFiles{
		Edges: c.String("topology-file"),
		Stops: c.String("stops-file"),
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the route and live position web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				}, TopologyFlags...),
				Action: func(c *cli.Context) error {
					if err := Connect(); err != nil {
						return err
					}

					services, err := NewServices(TopologyFilesFromCLI(c))
					if err != nil {
						return err
					}
					defer Disconnect(services)

					return SetupServer(c.String("listen"), services)
				},
			},
		},
	}
}

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "print the result as JSON instead of the pretty printed structure",
}

func printResult(c *cli.Context, result any) error {
	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	_, err := pretty.Println(result)
	return err
}

func RegisterRouteCLI() *cli.Command {
	return &cli.Command{
		Name:      "route",
		Usage:     "Compose the best route between two stops",
		ArgsUsage: "<origin stop id> <destination stop id>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "units",
				Value: string(transit.UnitPreferenceMetric),
				Usage: "metric or imperial",
			},
			jsonFlag,
		}, TopologyFlags...),
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("route needs an origin and a destination stop id", 1)
			}

			if err := Connect(); err != nil {
				return err
			}

			services, err := NewServices(TopologyFilesFromCLI(c))
			if err != nil {
				return err
			}
			defer Disconnect(services)

			units := transit.UnitPreferenceMetric
			if c.String("units") == string(transit.UnitPreferenceImperial) {
				units = transit.UnitPreferenceImperial
			}

			route, err := services.Composer.FindRoute(c.Context, c.Args().Get(0), c.Args().Get(1), units)
			if err != nil {
				return err
			}

			return printResult(c, route)
		},
	}
}

func RegisterLiveCLI() *cli.Command {
	return &cli.Command{
		Name:      "live",
		Usage:     "Simulate the current positions of the vehicles on a line",
		ArgsUsage: "<line id>",
		Flags: append([]cli.Flag{
			&cli.TimestampFlag{
				Name:   "at",
				Usage:  "simulate at this time instead of now",
				Layout: time.RFC3339,
			},
			jsonFlag,
		}, TopologyFlags...),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("live needs a line id", 1)
			}

			if err := Connect(); err != nil {
				return err
			}

			services, err := NewServices(TopologyFilesFromCLI(c))
			if err != nil {
				return err
			}
			defer Disconnect(services)

			now := time.Now()
			if at := c.Timestamp("at"); at != nil {
				now = *at
			}

			positions, err := services.Simulator.ComputePositions(c.Context, c.Args().First(), now)
			if err != nil {
				return err
			}

			if positions.Note != "" {
				fmt.Fprintln(os.Stderr, positions.Note)
			}

			return printResult(c, positions)
		},
	}
}

func RegisterTopologyCLI() *cli.Command {
	return &cli.Command{
		Name:  "topology",
		Usage: "Manage the stop topology graph",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "load the CSV topology into Neo4j",
				Flags: TopologyFlags,
				Action: func(c *cli.Context) error {
					files := TopologyFilesFromCLI(c)
					if files.Edges == "" {
						return cli.Exit("--topology-file is required", 1)
					}

					topologyGraph, err := LoadTopologyFiles(files)
					if err != nil {
						return err
					}

					connection, err := graph.Connect(true)
					if err != nil {
						return err
					}
					defer connection.Close(context.Background())

					return graph.NewTopology(connection).Import(c.Context, topologyGraph.Stops(), topologyGraph.Edges())
				},
			},
		},
	}
}
