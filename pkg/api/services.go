package api

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/config"
	"github.com/travigo/urbantransit/pkg/database"
	"github.com/travigo/urbantransit/pkg/documents"
	"github.com/travigo/urbantransit/pkg/graph"
	"github.com/travigo/urbantransit/pkg/metrics"
	"github.com/travigo/urbantransit/pkg/redis_client"
	"github.com/travigo/urbantransit/pkg/reference"
	"github.com/travigo/urbantransit/pkg/routing"
	"github.com/travigo/urbantransit/pkg/simulator"
	"github.com/travigo/urbantransit/pkg/topology"
	"github.com/travigo/urbantransit/pkg/transit"
)

var ErrNoTopology = errors.New("no topology source: set URBANTRANSIT_NEO4J_URI or provide a topology file")

// TopologyFiles point at the CSV exports used when no graph database is configured
type TopologyFiles struct {
	Edges string
	Stops string
}

type Services struct {
	Composer  *routing.Composer
	Simulator *simulator.Simulator
	Metrics   *metrics.Collector

	graphConnection *graph.Connection
}

// NewServices wires the composer and simulator onto the already connected
// stores. Neo4j is preferred for topology, the CSV files are the fallback.
func NewServices(files TopologyFiles) (*Services, error) {
	services := &Services{
		Metrics: metrics.NewCollector(),
	}

	topologyProvider, err := services.loadTopology(files)
	if err != nil {
		return nil, err
	}

	var referenceProvider transit.ReferenceDataProvider = reference.NewStore(database.PostgresPool)
	if redis_client.Client != nil {
		ttl := config.DurationValue("URBANTRANSIT_REFERENCE_CACHE_TTL", reference.DefaultCacheExpiration)
		referenceProvider = reference.NewCachedData(referenceProvider, redis_client.Client, ttl)

		log.Info().Dur("ttl", ttl).Msg("Reference data cache enabled")
	}

	lineStore := documents.NewLineStore(database.GetCollection(database.LinesCollection))

	services.Composer = &routing.Composer{
		Topology:  topologyProvider,
		Reference: referenceProvider,
		Documents: lineStore,
		MaxHops:   config.IntValue("URBANTRANSIT_ROUTE_MAX_HOPS", routing.DefaultMaxHops),
	}

	services.Simulator = &simulator.Simulator{
		Config:      simulator.GetConfig(),
		Documents:   lineStore,
		Reference:   referenceProvider,
		Assignments: reference.NewStore(database.PostgresPool),
		Vehicles:    documents.NewVehicleStore(database.GetCollection(database.VehiclesCollection)),
		Metrics:     services.Metrics,
	}

	return services, nil
}

func (s *Services) loadTopology(files TopologyFiles) (transit.TopologyProvider, error) {
	connection, err := graph.Connect(false)
	if err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	if connection != nil {
		s.graphConnection = connection
		log.Info().Str("database", connection.Database).Msg("Using Neo4j topology")

		return graph.NewTopology(connection), nil
	}

	if files.Edges == "" {
		return nil, ErrNoTopology
	}

	return LoadTopologyFiles(files)
}

func LoadTopologyFiles(files TopologyFiles) (*topology.Graph, error) {
	topologyGraph := topology.NewGraph()

	if files.Stops != "" {
		stopsFile, err := os.Open(files.Stops)
		if err != nil {
			return nil, err
		}
		defer stopsFile.Close()

		if err := topologyGraph.LoadStopsCSV(stopsFile); err != nil {
			return nil, fmt.Errorf("loading stops from %s: %w", files.Stops, err)
		}
	}

	edgesFile, err := os.Open(files.Edges)
	if err != nil {
		return nil, err
	}
	defer edgesFile.Close()

	if err := topologyGraph.LoadEdgesCSV(edgesFile); err != nil {
		return nil, fmt.Errorf("loading edges from %s: %w", files.Edges, err)
	}

	log.Info().Int("stops", topologyGraph.StopCount()).Str("file", files.Edges).Msg("Loaded in-process topology")

	return topologyGraph, nil
}

func (s *Services) Close(ctx context.Context) {
	if s.graphConnection != nil {
		if err := s.graphConnection.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close Neo4j driver")
		}
	}
}
