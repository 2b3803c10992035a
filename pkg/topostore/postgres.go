// Package topostore provides the concrete Postgres/PostGIS implementation
// of the topology store contract (spec.md §6): schema bootstrap, batched
// insert, geographic length population, and index creation, built on
// jackc/pgx/v5 and jmoiron/sqlx the same way the location-microservice
// repo's internal/repository/postgres package is built.
package topostore

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/exatel-oss/osmtopo/pkg/topology"
)

// Config holds the connection parameters for the topology store.
type Config struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string
}

// Postgres is the topology.Store implementation backed by PostGIS.
type Postgres struct {
	db  *sqlx.DB
	log *zap.Logger
}

// New opens a connection pool and verifies it with a ping, mirroring the
// location-microservice's postgres.New constructor.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Postgres, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("topostore: connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("topostore: ping: %w", err)
	}

	log.Info("topology store connected",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("database", cfg.DBName))

	return &Postgres{db: db, log: log}, nil
}

// NewForTest wraps an already-open sqlx.DB, for tests running against a
// local/test Postgres instance.
func NewForTest(db *sqlx.DB, log *zap.Logger) *Postgres {
	if log == nil {
		log = zap.NewNop()
	}
	return &Postgres{db: db, log: log}
}

// Bootstrap drops and recreates r_nodes/r_ways.
func (p *Postgres) Bootstrap() error {
	_, err := p.db.Exec(`
		DROP TABLE IF EXISTS r_ways;
		DROP TABLE IF EXISTS r_nodes;

		CREATE TABLE r_nodes (
			id   BIGINT PRIMARY KEY,
			lon  DOUBLE PRECISION NOT NULL,
			lat  DOUBLE PRECISION NOT NULL,
			geom GEOMETRY(POINT, 4326) NOT NULL
		);

		CREATE TABLE r_ways (
			id     BIGINT PRIMARY KEY,
			id_osm BIGINT NOT NULL,
			type   INT NOT NULL,
			source BIGINT NOT NULL,
			target BIGINT NOT NULL,
			lon1   DOUBLE PRECISION NOT NULL,
			lat1   DOUBLE PRECISION NOT NULL,
			lon2   DOUBLE PRECISION NOT NULL,
			lat2   DOUBLE PRECISION NOT NULL,
			name   TEXT NOT NULL DEFAULT '',
			length DOUBLE PRECISION,
			geom   GEOMETRY(LINESTRING, 4326) NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("topostore: bootstrap: %w", err)
	}
	return nil
}

// InsertNodes persists a batch of topology nodes inside a single
// transaction, matching spec.md §5's CHUNK_SIZE batching policy.
func (p *Postgres) InsertNodes(nodes []topology.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return fmt.Errorf("topostore: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`
		INSERT INTO r_nodes (id, lon, lat, geom)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($2, $3), 4326))
	`)
	if err != nil {
		return fmt.Errorf("topostore: prepare node insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.Exec(int64(n.ID), n.Lon, n.Lat); err != nil {
			return fmt.Errorf("topostore: insert node %d: %w", n.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("topostore: commit nodes: %w", err)
	}
	return nil
}

// InsertEdges persists a batch of topology edges inside a single
// transaction.
func (p *Postgres) InsertEdges(edges []topology.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return fmt.Errorf("topostore: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`
		INSERT INTO r_ways (id, id_osm, type, source, target, lon1, lat1, lon2, lat2, name, geom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, ST_SetSRID(ST_GeomFromText($11), 4326))
	`)
	if err != nil {
		return fmt.Errorf("topostore: prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		_, err := stmt.Exec(
			e.ID, e.OSMWayID, e.Type, int64(e.Source), int64(e.Target),
			e.Lon1, e.Lat1, e.Lon2, e.Lat2, e.Name, lineStringWKT(e.Geometry),
		)
		if err != nil {
			return fmt.Errorf("topostore: insert edge %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("topostore: commit edges: %w", err)
	}
	return nil
}

func lineStringWKT(ls orb.LineString) string {
	var b strings.Builder
	b.WriteString("LINESTRING(")
	for i, pt := range ls {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v %v", pt[0], pt[1])
	}
	b.WriteString(")")
	return b.String()
}

// PopulateLengths asks PostGIS to compute each edge's geographic length in
// meters from its linestring geometry.
func (p *Postgres) PopulateLengths() error {
	_, err := p.db.Exec(`UPDATE r_ways SET length = ST_Length(geom::geography)`)
	if err != nil {
		return fmt.Errorf("topostore: populate lengths: %w", err)
	}
	return nil
}

// CreateIndexes builds the GIST spatial indexes and B-tree lookup indexes
// spec.md §6 requires.
func (p *Postgres) CreateIndexes() error {
	_, err := p.db.Exec(`
		CREATE INDEX r_nodes_geom_idx ON r_nodes USING GIST (geom);
		CREATE INDEX r_ways_geom_idx ON r_ways USING GIST (geom);
		CREATE UNIQUE INDEX r_nodes_id_idx ON r_nodes (id);
		CREATE UNIQUE INDEX r_ways_id_idx ON r_ways (id);
		CREATE INDEX r_ways_id_osm_idx ON r_ways (id_osm);
	`)
	if err != nil {
		return fmt.Errorf("topostore: create indexes: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

var _ topology.Store = (*Postgres)(nil)
