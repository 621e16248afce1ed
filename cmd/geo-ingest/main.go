// Command geo-ingest bulk-loads the geographic reference data (provinces,
// districts, wards, streets) from gzipped JSON dumps into the database.
//
// Each input file holds an array of provinces with nested districts, wards,
// and street name lists. Files are processed concurrently; street names are
// deduplicated with a Bloom filter since the dumps repeat them heavily.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/repository"
)

const (
	upsertProvinceSQL = `INSERT INTO provinces (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertDistrictSQL = `INSERT INTO districts (id, province_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET province_id = EXCLUDED.province_id, name = EXCLUDED.name`

	upsertWardSQL = `INSERT INTO wards (id, district_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET district_id = EXCLUDED.district_id, name = EXCLUDED.name`

	upsertStreetSQL = `INSERT INTO streets (id, district_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`
)

// streetNamespace makes street IDs deterministic per (district, name), so
// re-ingesting the same dumps is idempotent.
var streetNamespace = uuid.MustParse("8a4ff1c4-2f87-4d2b-9d6e-3a1f6b5c9e01")

type province struct {
	ID        string
	Name      string
	Districts []district
}

type district struct {
	ID      string
	Name    string
	Wards   []ward
	Streets []string
}

type ward struct {
	ID   string
	Name string
}

// seenStreets suppresses duplicate street rows across all files. Bloom false
// positives only skip an insert that ON CONFLICT would have skipped anyway.
type seenStreets struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

func (s *seenStreets) testAndAdd(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.TestAndAddString(key)
}

func main() {
	var (
		databaseURL string
		inputDir    string
		workers     int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&inputDir, "input-dir", "db/geo", "directory with *.json.gz geo dumps")
	flag.IntVar(&workers, "workers", 4, "number of files to process concurrently")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, inputDir, workers); err != nil {
		slog.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("ingest completed successfully")
}

func run(ctx context.Context, databaseURL, inputDir string, workers int) error {
	files, err := filepath.Glob(filepath.Join(inputDir, "*.json.gz"))
	if err != nil {
		return errors.Wrap(err, "glob input dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.json.gz files in %s", inputDir)
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Sized for the full national street list.
	seen := &seenStreets{filter: bloom.NewWithEstimates(2_000_000, 0.001)}

	slog.Info("ingesting geo dumps", slog.Int("files", len(files)), slog.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, file := range files {
		g.Go(func() error {
			if err := ingestFile(ctx, pool, seen, file); err != nil {
				return errors.Wrapf(err, "ingest %s", file)
			}
			return nil
		})
	}
	return g.Wait()
}

func ingestFile(ctx context.Context, pool *pgxpool.Pool, seen *seenStreets, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	d := jx.Decode(gz, 1<<16)

	var count int
	err = d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProvince(d)
		if err != nil {
			return err
		}
		if err := insertProvince(ctx, pool, seen, p); err != nil {
			return errors.Wrapf(err, "insert province %s", p.ID)
		}
		count++
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "decode provinces")
	}

	slog.Info("ingested file", slog.String("path", path), slog.Int("provinces", count))
	return nil
}

func decodeProvince(d *jx.Decoder) (province, error) {
	var p province
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "districts":
			err = d.Arr(func(d *jx.Decoder) error {
				dist, err := decodeDistrict(d)
				if err != nil {
					return err
				}
				p.Districts = append(p.Districts, dist)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

func decodeDistrict(d *jx.Decoder) (district, error) {
	var dist district
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			dist.ID, err = d.Str()
		case "name":
			dist.Name, err = d.Str()
		case "wards":
			err = d.Arr(func(d *jx.Decoder) error {
				var w ward
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						w.ID, err = d.Str()
					case "name":
						w.Name, err = d.Str()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				dist.Wards = append(dist.Wards, w)
				return nil
			})
		case "streets":
			err = d.Arr(func(d *jx.Decoder) error {
				name, err := d.Str()
				if err != nil {
					return err
				}
				dist.Streets = append(dist.Streets, name)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return dist, err
}

// insertProvince writes one province subtree in a single batch round-trip.
func insertProvince(ctx context.Context, pool *pgxpool.Pool, seen *seenStreets, p province) error {
	batch := &pgx.Batch{}
	batch.Queue(upsertProvinceSQL, p.ID, p.Name)

	for _, dist := range p.Districts {
		batch.Queue(upsertDistrictSQL, dist.ID, p.ID, dist.Name)
		for _, w := range dist.Wards {
			batch.Queue(upsertWardSQL, w.ID, dist.ID, w.Name)
		}
		for _, name := range dist.Streets {
			if seen.testAndAdd(dist.ID + "\x00" + name) {
				continue
			}
			id := uuid.NewSHA1(streetNamespace, []byte(dist.ID+"\x00"+name)).String()
			batch.Queue(upsertStreetSQL, id, dist.ID, name)
		}
	}

	return pool.SendBatch(ctx, batch).Close()
}
