package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tourguide/internal/models"
)

const schema = `
create table if not exists landmarks (
  blob_name                  text primary key,
  image_url                  text,
  description                text,
  latitude                   double precision,
  longitude                  double precision,
  formatted_address          text,
  formatted_phone_number     text,
  international_phone_number text,
  types                      text[],
  website                    text,
  wikipedia_extract          text,
  audio_url                  text,
  created_at                 timestamptz not null default now()
)`

// Postgres stores records in the landmarks table. Absent fields are NULL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn, verifies the connection and creates the
// landmarks table when it is missing.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create landmarks table: %w", err)
	}
	log.Printf("db connected: %s@%s/%s", cfg.ConnConfig.User, cfg.ConnConfig.Host, cfg.ConnConfig.Database)
	return p, nil
}

func (p *Postgres) Put(ctx context.Context, rec models.Record) error {
	const q = `
insert into landmarks (
  blob_name, image_url, description, latitude, longitude,
  formatted_address, formatted_phone_number, international_phone_number,
  types, website, wikipedia_extract, audio_url
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
on conflict (blob_name) do update
set image_url = excluded.image_url,
    description = excluded.description,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    formatted_address = excluded.formatted_address,
    formatted_phone_number = excluded.formatted_phone_number,
    international_phone_number = excluded.international_phone_number,
    types = excluded.types,
    website = excluded.website,
    wikipedia_extract = excluded.wikipedia_extract,
    audio_url = excluded.audio_url`

	var lat, lon *float64
	if loc, ok := rec.Location.Get(); ok {
		lat, lon = &loc.Lat, &loc.Lon
	}
	_, err := p.pool.Exec(ctx, q,
		rec.BlobName, rec.ImageURL.Ptr(), rec.Description.Ptr(), lat, lon,
		rec.FormattedAddress.Ptr(), rec.FormattedPhoneNumber.Ptr(), rec.InternationalPhoneNumber.Ptr(),
		rec.Types, rec.Website.Ptr(), rec.Extract.Ptr(), rec.AudioURL.Ptr(),
	)
	if err != nil {
		return fmt.Errorf("store record %s: %w", rec.BlobName, err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]models.Record, error) {
	const q = `
select blob_name, image_url, description, latitude, longitude,
       formatted_address, formatted_phone_number, international_phone_number,
       types, website, wikipedia_extract, audio_url, created_at
from landmarks
order by created_at, blob_name`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.CollectableRow) (models.Record, error) {
	var (
		rec                                models.Record
		imageURL, description              *string
		lat, lon                           *float64
		address, phone, intlPhone, website *string
		extract, audioURL                  *string
	)
	err := row.Scan(&rec.BlobName, &imageURL, &description, &lat, &lon,
		&address, &phone, &intlPhone, &rec.Types, &website, &extract, &audioURL, &rec.CreatedAt)
	if err != nil {
		return models.Record{}, err
	}
	rec.ImageURL = models.FromPtr(imageURL)
	rec.Description = models.FromPtr(description)
	if lat != nil && lon != nil {
		rec.Location = models.Some(models.Coordinates{Lat: *lat, Lon: *lon})
	}
	rec.FormattedAddress = models.FromPtr(address)
	rec.FormattedPhoneNumber = models.FromPtr(phone)
	rec.InternationalPhoneNumber = models.FromPtr(intlPhone)
	rec.Website = models.FromPtr(website)
	rec.Extract = models.FromPtr(extract)
	rec.AudioURL = models.FromPtr(audioURL)
	return rec, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

func (p *Postgres) Close() { p.pool.Close() }
