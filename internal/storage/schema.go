package storage

// Statements are applied one by one at open; every one is idempotent.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS performers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (name <> ''),
		genre TEXT NOT NULL CHECK (genre <> ''),
		CONSTRAINT unique_name_genre UNIQUE (name, genre)
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (name <> ''),
		location TEXT NOT NULL,
		CONSTRAINT unique_name_location UNIQUE (name, location)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		performer_id INTEGER NOT NULL REFERENCES performers(id) ON DELETE CASCADE,
		venue_id INTEGER NOT NULL REFERENCES venues(id) ON DELETE RESTRICT,
		date TEXT CHECK (date IS NULL OR date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]')
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS unique_performer_venue_date
		ON events(performer_id, venue_id, (COALESCE(date, '')))`,
	`CREATE INDEX IF NOT EXISTS events_venue_id ON events(venue_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS performers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL CHECK (name <> ''),
		genre TEXT NOT NULL CHECK (genre <> ''),
		CONSTRAINT unique_name_genre UNIQUE (name, genre)
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL CHECK (name <> ''),
		location TEXT NOT NULL,
		CONSTRAINT unique_name_location UNIQUE (name, location)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		performer_id BIGINT NOT NULL REFERENCES performers(id) ON DELETE CASCADE,
		venue_id BIGINT NOT NULL REFERENCES venues(id) ON DELETE RESTRICT,
		date TEXT CHECK (date IS NULL OR date ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$')
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS unique_performer_venue_date
		ON events(performer_id, venue_id, (COALESCE(date, '')))`,
	`CREATE INDEX IF NOT EXISTS events_venue_id ON events(venue_id)`,
}

func schemaFor(d Dialect) []string {
	if d == DialectPostgres {
		return postgresSchema
	}
	return sqliteSchema
}
