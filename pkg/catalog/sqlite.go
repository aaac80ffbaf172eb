package catalog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/appforge-io/forgectl/pkg/client"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// catalogDataFile is the database location relative to the XDG data dir.
const catalogDataFile = "forgectl/catalog.db"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens the catalog database at its default XDG data path, creating
// the file and applying pending migrations as needed.
func Open(ctx context.Context) (*SQLiteStore, error) {
	path, err := xdg.DataFile(catalogDataFile)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}
	return OpenPath(ctx, path)
}

// OpenPath opens the catalog database at the given path.
func OpenPath(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	// Serialize all access through one connection. SQLite allows a single
	// writer, and a second connection would just block on the file lock.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations applies pending schema migrations with goose. The embedded
// filesystem nests files under "migrations/", so strip the prefix to hand
// goose a flat directory of .sql files.
func runMigrations(ctx context.Context, db *sql.DB) error {
	migrationFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(database.DialectSQLite3, db, migrationFS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertApps inserts or updates app rows keyed by name.
func (s *SQLiteStore) UpsertApps(ctx context.Context, apps []client.App) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(tx)

	if err := upsertApps(ctx, tx, apps); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpsertFunctions inserts or updates function rows keyed by name.
func (s *SQLiteStore) UpsertFunctions(ctx context.Context, functions []client.Function) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(tx)

	if err := upsertFunctions(ctx, tx, functions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceAll swaps the cache contents for the given records and stamps the
// sync time, all in one transaction. Readers never observe a half-synced
// catalog.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, apps []client.App, functions []client.Function) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM functions`); err != nil {
		return fmt.Errorf("clearing functions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM apps`); err != nil {
		return fmt.Errorf("clearing apps: %w", err)
	}

	if err := upsertApps(ctx, tx, apps); err != nil {
		return err
	}
	if err := upsertFunctions(ctx, tx, functions); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_state (id, synced_at)
		VALUES (1, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (id) DO UPDATE SET synced_at = excluded.synced_at`,
	); err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LastSyncedAt returns when ReplaceAll last completed, or the zero time if
// the cache has never been synced.
func (s *SQLiteStore) LastSyncedAt(ctx context.Context) (time.Time, error) {
	var syncedAt string
	err := s.db.QueryRowContext(ctx, `SELECT synced_at FROM sync_state WHERE id = 1`).Scan(&syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying sync state: %w", err)
	}

	syncTime, err := time.Parse(time.RFC3339Nano, syncedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing synced_at: %w", err)
	}
	return syncTime, nil
}

// appColumns is the SELECT column list shared by app queries.
const appColumns = `name, display_name, provider, version, description, logo,
	json(categories), visibility, active, json(security_schemes), created_at, updated_at`

// SearchApps returns cached apps whose name, display name, description, or
// categories contain the term, ordered by name.
func (s *SQLiteStore) SearchApps(ctx context.Context, params SearchParams) ([]client.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps`

	var clauses []string
	var args []any

	if params.Term != "" {
		pattern := likePattern(params.Term)
		clauses = append(clauses, `(name LIKE ? ESCAPE '\'
			OR display_name LIKE ? ESCAPE '\'
			OR description LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(categories) WHERE value LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(params.AppNames) > 0 {
		namesJSON, err := json.Marshal(params.AppNames)
		if err != nil {
			return nil, fmt.Errorf("marshaling app names: %w", err)
		}
		clauses = append(clauses, `name IN (SELECT value FROM json_each(?))`)
		args = append(args, string(namesJSON))
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY name`
	if params.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, params.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying apps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []client.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating app rows: %w", err)
	}
	return apps, nil
}

// functionColumns is the SELECT column list shared by function queries.
const functionColumns = `name, description, json(tags), visibility, active,
	protocol, json(protocol_data), json(parameters), json(response), created_at, updated_at`

// SearchFunctions returns cached functions whose name, description, or tags
// contain the term, ordered by name.
func (s *SQLiteStore) SearchFunctions(ctx context.Context, params SearchParams) ([]client.Function, error) {
	query := `SELECT ` + functionColumns + ` FROM functions`

	var clauses []string
	var args []any

	if params.Term != "" {
		pattern := likePattern(params.Term)
		clauses = append(clauses, `(name LIKE ? ESCAPE '\'
			OR description LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(tags) WHERE value LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}
	if len(params.AppNames) > 0 {
		namesJSON, err := json.Marshal(params.AppNames)
		if err != nil {
			return nil, fmt.Errorf("marshaling app names: %w", err)
		}
		clauses = append(clauses, `app_name IN (SELECT value FROM json_each(?))`)
		args = append(args, string(namesJSON))
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY name`
	if params.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, params.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying functions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var functions []client.Function
	for rows.Next() {
		function, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		functions = append(functions, function)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating function rows: %w", err)
	}
	return functions, nil
}

func upsertApps(ctx context.Context, tx *sql.Tx, apps []client.App) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO apps (
			name, display_name, provider, version, description, logo,
			categories, visibility, active, security_schemes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, jsonb(?), ?, ?, jsonb(?), ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			display_name = excluded.display_name,
			provider = excluded.provider,
			version = excluded.version,
			description = excluded.description,
			logo = excluded.logo,
			categories = excluded.categories,
			visibility = excluded.visibility,
			active = excluded.active,
			security_schemes = excluded.security_schemes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing app upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, app := range apps {
		categoriesJSON, err := encodeJSONB(app.Categories)
		if err != nil {
			return fmt.Errorf("encoding categories for %s: %w", app.Name, err)
		}
		schemesJSON, err := encodeJSONB(app.SecuritySchemes)
		if err != nil {
			return fmt.Errorf("encoding security schemes for %s: %w", app.Name, err)
		}
		if _, err := stmt.ExecContext(ctx,
			app.Name, app.DisplayName, app.Provider, app.Version,
			app.Description, app.Logo, categoriesJSON, app.Visibility,
			app.Active, schemesJSON,
			encodeTime(app.CreatedAt), encodeTime(app.UpdatedAt),
		); err != nil {
			return fmt.Errorf("upserting app %s: %w", app.Name, err)
		}
	}
	return nil
}

func upsertFunctions(ctx context.Context, tx *sql.Tx, functions []client.Function) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO functions (
			name, app_name, description, tags, visibility, active,
			protocol, protocol_data, parameters, response, created_at, updated_at
		) VALUES (?, ?, ?, jsonb(?), ?, ?, ?, jsonb(?), jsonb(?), jsonb(?), ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			app_name = excluded.app_name,
			description = excluded.description,
			tags = excluded.tags,
			visibility = excluded.visibility,
			active = excluded.active,
			protocol = excluded.protocol,
			protocol_data = excluded.protocol_data,
			parameters = excluded.parameters,
			response = excluded.response,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing function upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, function := range functions {
		tagsJSON, err := encodeJSONB(function.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", function.Name, err)
		}
		protocolDataJSON, err := encodeJSONB(function.ProtocolData)
		if err != nil {
			return fmt.Errorf("encoding protocol data for %s: %w", function.Name, err)
		}
		parametersJSON, err := encodeJSONB(function.Parameters)
		if err != nil {
			return fmt.Errorf("encoding parameters for %s: %w", function.Name, err)
		}
		// A nil response stays NULL so it round-trips as absent.
		var responseJSON any
		if function.Response != nil {
			encoded, err := encodeJSONB(function.Response)
			if err != nil {
				return fmt.Errorf("encoding response for %s: %w", function.Name, err)
			}
			responseJSON = encoded
		}
		if _, err := stmt.ExecContext(ctx,
			function.Name, client.ParseAppNameFromFunctionName(function.Name),
			function.Description, tagsJSON, function.Visibility, function.Active,
			function.Protocol, protocolDataJSON, parametersJSON, responseJSON,
			encodeTime(function.CreatedAt), encodeTime(function.UpdatedAt),
		); err != nil {
			return fmt.Errorf("upserting function %s: %w", function.Name, err)
		}
	}
	return nil
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanApp(sc scanner) (client.App, error) {
	var (
		app           client.App
		categoriesRaw []byte
		schemesRaw    []byte
		createdAt     string
		updatedAt     string
	)
	err := sc.Scan(
		&app.Name, &app.DisplayName, &app.Provider, &app.Version,
		&app.Description, &app.Logo, &categoriesRaw, &app.Visibility,
		&app.Active, &schemesRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		return client.App{}, fmt.Errorf("scanning app row: %w", err)
	}

	if err := decodeJSONB(categoriesRaw, &app.Categories); err != nil {
		return client.App{}, fmt.Errorf("decoding categories: %w", err)
	}
	if err := decodeJSONB(schemesRaw, &app.SecuritySchemes); err != nil {
		return client.App{}, fmt.Errorf("decoding security schemes: %w", err)
	}
	if app.CreatedAt, err = decodeTime(createdAt); err != nil {
		return client.App{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if app.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return client.App{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return app, nil
}

func scanFunction(sc scanner) (client.Function, error) {
	var (
		function        client.Function
		tagsRaw         []byte
		protocolDataRaw []byte
		parametersRaw   []byte
		responseRaw     []byte
		createdAt       string
		updatedAt       string
	)
	err := sc.Scan(
		&function.Name, &function.Description, &tagsRaw, &function.Visibility,
		&function.Active, &function.Protocol, &protocolDataRaw, &parametersRaw,
		&responseRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		return client.Function{}, fmt.Errorf("scanning function row: %w", err)
	}

	if err := decodeJSONB(tagsRaw, &function.Tags); err != nil {
		return client.Function{}, fmt.Errorf("decoding tags: %w", err)
	}
	if err := decodeJSONB(protocolDataRaw, &function.ProtocolData); err != nil {
		return client.Function{}, fmt.Errorf("decoding protocol data: %w", err)
	}
	if err := decodeJSONB(parametersRaw, &function.Parameters); err != nil {
		return client.Function{}, fmt.Errorf("decoding parameters: %w", err)
	}
	if err := decodeJSONB(responseRaw, &function.Response); err != nil {
		return client.Function{}, fmt.Errorf("decoding response: %w", err)
	}
	if function.CreatedAt, err = decodeTime(createdAt); err != nil {
		return client.Function{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if function.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return client.Function{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return function, nil
}

// encodeJSONB marshals a value for the SQLite jsonb() function.
func encodeJSONB(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return string(data), nil
}

// decodeJSONB unmarshals a json() column into target. NULL columns leave
// the target at its zero value.
func decodeJSONB(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

// encodeTime stores timestamps as RFC3339Nano text. The zero time becomes
// the empty string rather than a year-one date.
func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// likePattern builds a substring LIKE pattern from a search term, escaping
// the LIKE wildcards so they match literally.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// rollback rolls back tx, ignoring errors (tx may already be committed).
func rollback(tx *sql.Tx) { _ = tx.Rollback() }
