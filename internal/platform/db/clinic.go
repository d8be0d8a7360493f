package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	ClinicIDKey contextKey = "clinic_id"
	DBConnKey   contextKey = "db_conn"

	// ClinicHeader selects the clinic when the bearer token does not.
	ClinicHeader = "X-Clinic-ID"
)

var clinicIDPattern = regexp.MustCompile(`^[a-z0-9_]{1,48}$`)

// ValidClinicID reports whether id can be used as a schema suffix.
func ValidClinicID(id string) bool {
	return clinicIDPattern.MatchString(id)
}

// SchemaName returns the Postgres schema that holds a clinic's records.
func SchemaName(clinicID string) string {
	return "clinic_" + clinicID
}

// ClinicMiddleware pins a pooled connection to the clinic's schema for the
// lifetime of the request. Repositories pick it up via ConnFromContext.
func ClinicMiddleware(pool *pgxpool.Pool, defaultClinic string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clinicID := resolveClinicID(c, defaultClinic)
			if !ValidClinicID(clinicID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			if err := pinSchema(ctx, conn, clinicID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "clinic resolution failed")
			}

			ctx = WithClinic(ctx, clinicID)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("clinic_id", clinicID)

			return next(c)
		}
	}
}

func pinSchema(ctx context.Context, conn *pgxpool.Conn, clinicID string) error {
	_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", SchemaName(clinicID)))
	return err
}

// Fork returns a context carrying a second connection pinned to the clinic
// of ctx, for queries that run concurrently with the request's own. Outside
// a clinic-scoped request ctx is returned as is. Call release when done.
func Fork(ctx context.Context, pool *pgxpool.Pool) (forked context.Context, release func(), err error) {
	clinicID := ClinicFromContext(ctx)
	if pool == nil || clinicID == "" || ConnFromContext(ctx) == nil {
		return ctx, func() {}, nil
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	if err := pinSchema(ctx, conn, clinicID); err != nil {
		conn.Release()
		return nil, nil, fmt.Errorf("pin clinic %s: %w", clinicID, err)
	}
	return context.WithValue(ctx, DBConnKey, conn), conn.Release, nil
}

// resolveClinicID prefers the token claim, then the header, then the default.
func resolveClinicID(c echo.Context, defaultClinic string) string {
	if id, ok := c.Get("jwt_clinic_id").(string); ok && id != "" {
		return id
	}
	if id := c.Request().Header.Get(ClinicHeader); id != "" {
		return id
	}
	return defaultClinic
}

// ConnFromContext retrieves the clinic-scoped connection, or nil outside a request.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

func WithClinic(ctx context.Context, clinicID string) context.Context {
	return context.WithValue(ctx, ClinicIDKey, clinicID)
}

func ClinicFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ClinicIDKey).(string)
	return id
}

// CreateClinicSchema creates the clinic's schema and brings it up to date.
// A nil migrator only creates the schema.
func CreateClinicSchema(ctx context.Context, pool *pgxpool.Pool, clinicID string, m *Migrator) error {
	if !ValidClinicID(clinicID) {
		return fmt.Errorf("invalid clinic identifier: %q", clinicID)
	}
	schema := SchemaName(clinicID)

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if m != nil {
		if _, err := m.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}
	return nil
}
