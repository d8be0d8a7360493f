package integration

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	postgresImage = "postgres:16-alpine"
	readyTimeout  = 30 * time.Second
)

// postgresContainer is a throwaway database started through the Docker CLI.
type postgresContainer struct {
	id      string
	connStr string
}

// runPostgres starts the container with a Docker-assigned host port and
// blocks until the server accepts queries.
func runPostgres(ctx context.Context) (*postgresContainer, error) {
	out, err := exec.CommandContext(ctx, "docker", "run", "--rm", "-d", "-P",
		"--label", "ahara.integration=true",
		"-e", "POSTGRES_USER=ahara",
		"-e", "POSTGRES_PASSWORD=ahara",
		"-e", "POSTGRES_DB=ahara",
		postgresImage,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("docker run %s: %w", postgresImage, stderr(err))
	}
	c := &postgresContainer{id: strings.TrimSpace(string(out))}

	addr, err := c.hostAddr(ctx)
	if err != nil {
		c.stop()
		return nil, err
	}
	c.connStr = fmt.Sprintf("postgres://ahara:ahara@%s/ahara?sslmode=disable", addr)

	if err := c.awaitReady(ctx); err != nil {
		c.stop()
		return nil, err
	}
	return c, nil
}

// hostAddr asks Docker where 5432 was published, e.g. "0.0.0.0:49153".
func (c *postgresContainer) hostAddr(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", "port", c.id, "5432/tcp").Output()
	if err != nil {
		return "", fmt.Errorf("docker port: %w", stderr(err))
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	_, port, err := net.SplitHostPort(first)
	if err != nil {
		return "", fmt.Errorf("parse published port %q: %w", first, err)
	}
	return net.JoinHostPort("127.0.0.1", port), nil
}

// awaitReady retries a single connection until SELECT 1 succeeds. The
// entrypoint restarts the server once after init, so one success is not
// trusted until a second connection also works.
func (c *postgresContainer) awaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	streak := 0
	var lastErr error
	for streak < 2 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready after %v: %v", readyTimeout, lastErr)
		case <-ticker.C:
		}
		if lastErr = c.ping(ctx); lastErr != nil {
			streak = 0
			continue
		}
		streak++
	}
	return nil
}

func (c *postgresContainer) ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, c.connStr)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	var one int
	return conn.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// stop removes the container; --rm discards its volume.
func (c *postgresContainer) stop() {
	exec.Command("docker", "stop", "-t", "1", c.id).Run()
}

func stderr(err error) error {
	if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(ee.Stderr)))
	}
	return err
}
