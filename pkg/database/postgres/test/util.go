// Package test starts throwaway postgres containers for store tests.
package test

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	pg "github.com/code-payments/sol-vault/pkg/database/postgres"
	"github.com/code-payments/sol-vault/pkg/retry"
	"github.com/code-payments/sol-vault/pkg/retry/backoff"
)

const (
	image    = "postgres"
	imageTag = "10.4"

	// Containers are killed by docker after this long even if the test
	// process dies without purging them.
	containerTTL = 120 * time.Second

	readyTimeout  = 30 * time.Second
	readyInterval = 500 * time.Millisecond

	user     = "localtest"
	password = "localpassword"
	dbName   = "testdb"
)

// StartPostgresDB runs a postgres container in pool and returns a connection
// once it accepts queries. closeFunc is always safe to call.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        imageTag,
		Env: []string{
			"listen_addresses = '*'",
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbName,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start postgres container")
	}
	closeFunc = func() {
		_ = pool.Purge(resource)
	}

	// Expire never fails
	_ = resource.Expire(uint(containerTTL.Seconds()))

	config, err := configFor(resource)
	if err != nil {
		return nil, closeFunc, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	_, err = retry.RetryWithContext(
		ctx,
		func() error {
			db, err = pg.Open(config)
			return err
		},
		retry.Backoff(backoff.Constant(readyInterval), readyInterval),
	)
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "postgres container never became ready")
	}

	return db, closeFunc, nil
}

func configFor(resource *dockertest.Resource) (*pg.Config, error) {
	host, rawPort, err := net.SplitHostPort(resource.GetHostPort("5432/tcp"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid container address")
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return nil, errors.Wrap(err, "invalid container port")
	}

	return &pg.Config{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
		DbName:   dbName,
	}, nil
}
