// Package testhelpers starts throwaway postgres and redis containers for integration suites.
package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	c, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start %s", req.Image)
	return c
}

func stopContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	require.NoError(t, c.Terminate(context.Background()))
}
