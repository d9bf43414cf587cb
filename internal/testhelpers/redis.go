package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedis backs the guard suites. Addr is host:port for go-redis.
type TestRedis struct {
	Container testcontainers.Container
	Addr      string
}

func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	})

	addr, err := container.PortEndpoint(context.Background(), "6379/tcp", "")
	require.NoError(t, err)

	return &TestRedis{Container: container, Addr: addr}
}

func (tr *TestRedis) Cleanup(t *testing.T) {
	stopContainer(t, tr.Container)
}
