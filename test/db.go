// Package test provides testing utilities for the webform backend,
// including a MongoDB test container.
package test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MongoPort is the port exposed by the MongoDB test container.
const MongoPort = "27017"

// StartMongoContainer starts a MongoDB container for testing. It returns the
// container and any error encountered during startup. Use
// container.Endpoint(ctx, "mongodb") to obtain the connection string.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	port := fmt.Sprintf("%s/tcp", MongoPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{port},
				WaitingFor:   wait.ForListeningPort(MongoPort),
			},
			Started: true,
		})
}

// RandomDatabaseName returns a unique database name, so parallel test runs
// against the same container do not collide.
func RandomDatabaseName() string {
	return "test_" + uuid.NewString()[:8]
}
