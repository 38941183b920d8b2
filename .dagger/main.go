// Skillstream CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/skillstream/internal/dagger"
)

// Skillstream is the main module for the skillstream CI/CD pipeline
type Skillstream struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Skillstream CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Skillstream {
	return &Skillstream{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted and
// the module caches attached. The CLI is pure Go, so CGO stays off.
func (s *Skillstream) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the skillstream unit tests via "go test"
func (s *Skillstream) Test(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// TestRace runs the unit tests with the race detector, which needs CGO.
func (s *Skillstream) TestRace(ctx context.Context) (string, error) {
	return s.goContainer().
		WithEnvVariable("CGO_ENABLED", "1").
		WithExec([]string{"go", "test", "-race", "./pkg/...", "./api/..."}).
		Stdout(ctx)
}
