package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/skillstream/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// CheckLint runs golangci-lint with its default linters.
//
// +check
func (s *Skillstream) CheckLint(ctx context.Context) (string, error) {
	base := s.goContainer().
		WithExec([]string{
			"go", "install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dag.Golangcilint(s.Source, dagger.GolangcilintOpts{BaseCtr: base}).Check(ctx)
}

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (s *Skillstream) CheckGoModTidy(ctx context.Context) (string, error) {
	out, err := s.goContainer().
		WithExec([]string{"cp", "go.mod", "go.mod.HEAD"}).
		WithExec([]string{"cp", "go.sum", "go.sum.HEAD"}).
		WithExec([]string{"go", "mod", "tidy"}).
		WithExec([]string{"sh", "-c", "diff -u go.mod.HEAD go.mod && diff -u go.sum.HEAD go.sum"}).
		Stdout(ctx)

	var execErr *dagger.ExecError
	if errors.As(err, &execErr) {
		return "", fmt.Errorf("go.mod or go.sum are not tidy: run 'go mod tidy'\n\n%s", execErr.Stdout)
	}
	if err != nil {
		return "", fmt.Errorf("running go mod tidy: %w", err)
	}

	return "go.mod and go.sum are tidy\n" + out, nil
}
