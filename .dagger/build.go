package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/skillstream/internal/dagger"
)

const versionPkg = "github.com/papercomputeco/skillstream/pkg/utils"

// Build cross-compiles the skillstream CLI for linux and darwin and returns
// a directory of <os>/<arch>/skillstream binaries. Version and commit are
// stamped into the version command when given.
func (s *Skillstream) Build(
	ctx context.Context,

	// Version string of the build (e.g. "v0.3.0")
	// +optional
	version string,

	// Git commit SHA of the build
	// +optional
	commit string,
) *dagger.Directory {
	ldflags := []string{"-s", "-w"}
	if version != "" {
		ldflags = append(ldflags,
			fmt.Sprintf("-X '%s.Version=%s'", versionPkg, version),
			fmt.Sprintf("-X '%s.Sha=%s'", versionPkg, commit),
			fmt.Sprintf("-X '%s.Buildtime=%s'", versionPkg, time.Now().UTC().Format(time.RFC3339)),
		)
	}

	outputs := dag.Directory()
	for _, goos := range []string{"linux", "darwin"} {
		for _, goarch := range []string{"amd64", "arm64"} {
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			build := s.goContainer().
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch).
				WithExec([]string{"go", "build", "-ldflags", strings.Join(ldflags, " "), "-o", path + "skillstream", "./cli/skillstream"})

			outputs = outputs.WithDirectory(path, build.Directory(path))
		}
	}

	return outputs
}
