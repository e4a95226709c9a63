// Package minima implements the benchmark application: it loads benchmark
// specs from YAML files, generates the problems and optimisers they describe,
// runs them, and reports the outcomes.
package minima

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/minimaproject/minima/internal/minima/configuration"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the application's output.
	Out io.Writer
	// Source of randomness used to seed benchmarks that don't carry a seed of
	// their own. Tests can use a mocked random source in order to provide
	// deterministic testing behavior.
	Random io.Reader
}

// Params struct holds all user-customizable parameters.
type Params struct {
	Config *configuration.MinimaConfig
}

// New instantiates an App with default parameters, including standard output
// and cryptographically secure random source.
func New() *App {
	return &App{
		Params: &Params{},
		Out:    os.Stdout,
		Random: rand.Reader,
	}
}

// drawSeed draws a benchmark seed from the app's random source.
func (a *App) drawSeed() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(a.Random, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
