package configuration

type MinimaConfig struct {
	// Port the Prometheus metrics server listens on.
	MetricsPort uint16
	// Pattern of benchmark files to run when none are given on the command line.
	Benchmarks string
}
