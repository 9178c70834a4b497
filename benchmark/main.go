// Package main provides a performance benchmarking tool for the bundlesize CLI.
// It generates synthetic builds of increasing size, measures the routes and compare
// commands on each, running each test multiple times, treating the first successful
// run as cold and averaging the rest as warm, and writes CSV output for documentation.
//
// Prerequisites:
// - bundlesize binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic builds are generated
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (single-worker average, cold run and average of warm runs).
type BenchmarkResult struct {
	Build      string
	Command    string
	SerialTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Workers      int
	SerialRuns   int
	ParallelRuns int
	Builds       []string
	BuildRoutes  map[string]int // Number of routes per synthetic build
	ChunkBytes   int            // Approximate size of each page chunk
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:      workDir,
		Timeout:      5 * time.Minute,
		Workers:      14,
		SerialRuns:   3,
		ParallelRuns: 4,
		Builds:       []string{"small", "medium", "large"},
		BuildRoutes: map[string]int{
			"small":  20,
			"medium": 500,
			"large":  5000,
		},
		ChunkBytes: 32 * 1024,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the bundlesize binary exists and the work directory is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("bundlesize"); err != nil {
		return fmt.Errorf("bundlesize binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("work dir %s is not usable: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured builds
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d builds, %v timeout, %d workers, serial: %d runs, parallel: %d runs\n",
		len(config.Builds), config.Timeout, config.Workers, config.SerialRuns, config.ParallelRuns)

	for _, build := range config.Builds {
		fmt.Printf("Generating %s build (%d routes)\n", build, config.BuildRoutes[build])

		baseStats, err := generateBuild(filepath.Join(config.WorkDir, build, "base"), config.BuildRoutes[build], config.ChunkBytes, 1)
		if err != nil {
			fmt.Printf("Warning: failed to generate %s base build: %v\n", build, err)
			continue
		}
		headStats, err := generateBuild(filepath.Join(config.WorkDir, build, "head"), config.BuildRoutes[build], config.ChunkBytes, 2)
		if err != nil {
			fmt.Printf("Warning: failed to generate %s head build: %v\n", build, err)
			continue
		}

		results = append(results, runBenchmarkSuite(config, build, "routes", "route extraction", []string{headStats}))
		results = append(results, runBenchmarkSuite(config, build, "compare", "build comparison", []string{baseStats, headStats}))
	}

	return results
}

// generateBuild writes a stats manifest with one shared chunk and one page chunk per route.
// The seed changes chunk contents so two builds of the same size differ.
func generateBuild(dir string, routes, chunkBytes int, seed uint64) (string, error) {
	rng := rand.New(rand.NewPCG(seed, uint64(routes)))
	chunkDir := filepath.Join(dir, "static", "chunks")
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return "", err
	}

	var assets []map[string]any
	groups := make(map[string]any, routes)

	shared := "static/chunks/shared.js"
	if err := writeChunk(filepath.Join(dir, filepath.FromSlash(shared)), chunkBytes*4, rng); err != nil {
		return "", err
	}
	assets = append(assets, map[string]any{"name": shared, "size": chunkBytes * 4})

	for i := range routes {
		name := "static/chunks/page-" + strconv.Itoa(i) + ".js"
		size := chunkBytes/2 + rng.IntN(chunkBytes)
		if err := writeChunk(filepath.Join(dir, filepath.FromSlash(name)), size, rng); err != nil {
			return "", err
		}
		assets = append(assets, map[string]any{"name": name, "size": size})
		groups[fmt.Sprintf("app/section-%d/page-%d/page", i%10, i)] = map[string]any{"assets": []string{shared, name}}
	}

	data, err := json.Marshal(map[string]any{"assets": assets, "namedChunkGroups": groups})
	if err != nil {
		return "", err
	}
	statsFile := filepath.Join(dir, "stats.json")
	return statsFile, os.WriteFile(statsFile, data, 0o644)
}

// writeChunk writes size bytes of compressible pseudo JavaScript.
func writeChunk(path string, size int, rng *rand.Rand) error {
	words := []string{"const", "function", "return", "export", "import", "=>", "{", "}", "(", ")", ";", "props", "state", "useEffect"}
	var sb strings.Builder
	for sb.Len() < size {
		sb.WriteString(words[rng.IntN(len(words))])
		sb.WriteByte(' ')
	}
	return os.WriteFile(path, []byte(sb.String()[:size]), 0o644)
}

// runBenchmarkSuite runs both single-worker and parallel benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, build, command, description string, files []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, build)

	// Helper to run a benchmark phase
	runPhase := func(workers int, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, files, workers, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: Single worker runs
	_, serialAvg := runPhase(1, config.SerialRuns, "Serial")

	// Phase 2: Parallel runs
	coldTime, warmAvg := runPhase(config.Workers, config.ParallelRuns, "Parallel")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Serial average: %s, Cold time: %s, Warm average: %s\n", serialAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Build:      build,
		Command:    command,
		SerialTime: serialAvg,
		ColdTime:   coldTimeStr,
		WarmTime:   warmAvg,
	}
}

// runBenchmark executes a bundlesize command multiple times with the given worker count and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, files []string, workers, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := append([]string{command}, files...)
	args = append(args, "--output", "text", "--store-backend", "none", "--workers", strconv.Itoa(workers))

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("bundlesize", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/bundlesize_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"build", "cmd", "serial_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Build, result.Command, result.SerialTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "routes", "Route Extraction:")
	printCommandSummary(results, "compare", "Build Comparison:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: Serial: %s, Cold: %s, Warm: %s\n", result.Build, result.SerialTime, result.ColdTime, result.WarmTime)
		}
	}
}
