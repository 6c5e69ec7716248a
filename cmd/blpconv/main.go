// Command blpconv converts BLP textures into PNG, BMP or TIFF images, one
// file per stored mip level. It converts a single file, a directory tree,
// or watches directories and converts textures as they change.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var input, output, configPath, format string
	var levels int
	var noAlpha, watch bool

	flag.StringVar(&input, "i", "", "Input texture (.blp, .blp.gz, .blp.zst) or directory")
	flag.StringVar(&output, "o", "", "Output directory")
	flag.StringVar(&configPath, "config", "blpconv.toml", "Path to config file (TOML)")
	flag.StringVar(&format, "format", "", "Output format: png, bmp or tiff (overrides config)")
	flag.IntVar(&levels, "levels", -1, "Maximum mip levels to write, 0 = all (overrides config)")
	flag.BoolVar(&noAlpha, "no-alpha", false, "Write every pixel fully opaque")
	flag.BoolVar(&watch, "watch", false, "Watch the [watch] dirs from the config and convert changed textures")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("blpconv: ")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if levels >= 0 {
		cfg.Output.MaxLevels = levels
	}
	if noAlpha {
		cfg.Output.WantAlpha = false
	}
	if output != "" {
		cfg.Output.Dir = output
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if watch {
		if cfg.Output.Dir == "" {
			log.Fatal("-watch needs an output directory (-o or [output] dir)")
		}
		if len(cfg.Watch.Dirs) == 0 {
			log.Fatal("-watch needs at least one directory in [watch] dirs")
		}
		if err := runWatchMode(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if input == "" || cfg.Output.Dir == "" {
		fmt.Fprintln(os.Stderr, "Usage: blpconv -i <input> -o <output dir> [-format png|bmp|tiff] [-levels n] [-no-alpha] [-config blpconv.toml]")
		fmt.Fprintln(os.Stderr, "       blpconv -watch [-o <output dir>] [-config blpconv.toml]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	info, err := os.Stat(input)
	if err != nil {
		log.Fatalf("input path %q: %v", input, err)
	}

	if info.IsDir() {
		err = processDirectory(input, cfg)
	} else {
		err = processSingleFile(input, cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func processSingleFile(input string, cfg *Config) error {
	start := time.Now()
	written, err := convertFile(input, cfg.Output.Dir, cfg)
	if err != nil {
		return err
	}
	log.Printf("converted %s: %d level(s) in %.2fs", input, len(written), time.Since(start).Seconds())
	return nil
}

type convJob struct {
	input  string
	outDir string
}

// collectJobs walks inputDir for textures, mirroring its layout under outDir
func collectJobs(inputDir, outDir string) ([]convJob, error) {
	var jobs []convJob
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTexture(path) {
			return nil
		}
		rel, err := filepath.Rel(inputDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		jobs = append(jobs, convJob{input: path, outDir: filepath.Join(outDir, rel)})
		return nil
	})
	return jobs, err
}

func processDirectory(inputDir string, cfg *Config) error {
	if info, err := os.Stat(cfg.Output.Dir); err == nil && !info.IsDir() {
		return fmt.Errorf("output %q is a file; specify a directory", cfg.Output.Dir)
	}

	jobs, err := collectJobs(inputDir, cfg.Output.Dir)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		log.Printf("no textures found in %s", inputDir)
		return nil
	}

	log.Printf("converting %d texture(s) from %s", len(jobs), inputDir)
	start := time.Now()
	failed := runJobs(jobs, cfg)

	log.Printf("done: %d converted, %d failed in %.2fs", len(jobs)-failed, failed, time.Since(start).Seconds())
	if failed > 0 {
		return errors.New("some textures failed to convert")
	}
	return nil
}

// runJobs converts jobs on a bounded pool and returns the failure count
func runJobs(jobs []convJob, cfg *Config) int {
	var (
		failed atomic.Int64
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for _, j := range jobs {
		j := j
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			if _, err := convertFile(j.input, j.outDir, cfg); err != nil {
				log.Printf("error: %v", err)
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	return int(failed.Load())
}
