// Command thumbcache generates freedesktop-style thumbnails for the
// files named on the command line and prints the resulting cache paths.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"thumbcache/internal/backend"
	"thumbcache/internal/cache"
	"thumbcache/internal/cachepath"
	"thumbcache/internal/logging"
	"thumbcache/internal/startup"
	"thumbcache/internal/workers"
)

func main() {
	os.Exit(run())
}

func run() int {
	sizeFlag := flag.String("size", "large", "thumbnail size class (normal, large, x-large, xx-large, or pixels)")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		info := startup.GetBuildInfo()
		fmt.Printf("thumbcache %s (%s, built %s, %s %s/%s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		return 0
	}

	sources := flag.Args()
	if len(sources) == 0 {
		printUsage()
		return 1
	}

	size, err := cachepath.ParseSize(*sizeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := startup.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	backend.InitVips()
	defer backend.ShutdownVips()

	registry := backend.NewRegistry(
		backend.NewVips(),
		backend.NewImaging(),
		backend.NewFFmpeg(config.BackendTimeout),
	)
	startup.LogBackendInit(registry)

	c := cache.New(config.CacheRoot, config.AppID, registry, nil)
	if err := c.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if thumbnailAll(ctx, c, sources, size) {
		return 0
	}
	return 1
}

// thumbnailAll generates thumbnails for all sources using a bounded
// worker pool and reports whether every source succeeded.
func thumbnailAll(ctx context.Context, c *cache.Cache, sources []string, size cachepath.Size) bool {
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := true

	workerCount := workers.PoolSize(len(sources))
	logging.Debug("thumbnailing %d sources with %d workers", len(sources), workerCount)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				path, err := c.GetThumbnail(ctx, src, size)
				mu.Lock()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
					ok = false
				} else {
					fmt.Printf("%s\t%s\n", src, path)
				}
				mu.Unlock()
			}
		}()
	}

	for _, src := range sources {
		select {
		case jobs <- src:
		case <-ctx.Done():
			mu.Lock()
			ok = false
			mu.Unlock()
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return ok
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `thumbcache - shared thumbnail cache tool

Usage:
  thumbcache [flags] FILE...

Flags:
  -size SIZE     thumbnail size class: normal, large, x-large, xx-large,
                 or a pixel count (128, 256, 512, 1024). Default: large
  -version       print version information and exit

Environment:
  THUMBNAIL_CACHE_DIR  cache root (default: $XDG_CACHE_HOME/thumbnails)
  THUMBNAIL_APP_ID     application ID used for fail-markers
  BACKEND_TIMEOUT      external tool timeout (default: 30s)
  THUMBNAIL_WORKERS    worker pool size override
  LOG_LEVEL            debug, info, warn, error
`)
}
