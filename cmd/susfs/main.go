package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/arrow-sus/susfs/pkg/cache"
	"github.com/arrow-sus/susfs/pkg/catalog"
	"github.com/arrow-sus/susfs/pkg/config"
	"github.com/arrow-sus/susfs/pkg/conn"
	"github.com/arrow-sus/susfs/pkg/download"
	"github.com/arrow-sus/susfs/pkg/logging"
	"github.com/arrow-sus/susfs/pkg/vfs"
)

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file")
	listFlag := flag.String("list", "", "List a directory on the archive")
	extFlag := flag.String("ext", "", "Restrict file output to one extension (e.g. dbc)")
	localFlag := flag.Bool("local", false, "Browse the local filesystem instead of the archive")
	downloadFlag := flag.Bool("download", false, "Download the remote files given as arguments")
	destFlag := flag.String("dest", "", "Destination directory for downloads")
	datasetFlag := flag.String("dataset", "", "Show a dataset from the catalogue and list its directories")
	datasetsFlag := flag.Bool("datasets", false, "List known dataset codes")
	cacheStatsFlag := flag.Bool("cache-stats", false, "Print listing cache statistics")
	sweepFlag := flag.Bool("sweep", false, "Remove expired entries from the listing cache")
	pingFlag := flag.Bool("ping", false, "Test connectivity to the archive")
	userFlag := flag.String("user", "", "Login instead of anonymous access")
	askPasswordFlag := flag.Bool("ask-password", false, "Prompt for the login password")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		cfg, err = config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Error reading config: %v", err)
		}
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}
	defer logger.Sync()

	var password []byte
	if *askPasswordFlag {
		password = askPassword()
	}
	defer func() {
		secureWipe(password)
		password = nil
	}()

	opts := []conn.Option{
		conn.WithPort(cfg.Port),
		conn.WithTimeout(cfg.Timeout()),
		conn.WithLogger(logger),
	}
	if *userFlag != "" {
		opts = append(opts, conn.WithCredentials(*userFlag, string(password)))
	}
	mgr := conn.New(cfg.Host, opts...)

	store := cache.New(cfg.CacheDir, cache.WithTTL(cfg.TTL()))
	if err := store.LoadFromDisk(); err != nil {
		logger.Warn("cache snapshot unusable, starting empty", zap.Error(err))
	}

	ctx := context.Background()

	switch {
	case *pingFlag:
		if !mgr.TestConnection(ctx) {
			log.Fatalf("Archive %s is not reachable", cfg.Host)
		}
		fmt.Printf("Archive %s is reachable\n", cfg.Host)

	case *datasetsFlag:
		for _, code := range catalog.Codes() {
			d, _ := catalog.Lookup(code)
			fmt.Printf("%-10s %s\n", d.Code, d.Name)
		}

	case *datasetFlag != "":
		d, ok := catalog.Lookup(*datasetFlag)
		if !ok {
			log.Fatalf("Unknown dataset %q, try -datasets", *datasetFlag)
		}
		fmt.Printf("%s: %s\n%s\n", d.Code, d.Name, d.Description)
		provider := vfs.NewFTP(mgr, cfg.BasePath, store, vfs.WithFTPLogger(logger))
		for _, r := range provider.ListDirectoriesWithTiming(ctx, d.Paths, cfg.MaxListings) {
			if r.Err != nil {
				fmt.Printf("  %s: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Printf("  %s: %d entries in %s\n", r.Path, len(r.Listing), r.Elapsed.Round(time.Millisecond))
		}
		saveCache(store, logger)

	case *listFlag != "":
		kind := "ftp"
		if *localFlag {
			kind = "local"
		}
		provider, err := vfs.NewProvider(vfs.ProviderSpec{
			Kind:     kind,
			BasePath: cfg.BasePath,
			Manager:  mgr,
			Cache:    store,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("Error creating provider: %v", err)
		}
		node := vfs.NewNode(*listFlag, provider)
		if *extFlag != "" {
			files, err := node.FilesWithExtension(ctx, *extFlag)
			if err != nil {
				log.Fatalf("Error listing %s: %v", *listFlag, err)
			}
			for _, f := range files {
				fmt.Printf("%12s  %s\n", sizeText(f.Info), f.Path)
			}
		} else {
			printListing(ctx, node)
		}
		if !*localFlag {
			saveCache(store, logger)
		}

	case *downloadFlag:
		paths := flag.Args()
		if len(paths) == 0 {
			log.Fatal("Missing remote paths to download")
		}
		dcfg := download.DefaultConfig(cfg.DownloadDir)
		if *destFlag != "" {
			dcfg.DestDir = *destFlag
		}
		dcfg.PreserveStructure = cfg.PreserveStructure
		dcfg.BaseRemotePath = cfg.BasePath
		dcfg.MaxConcurrent = cfg.MaxConcurrent
		dcfg.BufferSize = cfg.BufferSize
		dcfg.Overwrite = cfg.Overwrite
		engine := download.New(download.NewFTPSource(mgr), dcfg, logger)
		results := engine.DownloadParallel(ctx, paths)
		for _, r := range results {
			if !r.Success {
				fmt.Printf("failed  %s: %s\n", r.RemotePath, r.Error)
				continue
			}
			fmt.Printf("ok      %s -> %s (%d bytes, %s)\n",
				r.RemotePath, r.LocalPath, r.Bytes, r.Elapsed.Round(time.Millisecond))
		}
		if err := results.Err(); err != nil {
			os.Exit(1)
		}

	case *cacheStatsFlag:
		total, expired := store.Stats()
		fmt.Printf("Cache entries: %d (%d expired), TTL %s\n", total, expired, store.TTL())

	case *sweepFlag:
		removed := store.CleanupExpired()
		fmt.Printf("Removed %d expired entries\n", removed)
		saveCache(store, logger)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printListing(ctx context.Context, node *vfs.Node) {
	listing, err := node.Content(ctx)
	if err != nil {
		log.Fatalf("Error listing %s: %v", node.Path, err)
	}
	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := listing[name]
		if entry.IsDir() {
			fmt.Printf("%12s  %s/\n", "<DIR>", name)
			continue
		}
		fmt.Printf("%12s  %s\n", sizeText(entry.File.Info), name)
	}
}

func sizeText(info vfs.FileInfo) string {
	if info.SizeKnown() {
		return fmt.Sprintf("%d", info.Size)
	}
	return info.SizeText
}

func saveCache(store *cache.Store, logger *zap.Logger) {
	if err := store.SaveToDisk(); err != nil {
		logger.Warn("could not persist cache snapshot", zap.Error(err))
	}
}

// secureWipe overwrites sensitive data before the slice is released.
func secureWipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// askPassword reads a password from the terminal without echoing it.
func askPassword() []byte {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("Error reading password: %v", err)
	}
	fmt.Println()
	return []byte(strings.TrimRight(string(password), "\r\n"))
}
