package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/glog"
	"github.com/lixenwraith/glog/compat"
	"github.com/lixenwraith/glog/fetch"
	"github.com/lixenwraith/glog/fingerprint"
)

// newApp builds the command tree writing results to out. opts are passed to
// the fetcher built by the fetch command.
func newApp(out io.Writer, opts ...fetch.Option) *cli.Command {
	return &cli.Command{
		Name:      "glogfetch",
		Usage:     "fetch checksum-verified artifacts",
		UsageText: "glogfetch [global options] command [options] [arguments]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML file with [log] and [fetch] tables",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "threshold: fatal, disabled, info or debug",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "override a setting, e.g. log.level=debug or fetch.timeout_ms=10000",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			fetchCommand(opts...),
			hashCommand(),
			serveCommand(),
		},
	}
}

// splitOverrides sorts --set values by table and strips the table prefix
func splitOverrides(sets []string) (logSets, fetchSets []string, err error) {
	for _, s := range sets {
		switch {
		case strings.HasPrefix(s, "log."):
			logSets = append(logSets, strings.TrimPrefix(s, "log."))
		case strings.HasPrefix(s, "fetch."):
			fetchSets = append(fetchSets, strings.TrimPrefix(s, "fetch."))
		default:
			return nil, nil, fmt.Errorf("unknown table in override %q (want log.* or fetch.*)", s)
		}
	}
	return logSets, fetchSets, nil
}

// configureLogging applies the config file, --set and --log-level to the default logger
func configureLogging(cmd *cli.Command) error {
	logSets, _, err := splitOverrides(cmd.StringSlice("set"))
	if err != nil {
		return err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		logSets = append(logSets, "level="+lvl)
	}

	if path := cmd.String("config"); path != "" {
		return glog.LoadConfig(path, logSets...)
	}
	if len(logSets) > 0 {
		return glog.Default().ApplyConfigString(logSets...)
	}
	return nil
}

// fetchConfig resolves the fetch settings from the config file and --set
func fetchConfig(cmd *cli.Command) (*fetch.Config, error) {
	_, fetchSets, err := splitOverrides(cmd.StringSlice("set"))
	if err != nil {
		return nil, err
	}

	cfg := fetch.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		if cfg, err = fetch.NewConfigFromFile(path); err != nil {
			return nil, err
		}
	}
	if len(fetchSets) > 0 {
		if err := cfg.ApplyConfigString(fetchSets...); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func fetchCommand(opts ...fetch.Option) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "download an artifact and verify its fingerprint",
		UsageText: "glogfetch fetch --checksum HEX [--out PATH] URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "checksum",
				Usage:    "expected hex fingerprint",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "move the verified artifact here",
			},
			&cli.StringFlag{
				Name:  "algorithm",
				Usage: "md5, sha256 or blake3; defaults to the configured algorithm",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return fetchCommandAction(ctx, cmd, opts)
		},
	}
}

// fetchCommandAction runs a fail-fast verified fetch: any failure exits with code 6
func fetchCommandAction(ctx context.Context, cmd *cli.Command, opts []fetch.Option) error {
	rawURL := cmd.Args().First()
	if rawURL == "" {
		return fmt.Errorf("fetch: URL argument is required")
	}

	cfg, err := fetchConfig(cmd)
	if err != nil {
		return err
	}
	if alg := cmd.String("algorithm"); alg != "" {
		if err := cfg.ApplyConfigString("algorithm=" + alg); err != nil {
			return err
		}
	}

	out := cmd.String("out")
	if out != "" {
		// Download next to the target so the final rename stays on one filesystem
		cfg.TempDir = filepath.Dir(out)
	}

	f, err := fetch.New(cfg, append([]fetch.Option{fetch.WithLogger(glog.Default())}, opts...)...)
	if err != nil {
		return err
	}

	path := f.MustFetchVerifiedTarball(ctx, rawURL, cmd.String("checksum"))
	if path == "" {
		return fmt.Errorf("fetch: %s failed verification", rawURL)
	}

	if out != "" {
		if err := os.Rename(path, out); err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("fetch: moving artifact to %s: %w", out, err)
		}
		path = out
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "%s\t%s\n", path, humanize.Bytes(uint64(info.Size())))
	return nil
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "print fingerprints of files or a string",
		UsageText: "glogfetch hash [--string S] [--algorithm md5] [FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "string",
				Usage: "fingerprint this string instead of files",
			},
			&cli.StringFlag{
				Name:  "algorithm",
				Usage: "md5, sha256 or blake3",
				Value: string(fingerprint.DefaultAlgorithm),
			},
		},
		Action: hashCommandAction,
	}
}

func hashCommandAction(_ context.Context, cmd *cli.Command) error {
	alg, err := fingerprint.ParseAlgorithm(cmd.String("algorithm"))
	if err != nil {
		return err
	}
	hasher, err := fingerprint.New(alg)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if cmd.IsSet("string") {
		fmt.Fprintln(w, hasher.HashString(cmd.String("string")))
		return nil
	}

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("hash: no files given")
	}
	for _, name := range files {
		digest, err := hasher.HashFile(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", digest, name)
	}
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve a directory over HTTP for local testing",
		UsageText: "glogfetch serve [--dir DIR] [--addr :8080]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory to serve",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":8080",
			},
		},
		Action: serveCommandAction,
	}
}

// newFileServer builds a fasthttp server for dir that logs through glog
func newFileServer(dir string, logger *glog.Logger) (*fasthttp.Server, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	adapter, err := compat.NewBuilder().WithLogger(logger).BuildFastHTTP()
	if err != nil {
		return nil, err
	}

	fs := &fasthttp.FS{
		Root:               root,
		GenerateIndexPages: true,
		AcceptByteRange:    true,
	}
	return &fasthttp.Server{
		Name:    "glogfetch",
		Handler: fs.NewRequestHandler(),
		Logger:  adapter,
	}, nil
}

func serveCommandAction(ctx context.Context, cmd *cli.Command) error {
	dir, addr := cmd.String("dir"), cmd.String("addr")
	server, err := newFileServer(dir, glog.Default())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()
	glog.Infof("serving %s on %s", dir, addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return server.Shutdown()
	}
}
