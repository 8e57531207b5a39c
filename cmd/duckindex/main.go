package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/duckindex/internal/version"

	duckindex "github.com/standardbeagle/duckindex"
)

func main() {
	app := &cli.App{
		Name:    "duckindex",
		Usage:   "Index and search file content across your home directory",
		Version: version.Version,
		Commands: []*cli.Command{
			addCommand,
			removeCommand,
			searchDirCommand,
			searchFileCommand,
			searchItemCommand,
			pathsCommand,
			statusCommand,
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "duckindex:", err)
		os.Exit(1)
	}
}

func openService(c *cli.Context) (*duckindex.Service, context.Context, error) {
	ctx := c.Context
	svc, err := duckindex.Open(ctx)
	return svc, ctx, err
}

var addCommand = &cli.Command{
	Name:      "add",
	Usage:     "Start indexing a directory",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("add requires exactly one path argument", 1)
		}
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		if err := svc.AddIndexPath(ctx, c.Args().First()); err != nil {
			return err
		}
		fmt.Println("indexing started")
		return nil
	},
}

var removeCommand = &cli.Command{
	Name:      "remove",
	Usage:     "Stop indexing a directory and remove it from the index",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("remove requires exactly one path argument", 1)
		}
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		if err := svc.DelIndexPath(ctx, c.Args().First()); err != nil {
			return err
		}
		fmt.Println("removal queued")
		return nil
	},
}

func paginationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "offset", Value: 0},
		&cli.IntFlag{Name: "limit", Value: 20},
	}
}

var searchDirCommand = &cli.Command{
	Name:      "search-dir",
	Usage:     "Search indexed directory names",
	ArgsUsage: "<query>",
	Flags:     paginationFlags(),
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		results, err := svc.SearchDirectory(ctx, c.Args().First(), c.Int("offset"), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s\t%s\t%s\n", r.Name, r.Path, r.ModifiedTime.Format(time.RFC3339))
		}
		return nil
	},
}

var searchFileCommand = &cli.Command{
	Name:      "search-file",
	Usage:     "Search indexed file names",
	ArgsUsage: "<query>",
	Flags:     paginationFlags(),
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		results, err := svc.SearchFile(ctx, c.Args().First(), c.Int("offset"), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s\t%s\t%s\n", r.Name, r.Path, r.ModifiedTime.Format(time.RFC3339))
		}
		return nil
	},
}

var searchItemCommand = &cli.Command{
	Name:      "search-item",
	Usage:     "Search indexed file content",
	ArgsUsage: "<query>",
	Flags:     paginationFlags(),
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		results, err := svc.SearchItem(ctx, c.Args().First(), c.Int("offset"), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s/%s: %s\n", r.Path, r.File, r.Content)
		}
		return nil
	},
}

var pathsCommand = &cli.Command{
	Name:  "paths",
	Usage: "List configured index roots",
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		paths, err := svc.GetIndexDirPaths(ctx)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Show task queue and index counts",
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		status, err := svc.GetStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("directories: %d\n", status.Index.Directories)
		fmt.Printf("files:       %d\n", status.Index.Files)
		fmt.Printf("items:       %d\n", status.Index.Items)
		fmt.Printf("pending:     %d\n", status.Tasks.Pending)
		fmt.Printf("running:     %d (%s)\n", status.Tasks.Running, strconv.Itoa(len(status.Tasks.RunningPaths)))
		fmt.Printf("failed:      %d\n", status.Tasks.Failed)
		for _, p := range status.Tasks.FailedPaths {
			fmt.Printf("  failed: %s\n", p)
		}
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the indexer continuously until interrupted",
	Action: func(c *cli.Context) error {
		svc, ctx, err := openService(c)
		if err != nil {
			return err
		}
		defer svc.Close(ctx)

		fmt.Println("duckindex running, press Ctrl+C to stop")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		fmt.Printf("\nreceived signal %v, shutting down...\n", sig)
		return nil
	},
}
