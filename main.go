package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/person-api/apierror"
	"github.com/oaiiae/person-api/calllog"
	"github.com/oaiiae/person-api/cli/api"
	"github.com/oaiiae/person-api/cli/logger"
	"github.com/oaiiae/person-api/datastores"
)

const title = "person-api"

// Set with -ldflags "-X main.version=... -X main.revision=... -X main.created=...".
var (
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
type Options struct {
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
	api.PipelineOptions
	logger.Options
}

func newRouter(options *Options, store datastores.PersonsStore, log *slog.Logger) (http.Handler, huma.API, error) {
	chain, err := api.NewChain(&options.PipelineOptions)
	if err != nil {
		return nil, nil, err
	}
	handler, router := api.NewRouter(&options.RouterOptions, chain, store, new(calllog.InMemory),
		title, version, revision, created, log)
	return handler, router, nil
}

func main() {
	huma.NewError = apierror.New

	var options *Options

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		options = opts

		// resources are opened on start only, so that subcommands leave them alone
		var (
			srv        *http.Server
			log        *slog.Logger
			closeLog   func() error
			closeStore func()
			started    = make(chan struct{})
		)
		hooks.OnStart(func() {
			log, closeLog = logger.New(&opts.Options, title)
			fail := func(msg string, err error) {
				log.Error(msg, "err", err)
				_ = closeLog()
				os.Exit(1)
			}

			store, closeStoreFn, err := api.NewStore(context.Background(), &opts.StoreOptions)
			if err != nil {
				fail("could not open the store", err)
			}
			handler, _, err := newRouter(opts, store, log)
			if err != nil {
				closeStoreFn()
				fail("could not build the pipeline", err)
			}
			closeStore = closeStoreFn
			srv = api.NewServer(&opts.ServerOptions, handler, log)
			close(started)

			log.Info("listening", "addr", srv.Addr, "store", opts.Store, "prefix", opts.EndpointsPrefix)
			err = srv.ListenAndServe()
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			select {
			case <-started:
			default:
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
			closeStore()
			_ = closeLog()
		})
	})

	cli.Root().Use = title
	cli.Root().Version = version
	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, router, err := newRouter(options, datastores.NewPersonsInmem(), slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}
			b, err := router.OpenAPI().YAML()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	})
	cli.Run()
}
