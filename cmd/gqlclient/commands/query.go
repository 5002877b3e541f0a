package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	graphql "github.com/crossroads-loyalty-solutions/graphql-client"
	"github.com/crossroads-loyalty-solutions/graphql-client/cmd/gqlclient/config"
)

type queryFlags struct {
	vars      string
	headers   []string
	debounce  time.Duration
	maxBatch  int
	cacheSize int
	repeat    int
	cache     bool
	strict    bool
	direct    bool
}

// resultLine is printed once per query, in argument order.
type resultLine struct {
	Query  string                 `json:"query"`
	Data   json.RawMessage        `json:"data,omitempty"`
	Errors []graphql.GraphQLError `json:"errors,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func newQueryCmd(global *globalFlags) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query DOCUMENT [DOCUMENT...]",
		Short: "Send one or more query documents",
		Long: `Send one or more query documents to the endpoint.

All documents are issued at once. With the default batching client they share
a single HTTP request; --direct sends one request per document instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, global, flags)
			if err != nil {
				return err
			}
			return runQueries(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.vars, "vars", "",
		"Variables as a JSON object, applied to every document")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil,
		"Extra request header as 'Name: value' (repeatable)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", config.DefaultDebounce,
		"Batching window")
	cmd.Flags().IntVar(&flags.maxBatch, "max-batch", 0,
		"Maximum queries per batch (0 means unlimited)")
	cmd.Flags().IntVar(&flags.cacheSize, "cache-size", config.DefaultCacheSize,
		"Number of cached queries kept with --cache")
	cmd.Flags().IntVar(&flags.repeat, "repeat", 1,
		"Issue every document this many times")
	cmd.Flags().BoolVar(&flags.cache, "cache", false,
		"Serve repeated identical queries from the cache")
	cmd.Flags().BoolVar(&flags.strict, "strict", false,
		"Fail a query whenever the response carries errors")
	cmd.Flags().BoolVar(&flags.direct, "direct", false,
		"Send one HTTP request per query instead of batching")

	return cmd
}

// resolveConfig layers the config file and then explicitly set flags over
// the defaults.
func resolveConfig(cmd *cobra.Command, global *globalFlags, flags *queryFlags) (*config.Config, error) {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return nil, err
	}

	if global.endpoint != "" {
		cfg.Endpoint = global.endpoint
	}
	if global.timeout != "" {
		timeout, err := time.ParseDuration(global.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", global.timeout, err)
		}
		cfg.Timeout = timeout
	}
	if global.verbose {
		cfg.Verbose = true
	}

	changed := cmd.Flags().Changed
	if changed("debounce") {
		cfg.Debounce = flags.debounce
	}
	if changed("max-batch") {
		cfg.MaxBatch = flags.maxBatch
	}
	if changed("cache-size") {
		cfg.CacheSize = flags.cacheSize
	}
	if changed("direct") {
		cfg.Direct = flags.direct
	}
	for _, raw := range flags.headers {
		name, value, err := config.ParseHeader(raw)
		if err != nil {
			return nil, err
		}
		cfg.Headers[name] = value
	}

	if flags.repeat < 1 {
		return nil, fmt.Errorf("--repeat must be at least 1, got %d", flags.repeat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type validated interface {
	ValidationError() error
}

// buildClient assembles the client stack described by cfg.
func buildClient(ctx context.Context, cfg *config.Config, cache bool, logOut io.Writer) (graphql.Client, func(context.Context) error, error) {
	rc := resty.New().SetTimeout(cfg.Timeout)

	opts := []graphql.Option{
		graphql.WithName("gqlclient"),
		graphql.WithRestyClient(rc),
		graphql.WithContext(ctx),
		graphql.WithDebounce(cfg.Debounce),
		graphql.WithMaxBatchSize(cfg.MaxBatch),
		graphql.WithCacheSize(cfg.CacheSize),
	}
	for name, value := range cfg.Headers {
		opts = append(opts, graphql.WithHeader(name, value))
	}
	if cfg.Verbose {
		opts = append(opts, graphql.WithDebug(), graphql.WithLogger(graphql.NewLoggerWithWriter(logOut)))
	}

	var (
		client graphql.Client
		closer = func(context.Context) error { return nil }
	)
	if cfg.Direct {
		client = graphql.NewDirectClient(cfg.Endpoint, opts...)
	} else {
		batch := graphql.NewBatchClient(cfg.Endpoint, opts...)
		client, closer = batch, batch.Close
	}
	if err := validationError(client); err != nil {
		return nil, nil, err
	}

	if cache {
		client = graphql.NewCachedClient(client, opts...)
		if err := validationError(client); err != nil {
			return nil, nil, err
		}
	}
	return client, closer, nil
}

func validationError(client graphql.Client) error {
	if v, ok := client.(validated); ok {
		return v.ValidationError()
	}
	return nil
}

func runQueries(ctx context.Context, out, logOut io.Writer, cfg *config.Config, flags *queryFlags, documents []string) error {
	var variables any
	if flags.vars != "" {
		if err := json.Unmarshal([]byte(flags.vars), &variables); err != nil {
			return fmt.Errorf("invalid --vars: %w", err)
		}
	}

	client, closer, err := buildClient(ctx, cfg, flags.cache, logOut)
	if err != nil {
		return err
	}

	var callOpts []graphql.CallOption
	if flags.cache {
		callOpts = append(callOpts, graphql.Cached())
	}
	if flags.strict {
		callOpts = append(callOpts, graphql.RejectAnyError())
	}

	type issued struct {
		query  string
		future *graphql.Future
	}
	calls := make([]issued, 0, len(documents)*flags.repeat)
	for i := 0; i < flags.repeat; i++ {
		for _, doc := range documents {
			calls = append(calls, issued{query: doc, future: client.Query(doc, variables, callOpts...)})
		}
	}

	enc := json.NewEncoder(out)
	failed := 0
	for _, call := range calls {
		line := resultLine{Query: call.query}
		resp, err := call.future.Await(ctx)
		switch {
		case err != nil:
			failed++
			line.Error = err.Error()
			var queryErr *graphql.QueryError
			if errors.As(err, &queryErr) {
				line.Errors = queryErr.Errors
			}
		default:
			line.Data = resp.Data
			line.Errors = resp.Errors
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	if err := closer(ctx); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(calls))
	}
	return nil
}
