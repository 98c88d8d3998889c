// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/listsync/internal/community"
	"github.com/sirseerhq/listsync/internal/config"
	"github.com/sirseerhq/listsync/internal/feeds"
	"github.com/sirseerhq/listsync/internal/listsync"
	"github.com/sirseerhq/listsync/internal/logging"
	"github.com/sirseerhq/listsync/internal/metadata"
	"github.com/sirseerhq/listsync/internal/metrics"
	"github.com/sirseerhq/listsync/internal/output"
	"github.com/sirseerhq/listsync/pkg/version"
)

// pullOptions holds the flags of the pull command.
type pullOptions struct {
	boardID  int64
	userID   string
	postID   int64
	groupID  int64
	chatID   string
	keyword  string
	pages    int
	all      bool
	pageSize int

	output     string
	format     string
	configPath string
	resume     bool
	reportDir  string
	stateDir   string
	transport  string
	token      string
	timeout    time.Duration
	metrics    string
	quiet      bool
}

func newPullCommand(e *env) *cobra.Command {
	var opts pullOptions

	kinds := make([]string, 0, len(feeds.Kinds()))
	for _, k := range feeds.Kinds() {
		kinds = append(kinds, string(k))
	}

	cmd := &cobra.Command{
		Use:   "pull <kind>",
		Short: "Pull a paginated list from the community API",
		Long: `Pull a paginated list and write its items as NDJSON or a table.

Kinds and their required flags:
  boards                        all boards
  posts       --board ID        posts on a board, newest first
  user-posts  --user ID         posts written by a user
  comments    --post ID         comments on a post
  members     --group ID        members of a group
  search      --chat ID         chat messages matching --keyword, newest first

By default only the first page is fetched. Use --pages to fetch up to N
pages or --all to page until the list ends. Every page is checkpointed;
--resume continues from where the previous run of the same list stopped.

Authentication uses --token or the environment variable named by
api.token_env in the config file (LISTSYNC_TOKEN by default).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			if cmd.Flags().Changed("pages") && opts.all {
				return fmt.Errorf("--pages and --all cannot be used together")
			}

			return runPull(ctx, e, args[0], opts)
		},
	}

	// Feed parameters
	cmd.Flags().Int64Var(&opts.boardID, "board", 0, "Board ID (posts)")
	cmd.Flags().StringVar(&opts.userID, "user", "", "User ID (user-posts)")
	cmd.Flags().Int64Var(&opts.postID, "post", 0, "Post ID (comments)")
	cmd.Flags().Int64Var(&opts.groupID, "group", 0, "Group ID (members)")
	cmd.Flags().StringVar(&opts.chatID, "chat", "", "Chat ID (search)")
	cmd.Flags().StringVar(&opts.keyword, "keyword", "", "Search keyword (search)")

	// Pagination
	cmd.Flags().IntVar(&opts.pages, "pages", 1, "Maximum number of pages to fetch")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Fetch every page until the list ends")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Items per page (overrides config)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue from the last checkpoint of this list")

	// Output
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: ndjson or table (default from config)")
	cmd.Flags().StringVar(&opts.reportDir, "report", "", "Directory for the run report (default: state directory)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress and summary output")

	// Connection
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&opts.stateDir, "state-dir", "", "Checkpoint directory (overrides config)")
	cmd.Flags().StringVar(&opts.transport, "transport", "", "API transport: rest or graphql (overrides config)")
	cmd.Flags().StringVar(&opts.token, "token", "", "API token (overrides the token environment variable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall time limit for the run (0 for none)")
	cmd.Flags().StringVar(&opts.metrics, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	return cmd
}

// runPull executes the pull command
func runPull(ctx context.Context, e *env, kindArg string, opts pullOptions) error {
	kind, err := feeds.ParseKind(kindArg)
	if err != nil {
		return err
	}

	key, err := feedKey(kind, opts)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}
	if cfg.Logging.Output != "stdout" {
		logger.SetOutput(e.stderr)
	}
	log := logging.WithComponent(logger, "pull").WithFields(logrus.Fields{"list": kind, "key": key})

	token := getToken(opts.token, cfg)
	if token == "" {
		return fmt.Errorf("API token not found. Set %s or use --token flag", cfg.API.TokenEnv)
	}

	policy, err := listsync.ParseHasMorePolicy(cfg.HasMorePolicyFor(string(kind)))
	if err != nil {
		return err
	}

	client, err := e.newClient(cfg, token, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	tracker := metadata.New()
	collector := metrics.NewCollector()
	if opts.metrics != "" {
		shutdown, err := serveMetrics(opts.metrics, collector, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	// The spinner would interleave with records written to the terminal.
	toTerminal := opts.output == "" || opts.output == "-"

	var writer output.RecordWriter
	if toTerminal {
		writer, err = output.NewStream(cfg.Defaults.OutputFormat, e.stdout, columnsFor(kind))
	} else {
		writer, err = output.New(cfg.Defaults.OutputFormat, opts.output, columnsFor(kind))
	}
	if err != nil {
		return err
	}

	maxPages := opts.pages
	if opts.all {
		maxPages = 0
	}
	pageSize := cfg.PageSizeFor(string(kind))

	prog := newProgress(e.stderr, !opts.quiet && !toTerminal)

	j := job{
		kind:     kind,
		key:      key,
		maxPages: maxPages,
		resume:   opts.resume,
		stateDir: cfg.Defaults.StateDir,
		runID:    tracker.RunID(),
		writer:   writer,
		progress: prog,
		log:      log,
	}
	syncOpts := []listsync.Option{
		listsync.WithPageSize(pageSize),
		listsync.WithHasMorePolicy(policy),
		listsync.WithLogger(logging.WithComponent(logger, "listsync")),
		listsync.WithObserver(tracker),
		listsync.WithObserver(collector),
	}

	start := time.Now()
	res, mode, pullErr := pullKind(ctx, client, kind, opts, j, syncOpts)
	prog.stop()

	if err := writer.Close(); err != nil && pullErr == nil {
		pullErr = fmt.Errorf("failed to close output: %w", err)
	}

	reportDir := opts.reportDir
	if reportDir == "" {
		reportDir = cfg.Defaults.StateDir
	}
	var previous *metadata.RunRef
	if res.resumed {
		if prev, err := metadata.LoadLatestMetadata(reportDir, string(kind), key); err == nil && prev != nil {
			previous = &metadata.RunRef{RunID: prev.RunID, CompletedAt: prev.Results.CompletedAt}
		}
	}
	md := tracker.GenerateMetadata(version.Version, cfg.API.Transport, metadata.RunParams{
		List:     string(kind),
		Key:      key,
		Mode:     mode.String(),
		PageSize: pageSize,
		MaxPages: maxPages,
		All:      opts.all,
	}, res.baseCount+res.written, res.hasMore, previous)
	if err := metadata.SaveMetadata(md, reportDir); err != nil {
		log.WithError(err).Warn("failed to save run report")
	}

	if pullErr != nil {
		return pullErr
	}

	if !opts.quiet {
		printSummary(e, kind, res, tracker.Stats(), time.Since(start))
	}
	return nil
}

// pullKind builds the feed for kind and drains it. It returns the cursor
// mode so the run report can record it.
func pullKind(ctx context.Context, c community.Client, kind feeds.Kind, opts pullOptions, j job, syncOpts []listsync.Option) (outcome, listsync.CursorMode, error) {
	switch kind {
	case feeds.KindBoards:
		s := feeds.NewBoardFeed(c, syncOpts...)
		res, err := drain(ctx, s, feeds.BoardQuery{}, j)
		return res, s.Mode(), err
	case feeds.KindPosts:
		s := feeds.NewPostFeed(c, syncOpts...)
		res, err := drain(ctx, s, feeds.PostQuery{BoardID: opts.boardID}, j)
		return res, s.Mode(), err
	case feeds.KindUserPosts:
		s := feeds.NewUserPostFeed(c, syncOpts...)
		res, err := drain(ctx, s, feeds.UserPostQuery{UserID: opts.userID}, j)
		return res, s.Mode(), err
	case feeds.KindComments:
		s := feeds.NewCommentFeed(c, syncOpts...)
		res, err := drain(ctx, s, feeds.CommentQuery{PostID: opts.postID}, j)
		return res, s.Mode(), err
	case feeds.KindMembers:
		s := feeds.NewMemberFeed(c, syncOpts...)
		res, err := drain(ctx, s, feeds.MemberQuery{GroupID: opts.groupID}, j)
		return res, s.Mode(), err
	case feeds.KindSearch:
		s := feeds.NewMessageSearch(c, syncOpts...)
		res, err := drain(ctx, s, feeds.SearchQuery{ChatID: opts.chatID, Keyword: opts.keyword}, j)
		return res, s.Mode(), err
	default:
		return outcome{}, listsync.OffsetMode, fmt.Errorf("unsupported list kind %q", kind)
	}
}

// feedKey checks the flags a kind requires and returns the key naming the
// list instance in checkpoints and reports.
func feedKey(kind feeds.Kind, opts pullOptions) (string, error) {
	switch kind {
	case feeds.KindBoards:
		return "all", nil
	case feeds.KindPosts:
		if opts.boardID <= 0 {
			return "", fmt.Errorf("posts requires --board")
		}
		return fmt.Sprintf("board=%d", opts.boardID), nil
	case feeds.KindUserPosts:
		if strings.TrimSpace(opts.userID) == "" {
			return "", fmt.Errorf("user-posts requires --user")
		}
		return "user=" + opts.userID, nil
	case feeds.KindComments:
		if opts.postID <= 0 {
			return "", fmt.Errorf("comments requires --post")
		}
		return fmt.Sprintf("post=%d", opts.postID), nil
	case feeds.KindMembers:
		if opts.groupID <= 0 {
			return "", fmt.Errorf("members requires --group")
		}
		return fmt.Sprintf("group=%d", opts.groupID), nil
	case feeds.KindSearch:
		if strings.TrimSpace(opts.chatID) == "" {
			return "", fmt.Errorf("search requires --chat")
		}
		if strings.TrimSpace(opts.keyword) == "" {
			return "", fmt.Errorf("search requires --keyword")
		}
		return fmt.Sprintf("chat=%s,q=%s", opts.chatID, strings.TrimSpace(opts.keyword)), nil
	default:
		return "", fmt.Errorf("unsupported list kind %q", kind)
	}
}

// loadConfig loads the config file and applies flag overrides on top.
func loadConfig(opts pullOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.pageSize > 0 {
		cfg.Defaults.PageSize = opts.pageSize
		for name, lc := range cfg.Lists {
			lc.PageSize = 0
			cfg.Lists[name] = lc
		}
	}
	if opts.format != "" {
		cfg.Defaults.OutputFormat = opts.format
	}
	if opts.transport != "" {
		cfg.API.Transport = opts.transport
	}
	if opts.stateDir != "" {
		cfg.Defaults.StateDir = opts.stateDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// getToken returns the API token from flag or environment variable
func getToken(flagToken string, cfg *config.Config) string {
	if flagToken != "" {
		return flagToken
	}
	return cfg.Token()
}

// serveMetrics exposes the collector on addr until the returned function is
// called.
func serveMetrics(addr string, c *metrics.Collector, log *logrus.Entry) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	log.WithField("addr", ln.Addr().String()).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func printSummary(e *env, kind feeds.Kind, res outcome, s metadata.Stats, elapsed time.Duration) {
	if res.resumed && res.pages == 0 {
		fmt.Fprintf(e.stderr, "Nothing to do: %s is complete (%s items in earlier runs)\n",
			kind, humanize.Comma(int64(res.baseCount)))
		return
	}

	fmt.Fprintf(e.stderr, "Pulled %s %s in %s (%s pages, %s duplicates dropped)\n",
		humanize.Comma(int64(res.written)), kind, elapsed.Round(time.Millisecond),
		humanize.Comma(int64(res.pages)), humanize.Comma(int64(s.Duplicates)))
	if res.hasMore {
		fmt.Fprintf(e.stderr, "More items are available; rerun with --resume to continue\n")
	}
}
