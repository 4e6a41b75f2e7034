// Command example walks through the authorization-code flow against a local
// redirect listener and then reads a few endpoints with the new token.
//
// The application must be registered with an http://localhost redirect URI:
//
//	export REDDIT_CLIENT_ID="your_client_id"
//	export REDDIT_REDIRECT_URI="http://localhost:8080/callback"
//	go run ./cmd/example --subreddit golang
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	graw "github.com/jamesprial/go-reddit-session"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

type args struct {
	Subreddit  string `arg:"--subreddit" default:"golang" help:"subreddit to list"`
	Limit      int    `arg:"--limit" default:"5" help:"links to show"`
	NoBrowser  bool   `arg:"--no-browser" help:"print the authorization URL instead of opening it"`
	PrintToken bool   `arg:"--print-token" help:"print the access token for examples/monitor"`
	LogLevel   string `arg:"--log-level,env:LOG_LEVEL" default:"info" help:"debug, info, warn or error"`
	LogFile    string `arg:"--log-file,env:LOG_FILE" help:"write logs to a rotated file instead of stderr"`
}

func (args) Description() string {
	return "Authorize against reddit and read a few endpoints."
}

func main() {
	var a args
	arg.MustParse(&a)

	logger, err := newLogger(a.LogLevel, a.LogFile)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a, logger); err != nil {
		logger.Error("example failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level, file string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var w io.Writer = os.Stderr
	if file != "" {
		w = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, a args, logger *slog.Logger) error {
	cfg, err := graw.LoadConfig()
	if err != nil {
		return err
	}

	token, err := authorize(ctx, cfg, a.NoBrowser, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Authorized with scopes %v (expires %s)\n", token.Scopes, token.Expiry.Format(time.Kitchen))
	if a.PrintToken {
		fmt.Printf("export REDDIT_ACCESS_TOKEN=%s\n", token.AccessToken)
	}

	session, err := graw.NewSession(token, &graw.SessionConfig{
		Logger:    logger,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Limiter:   rate.NewLimiter(rate.Every(time.Second), 5),
	})
	if err != nil {
		return err
	}
	return browse(ctx, session, a)
}

// authorize serves the redirect URI on localhost, issues the challenge and
// waits for the token.
func authorize(ctx context.Context, cfg *graw.Config, noBrowser bool, logger *slog.Logger) (*types.Token, error) {
	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		return nil, err
	}
	if redirect.Scheme != "http" {
		return nil, fmt.Errorf("this example needs an http://localhost redirect URI, got %q", cfg.RedirectURI)
	}

	var opener graw.BrowserOpener = graw.SystemBrowser{}
	if noBrowser {
		opener = graw.BrowserFunc(func(u string) error {
			fmt.Printf("Open this URL to authorize:\n\n  %s\n\n", u)
			return nil
		})
	}
	auth, err := graw.NewAuthorizer(cfg, opener, nil, logger)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	callbackPath := redirect.EscapedPath()
	if callbackPath == "" {
		callbackPath = "/"
	}

	tokens := make(chan result.Result[*types.Token], 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		received := *r.URL
		received.Scheme = redirect.Scheme
		received.Host = r.Host

		deliver := func(res result.Result[*types.Token]) {
			select {
			case tokens <- res:
			default:
			}
		}
		if err := auth.ReceiveRedirect(ctx, &received, deliver); err != nil {
			logger.Warn("rejected redirect", "error", err)
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			deliver(result.Failure[*types.Token](err))
			return
		}
		_, _ = fmt.Fprint(w, "Authorization received. You can close this window.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("redirect listener failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := auth.Challenge([]types.Scope{types.ScopeIdentity, types.ScopeRead, types.ScopePrivateMessages, types.ScopeMySubreddits}); err != nil {
		return nil, err
	}

	select {
	case res := <-tokens:
		return res.Get()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// await bridges a callback-style call to a blocking one.
func await[T any](ctx context.Context, start func(fn func(result.Result[T])) *graw.Operation) (T, error) {
	var zero T
	results := make(chan result.Result[T], 1)
	op := start(func(r result.Result[T]) { results <- r })
	if op == nil {
		return zero, errors.New("call was not dispatched")
	}
	select {
	case r := <-results:
		return r.Get()
	case <-ctx.Done():
		op.Cancel()
		return zero, ctx.Err()
	}
}

func browse(ctx context.Context, session *graw.Session, a args) error {
	var (
		account *types.AccountData
		inbox   *types.Listing
		links   *types.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		account, err = await(gctx, func(fn func(result.Result[*types.AccountData])) *graw.Operation {
			return session.GetProfile(gctx, fn)
		})
		return err
	})
	g.Go(func() (err error) {
		inbox, err = await(gctx, func(fn func(result.Result[*types.Listing])) *graw.Operation {
			return session.GetMessage(gctx, types.MessageUnread, &types.Paginator{Limit: 10}, fn)
		})
		return err
	})
	g.Go(func() (err error) {
		links, err = await(gctx, func(fn func(result.Result[*types.Listing])) *graw.Operation {
			return session.GetList(gctx, &types.Paginator{Limit: a.Limit}, types.LinkSortHot, a.Subreddit, fn)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("\nLogged in as u/%s (link karma %d, comment karma %d)\n", account.Name, account.LinkKarma, account.CommentKarma)
	fmt.Printf("Unread messages: %d\n", len(inbox.Messages()))

	posts := links.Posts()
	fmt.Printf("\nHot in r/%s:\n", a.Subreddit)
	for i, post := range posts {
		fmt.Printf("%d. %s (score: %d, comments: %d)\n", i+1, post.Title, post.Score, post.NumComments)
	}

	if len(posts) > 0 {
		page, err := await(ctx, func(fn func(result.Result[*types.CommentsPage])) *graw.Operation {
			return session.GetArticles(ctx, &types.Paginator{}, posts[0].Name, types.CommentSortTop, fn)
		})
		if err != nil {
			return err
		}
		tree := graw.CommentTreeOf(page)
		fmt.Printf("\nTop comments on %q (%d loaded, %d more on the server):\n", posts[0].Title, tree.Count(), len(tree.MoreIDs()))
		for _, c := range tree.GetTopLevel()[:min(3, len(tree.GetTopLevel()))] {
			fmt.Printf("  - %s: %.80s\n", c.Author, c.Body)
		}
	}

	rl := session.RateLimit()
	fmt.Printf("\nRate limit: %d used, %d remaining, resets in %ds\n", rl.Used, rl.Remaining, rl.Reset)
	return nil
}
