package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jrsteele09/go-auth-client/client"
	"github.com/jrsteele09/go-auth-client/internal/config"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/token/filerepo"
	tokenfakerepo "github.com/jrsteele09/go-auth-client/token/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newApp(c config.Config) *cli.App {
	return &cli.App{
		Name:  "clutchctl",
		Usage: "Call the Clutch API through the authenticated retrying client",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "banner",
				Usage: "Print the application banner",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("banner") {
				displayAppname(c.GetAppName())
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and store the session tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"CLUTCH_PASSWORD"}, Required: true, Usage: "Account password"},
				},
				Action: withEnv(c, loginAction),
			},
			{
				Name:   "logout",
				Usage:  "End the session and remove stored tokens",
				Action: withEnv(c, logoutAction),
			},
			{
				Name:   "status",
				Usage:  "Show whether a session is stored and when it expires",
				Action: withEnv(c, statusAction),
			},
			{
				Name:      "get",
				Usage:     "GET an API path and print the JSON response",
				ArgsUsage: "<path[?query]>",
				Action:    withEnv(c, requestAction(http.MethodGet)),
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body to an API path and print the response",
				ArgsUsage: "<path[?query]>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Value: "{}", Usage: "JSON request body"},
				},
				Action: withEnv(c, requestAction(http.MethodPost)),
			},
		},
	}
}

// env is what every command needs: a store, a client and a session service.
type env struct {
	store   *token.Store
	client  *client.Client
	session *session.Service
}

func withEnv(c config.Config, action func(context.Context, *cli.Context, *env) error) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := newEnv(ctx, c)
		if err != nil {
			return err
		}
		return action(ctx, cliCtx, e)
	}
}

func newEnv(ctx context.Context, c config.Config) (*env, error) {
	repo, err := tokenRepo(c)
	if err != nil {
		return nil, err
	}

	store, err := token.NewStore(ctx, repo)
	if autherrors.Is(err, autherrors.ErrCorruptTokenFile) {
		log.Warn().Msg("Stored session is unreadable, starting a new one")
		if err := repo.Clear(ctx); err != nil {
			return nil, err
		}
		store, err = token.NewStore(ctx, repo)
	}
	if err != nil {
		return nil, err
	}

	cl, err := client.NewFromConfig(c, store)
	if err != nil {
		return nil, err
	}
	return &env{store: store, client: cl, session: session.NewService(cl, store)}, nil
}

func tokenRepo(c config.Config) (token.Repo, error) {
	if c.GetTokenPassphrase() == "" {
		log.Warn().Msg("CLUTCH_TOKEN_PASSPHRASE is not set, the session will not outlive this command")
		return tokenfakerepo.NewFakeTokensRepo(), nil
	}
	path := c.GetTokenFile()
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "tokenRepo UserConfigDir")
		}
		path = filepath.Join(dir, "clutch", "tokens")
	}
	return filerepo.New(path, c.GetTokenPassphrase())
}

func loginAction(ctx context.Context, cliCtx *cli.Context, e *env) error {
	resp, err := e.session.Login(ctx, cliCtx.String("email"), cliCtx.String("password"))
	if err != nil {
		return err
	}
	rec := e.store.Snapshot()
	log.Info().Time("expires_at", rec.ExpiresAt).Bool("refreshable", resp.RefreshToken != "").Msg("Logged in")
	return nil
}

func logoutAction(ctx context.Context, _ *cli.Context, e *env) error {
	if err := e.session.Logout(ctx); err != nil {
		return err
	}
	log.Info().Msg("Logged out")
	return nil
}

func statusAction(_ context.Context, cliCtx *cli.Context, e *env) error {
	rec := e.store.Snapshot()
	status := map[string]any{
		"logged_in":   rec.AccessToken != "",
		"expired":     e.store.IsExpired(),
		"refreshable": rec.RefreshToken != "",
	}
	if !rec.ExpiresAt.IsZero() {
		status["expires_at"] = rec.ExpiresAt.Format(time.RFC3339)
	}
	return printJSON(cliCtx, status)
}

func requestAction(method string) func(context.Context, *cli.Context, *env) error {
	return func(ctx context.Context, cliCtx *cli.Context, e *env) error {
		path := cliCtx.Args().First()
		if path == "" {
			return cli.Exit("a path is required", 2)
		}

		req := client.NewRequest(method, path).WithHeader("Accept", "application/json")
		if method == http.MethodPost {
			body := cliCtx.String("data")
			if !json.Valid([]byte(body)) {
				return cli.Exit("--data must be valid JSON", 2)
			}
			req = req.WithBody([]byte(body), "application/json")
		}

		var out json.RawMessage
		if err := e.client.DoJSON(ctx, req, &out); err != nil {
			return err
		}
		return printJSON(cliCtx, out)
	}
}

func printJSON(cliCtx *cli.Context, v any) error {
	enc := json.NewEncoder(cliCtx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
