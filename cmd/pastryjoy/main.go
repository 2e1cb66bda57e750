// Command pastryjoy is a terminal consumer of the PastryJoy client kit. It
// keeps the bearer credential and locale choice under the user config
// directory so a login survives until the next logout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pastryjoy/clientkit/pkg/config"
	"github.com/pastryjoy/clientkit/pkg/credstore"
	"github.com/pastryjoy/clientkit/pkg/identity"
	"github.com/pastryjoy/clientkit/pkg/locale"
	"github.com/pastryjoy/clientkit/pkg/logger"
	"github.com/pastryjoy/clientkit/pkg/session"
)

type clientConfig struct {
	APIBaseURL  string        `env:"PASTRYJOY_API_URL" envDefault:"http://localhost:8000"`
	HTTPTimeout time.Duration `env:"PASTRYJOY_HTTP_TIMEOUT" envDefault:"10s"`
	StateDir    string        `env:"PASTRYJOY_STATE_DIR"`
	Debug       bool          `env:"PASTRYJOY_DEBUG" envDefault:"false"`
}

const usage = `Usage: pastryjoy <command> [flags]

Commands:
  login     -u <username> -p <password>
  register  -e <email> -u <username> -p <password> [-n <full name>]
  logout
  whoami
  lang      <en|es>
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	var cfg clientConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(dir, "pastryjoy")
	}

	log := logger.Noop()
	if cfg.Debug {
		log = logger.New(logger.WithLevel(slog.LevelDebug))
	}

	creds := credstore.NewFileStore(filepath.Join(cfg.StateDir, "token"))
	choices := locale.NewFileChoiceStore(filepath.Join(cfg.StateDir, "locale"))
	client := identity.NewHTTPClient(cfg.APIBaseURL, creds,
		identity.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)

	mgr := session.New(client,
		session.WithCredentialStore(creds),
		session.WithChoiceStore(choices),
		session.WithLogger(log),
	)

	ctx := context.Background()
	mgr.Start(ctx)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "login":
		return cmdLogin(ctx, mgr, rest)
	case "register":
		return cmdRegister(ctx, mgr, rest)
	case "logout":
		mgr.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return cmdWhoami(mgr)
	case "lang":
		return cmdLang(ctx, mgr, choices, rest)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdLogin(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username or email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("login requires -u and -p")
	}

	if err := mgr.Login(ctx, *username, *password); err != nil {
		if errors.Is(err, identity.ErrAuthenticationFailed) {
			return errors.New("invalid username or password")
		}
		return err
	}
	return cmdWhoami(mgr)
}

func cmdRegister(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("e", "", "email address")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	name := fs.String("n", "", "full name (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := mgr.Register(ctx, identity.Registration{
		Email:       *email,
		Username:    *username,
		Password:    *password,
		DisplayName: *name,
	})
	if err != nil {
		if identity.IsRegistrationRejected(err) {
			return err
		}
		return fmt.Errorf("registration: %w", err)
	}
	return cmdWhoami(mgr)
}

func cmdWhoami(mgr *session.Manager) error {
	ident := mgr.Identity()
	if ident == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", ident.Username, ident.Email)
	fmt.Printf("  role:   %s\n", ident.Role)
	if ident.DisplayName != nil {
		fmt.Printf("  name:   %s\n", *ident.DisplayName)
	}
	fmt.Printf("  locale: %s\n", mgr.ActiveLocale())
	if mgr.IsAdmin() {
		fmt.Println("  admin:  yes")
	}
	return nil
}

func cmdLang(ctx context.Context, mgr *session.Manager, choices locale.ChoiceStore, args []string) error {
	if len(args) != 1 {
		return errors.New("lang requires exactly one argument: en or es")
	}
	l, ok := locale.Parse(args[0])
	if !ok {
		return fmt.Errorf("unsupported locale %q", args[0])
	}

	err := mgr.SaveLocalePreference(ctx, l)
	if errors.Is(err, session.ErrNotAuthenticated) {
		// Logged out: remember the choice on this device only. A later
		// login with a server-side preference will override it.
		err = choices.Set(l)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Language set to %s.\n", l)
	return nil
}
