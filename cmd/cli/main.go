// Command bl is a CLI client for the bloglist service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/bloglist/internal/convert"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "bloglist")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bloglist")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads exp from an access token without verifying it; the
// server remains the authority on validity.
func tokenExpiry(raw string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

// ---- utils ----

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `bl CLI
Usage:
  bl [-addr URL] <cmd> [args]

Commands:
  version
  register   -u <username> [-name <name>] -p <password>
  login      -u <username> -p <password>           (saves token)
  list
  add        -title <t> -url <u> [-author <a>] [-likes <n>]
  like       -id <uuid> -likes <n>
  rm         -id <uuid>
  users
  stats
`)
}

var errUsage = errors.New("usage")

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches subcommands and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// global flags
	gfs := flag.NewFlagSet("bl", flag.ContinueOnError)
	gfs.SetOutput(stderr)
	addr := gfs.String("addr", "http://localhost:3003", "server base URL")
	gfs.Usage = func() { usage(stderr) }
	if err := gfs.Parse(args); err != nil {
		return 2
	}
	if gfs.NArg() < 1 {
		usage(stderr)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := dispatch(ctx, *addr, gfs.Arg(0), gfs.Args()[1:], stdout, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		usage(stderr)
		return 2
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

func dispatch(ctx context.Context, addr, cmd string, args []string, stdout, stderr io.Writer) error {
	switch cmd {

	case "version":
		fmt.Fprintf(stdout, "bl %s (%s)\n", version, buildDate)
		return nil

	case "register":
		fs := subFlags("register", stderr)
		u := fs.String("u", "", "username")
		name := fs.String("name", "", "display name")
		p := fs.String("p", "", "password")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *u == "" {
			return errors.New("need -u")
		}
		out, err := newClient(addr, "").register(ctx, convert.RegisterRequest{Username: *u, Name: *name, Password: *p})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out.ID)
		return nil

	case "login":
		fs := subFlags("login", stderr)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *u == "" || *p == "" {
			return errors.New("need -u and -p")
		}
		out, err := newClient(addr, "").login(ctx, convert.LoginRequest{Username: *u, Password: *p})
		if err != nil {
			return err
		}
		tf := tokenFile{AccessToken: out.Token, Username: out.Username, ExpiresAt: tokenExpiry(out.Token)}
		if err := saveToken(tf); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil

	case "list":
		out, err := newClient(addr, "").listBlogs(ctx)
		if err != nil {
			return err
		}
		printJSON(stdout, out)
		return nil

	case "add":
		fs := subFlags("add", stderr)
		title := fs.String("title", "", "blog title")
		author := fs.String("author", "", "blog author")
		url := fs.String("url", "", "blog url")
		likes := fs.Int64("likes", -1, "initial likes (default 0)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *title == "" || *url == "" {
			return errors.New("need -title and -url")
		}
		token, err := loadToken()
		if err != nil {
			return err
		}
		req := convert.BlogRequest{Title: title, Author: author, URL: url}
		if *likes >= 0 {
			req.Likes = likes
		}
		out, err := newClient(addr, token).createBlog(ctx, req)
		if err != nil {
			return err
		}
		printJSON(stdout, out)
		return nil

	case "like":
		fs := subFlags("like", stderr)
		id := fs.String("id", "", "blog id (uuid)")
		likes := fs.Int64("likes", -1, "new like count")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if err := checkID(*id); err != nil {
			return err
		}
		if *likes < 0 {
			return errors.New("need -likes >= 0")
		}
		out, err := newClient(addr, "").updateLikes(ctx, *id, *likes)
		if err != nil {
			return err
		}
		printJSON(stdout, out)
		return nil

	case "rm":
		fs := subFlags("rm", stderr)
		id := fs.String("id", "", "blog id (uuid)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if err := checkID(*id); err != nil {
			return err
		}
		token, err := loadToken()
		if err != nil {
			return err
		}
		if err := newClient(addr, token).deleteBlog(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "deleted")
		return nil

	case "users":
		out, err := newClient(addr, "").listUsers(ctx)
		if err != nil {
			return err
		}
		printJSON(stdout, out)
		return nil

	case "stats":
		out, err := newClient(addr, "").stats(ctx)
		if err != nil {
			return err
		}
		printJSON(stdout, out)
		return nil

	default:
		return errUsage
	}
}

func subFlags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func checkID(id string) error {
	if id == "" {
		return errors.New("need -id")
	}
	if _, err := uuid.FromString(id); err != nil {
		return fmt.Errorf("bad -id: %w", err)
	}
	return nil
}
