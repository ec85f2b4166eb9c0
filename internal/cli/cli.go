// Package cli is the command layer of the casegraph binary. Each command
// parses its own flags, resolves the owner from a token where needed and
// prints its result as JSON.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/casegraph/internal/flagx"
	"github.com/dmitrijs2005/casegraph/internal/server/config"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/services"
)

// TokenEnv is consulted when a command needs an owner and -token is absent.
const TokenEnv = "CASEGRAPH_TOKEN"

// ErrUsage is returned for unknown commands and bad arguments.
var ErrUsage = errors.New("usage error")

// Backend is what the commands need from the wired application.
type Backend interface {
	Migrate(ctx context.Context) error
	Graph() *services.GraphService
	Dispatcher() *enrichment.Dispatcher
	IssueToken(owner string) (string, error)
	Owner(token string) (string, error)
}

type CLI struct {
	backend Backend
	in      *bufio.Reader
	out     io.Writer
	// prompt receives interactive prompts so stdout stays machine readable.
	prompt io.Writer
	getenv func(string) string
}

func New(backend Backend, in io.Reader, out io.Writer) *CLI {
	return &CLI{backend: backend, in: bufio.NewReader(in), out: out, prompt: os.Stderr, getenv: os.Getenv}
}

const usage = `Usage: casegraph [config flags] <command> [args]

Commands:
  migrate                                   apply database migrations
  token -owner NAME                         mint an owner token
  adapters -kind KIND                       list adapters for an entity kind
  case add|list|get|update|delete           manage cases
  entity add|list|get|update|delete         manage entities
  relationship add|list|get|update|delete   manage relationships
  credential add|list|get|update|delete     manage provider credentials
  enrich -entity ID [-adapter NAME]         run one enrichment

Commands acting for an owner take -token or read $CASEGRAPH_TOKEN.
`

// Run executes the command named by args. Process-level config flags
// anywhere in args are ignored.
func (c *CLI) Run(ctx context.Context, args []string) error {
	name, rest := flagx.Subcommand(flagx.RemoveArgs(args, config.FlagNames()))

	switch name {
	case "migrate":
		if err := c.backend.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "migrations applied")
		return nil
	case "token":
		return c.token(rest)
	case "adapters":
		return c.adapters(rest)
	case "case":
		return c.cases(ctx, rest)
	case "entity":
		return c.entities(ctx, rest)
	case "relationship":
		return c.relationships(ctx, rest)
	case "credential":
		return c.credentials(ctx, rest)
	case "enrich":
		return c.enrich(ctx, rest)
	case "", "help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}
}

func (c *CLI) token(args []string) error {
	fs := c.flagSet("token")
	owner := fs.String("owner", "", "owner identity")
	if err := parse(fs, args); err != nil {
		return err
	}
	tok, err := c.backend.IssueToken(*owner)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, tok)
	return nil
}

func (c *CLI) adapters(args []string) error {
	fs := c.flagSet("adapters")
	kind := fs.String("kind", "", "entity kind")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *kind == "" {
		return fmt.Errorf("%w: -kind is required", ErrUsage)
	}
	return c.print(c.backend.Dispatcher().AvailableAdapters(*kind))
}

func (c *CLI) enrich(ctx context.Context, args []string) error {
	fs := c.flagSet("enrich")
	token := tokenFlag(fs)
	entityID := fs.Int64("entity", 0, "entity id")
	adapter := fs.String("adapter", "", "adapter name (default: first for the kind)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *entityID <= 0 {
		return fmt.Errorf("%w: -entity is required", ErrUsage)
	}
	owner, err := c.owner(*token)
	if err != nil {
		return err
	}
	res, err := c.backend.Dispatcher().RunEntity(ctx, owner, *entityID, *adapter)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *CLI) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return nil
}

func tokenFlag(fs *flag.FlagSet) *string {
	return fs.String("token", "", "owner token (default $"+TokenEnv+")")
}

func (c *CLI) owner(token string) (string, error) {
	if token == "" {
		token = strings.TrimSpace(c.getenv(TokenEnv))
	}
	if token == "" {
		return "", fmt.Errorf("%w: -token or $%s is required", ErrUsage, TokenEnv)
	}
	return c.backend.Owner(token)
}

func (c *CLI) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// action splits "<verb> [flags]" for the resource commands.
func action(resource string, args []string) (string, []string, error) {
	verb, rest := flagx.Subcommand(args)
	if verb == "" {
		return "", nil, fmt.Errorf("%w: %s needs one of add, list, get, update, delete", ErrUsage, resource)
	}
	return verb, rest, nil
}

// optional maps an unset string flag to nil.
func optional(fs *flag.FlagSet, name, value string) *string {
	if !isSet(fs, name) {
		return nil
	}
	return &value
}
