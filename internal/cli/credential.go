package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/casegraph/internal/cryptox"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

func (c *CLI) credentials(ctx context.Context, args []string) error {
	verb, rest, err := action("credential", args)
	if err != nil {
		return err
	}

	fs := c.flagSet("credential " + verb)
	token := tokenFlag(fs)
	id := fs.Int64("id", 0, "credential id")
	name := fs.String("name", "", "credential name, e.g. SHODAN_API_KEY")
	description := fs.String("description", "", "credential description")
	rotate := fs.Bool("rotate", false, "prompt for a new secret on update")
	active := fs.Bool("active", true, "whether the credential is used by adapters")
	if err := parse(fs, rest); err != nil {
		return err
	}
	owner, err := c.owner(*token)
	if err != nil {
		return err
	}
	g := c.backend.Graph()

	switch verb {
	case "add":
		secret, err := c.readSecret(fmt.Sprintf("Secret for %s: ", *name))
		if err != nil {
			return err
		}
		cred, err := g.CreateCredential(ctx, owner, models.CredentialCreate{
			Name:        *name,
			Description: optional(fs, "description", *description),
			Secret:      secret,
		})
		if err != nil {
			return err
		}
		return c.print(cred)
	case "list":
		list, err := g.ListCredentials(ctx, owner)
		if err != nil {
			return err
		}
		return c.print(list)
	case "get":
		cred, err := g.GetCredential(ctx, owner, *id)
		if err != nil {
			return err
		}
		return c.print(cred)
	case "update":
		patch := models.CredentialUpdate{
			Name:        optional(fs, "name", *name),
			Description: optional(fs, "description", *description),
		}
		if isSet(fs, "active") {
			patch.Active = active
		}
		if *rotate {
			secret, err := c.readSecret("New secret: ")
			if err != nil {
				return err
			}
			patch.Secret = &secret
		}
		cred, err := g.UpdateCredential(ctx, owner, *id, patch)
		if err != nil {
			return err
		}
		return c.print(cred)
	case "delete":
		if err := g.DeleteCredential(ctx, owner, *id); err != nil {
			return err
		}
		return c.print(deleted{*id})
	default:
		return fmt.Errorf("%w: unknown credential action %q", ErrUsage, verb)
	}
}

// readSecret reads without echo from a terminal, or one line from the
// input otherwise (pipes, tests).
func (c *CLI) readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(c.prompt, prompt)
		b, err := readPassword(fd)
		fmt.Fprintln(c.prompt)
		if err != nil {
			return "", err
		}
		defer cryptox.Wipe(b)
		return string(b), nil
	}
	return readLine(c.in)
}
