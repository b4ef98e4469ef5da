package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd deletes token.json and, with --forget-client, oauth_client.json.
type LogoutCmd struct {
	forgetClient bool
}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored Google credentials" }
func (c *LogoutCmd) Usage() string      { return "tasklist logout [--forget-client] [common flags]" }
func (c *LogoutCmd) NeedsBackend() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.forgetClient, "forget-client", false, "also remove oauth_client.json")
}

// SetForgetClient sets the --forget-client flag (for testing).
func (c *LogoutCmd) SetForgetClient(v bool) { c.forgetClient = v }

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, in io.Reader, out, errOut io.Writer) int {
	log := cfg.Log()
	removed := false

	if cfg.HasToken() {
		log.Debug("removing token", "path", cfg.TokenPath())
		if err := cfg.RemoveToken(); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
			return exitcode.AuthError
		}
		removed = true
	}

	if c.forgetClient {
		ok, err := cfg.RemoveOAuthClient()
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to remove oauth_client.json: %v\n", err)
			return exitcode.AuthError
		}
		if ok {
			log.Debug("removed oauth client", "path", cfg.OAuthClientPath())
			removed = true
		}
	}

	if !cfg.Quiet {
		if removed {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "not logged in")
		}
	}
	return exitcode.Success
}
