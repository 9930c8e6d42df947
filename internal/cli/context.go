package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mihira-vl/launcher/apiclient"
	"github.com/mihira-vl/launcher/auth"
	"github.com/mihira-vl/launcher/backend"
	"github.com/mihira-vl/launcher/internal/config"
	"github.com/mihira-vl/launcher/keycloak"
	"github.com/mihira-vl/launcher/projects"
)

// appContext wires the core services together, mirroring the desktop
// launcher's application context.
type appContext struct {
	cfg      config.Config
	session  *auth.Service
	projects *projects.Service
}

func newAppContext() (*appContext, error) {
	cfg := config.New()

	session, err := auth.NewService(keycloak.New(cfg), backend.NewIdentityClient(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "[newAppContext] session manager")
	}

	api, err := apiclient.New(cfg, session, apiclient.WithSessionExpiredFunc(func(reason string) {
		fmt.Fprintln(os.Stderr, reason)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "[newAppContext] api client")
	}

	projectService, err := projects.NewService(api)
	if err != nil {
		return nil, errors.Wrap(err, "[newAppContext] projects service")
	}

	return &appContext{
		cfg:      cfg,
		session:  session,
		projects: projectService,
	}, nil
}

// ensureLogin authenticates with the supplied or prompted credentials. The
// credential store is in-memory, so every CLI invocation establishes its own
// session.
func (a *appContext) ensureLogin(cmd *cobra.Command) (*auth.AuthenticatedUser, error) {
	if emailFlag == "" {
		return nil, errors.New("--email is required")
	}

	password := passwordFlag
	if password == "" {
		var err error
		password, err = promptPassword(cmd.OutOrStdout())
		if err != nil {
			return nil, err
		}
	}

	return a.session.Login(cmd.Context(), emailFlag, password)
}
