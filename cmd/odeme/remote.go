package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/middleware"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/roster"
	"github.com/mmynk/odemetakip/internal/textnorm"
)

var errNotLoggedIn = errors.New(`not logged in, run "odeme login" first`)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the server and drop the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ODEME_PASSWORD")
			}
			client := api.NewClient(http.DefaultClient, a.serverURL)
			resp, err := client.Login.CallUnary(cmd.Context(), connect.NewRequest(&api.LoginRequest{
				Email:    email,
				Password: password,
			}))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := a.saveToken(resp.Msg.Token); err != nil {
				return err
			}

			// Data typed before signing in is not carried over.
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Giriş yapıldı: %s\n", resp.Msg.User.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (default $ODEME_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a server list live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.remoteClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			lists, err := client.ListLists.CallUnary(ctx, connect.NewRequest(&api.ListListsRequest{}))
			if err != nil {
				return err
			}
			list, err := pickList(lists.Msg.Lists, a.listRef)
			if err != nil {
				return err
			}

			stream, err := client.Subscribe.CallServerStream(ctx, connect.NewRequest(&api.SubscribeRequest{ListID: list.ID}))
			if err != nil {
				return err
			}
			defer stream.Close()

			out := cmd.OutOrStdout()
			view := roster.New(list.ID)
			for stream.Receive() {
				ev := stream.Msg().Model()
				if !view.Apply(ev) {
					continue
				}
				fmt.Fprintf(out, "\n%s (%s %s)\n", list.Name, ev.Type, eventName(ev))
				if err := writeTable(out, view.Visible(search)); err != nil {
					return err
				}
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only athletes whose name contains this text")
	return cmd
}

func eventName(ev models.RosterEvent) string {
	if ev.Athlete.Name != "" {
		return ev.Athlete.Name
	}
	return ev.Athlete.ID
}

func pickList(lists []api.List, ref string) (api.List, error) {
	if len(lists) == 0 {
		return api.List{}, errListNotFound
	}
	if ref == "" {
		return lists[0], nil
	}
	for _, l := range lists {
		if l.ID == ref || textnorm.Equal(l.Name, ref) {
			return l, nil
		}
	}
	return api.List{}, fmt.Errorf("%w: %s", errListNotFound, ref)
}

func (a *app) remoteClient() (*api.Client, error) {
	data, err := os.ReadFile(a.cfg.Remote.TokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	token := middleware.ClientToken(strings.TrimSpace(string(data)))
	return api.NewClient(http.DefaultClient, a.serverURL, connect.WithInterceptors(token)), nil
}

func (a *app) saveToken(token string) error {
	path := a.cfg.Remote.TokenPath
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
