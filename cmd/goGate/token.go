package main

import (
	"fmt"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCmd(st *cliState) *cobra.Command {
	var (
		uid      string
		sid      string
		userName string
		locale   string
		register bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for manual testing",
		Long: `Signs a session token with the configured key and prints it. With
--register the session is also saved in the Redis registry, which strict
mode requires.

Example:
  curl -b "session_token=$(goGate token --uid 42)" localhost:3000/en/home`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uid == "" {
				return fmt.Errorf("--uid is required")
			}
			if sid == "" {
				sid = uuid.NewString()
			}

			g, err := goGate.New().WithConfig(st.config).WithLogger(st.logger).Build()
			if err != nil {
				return err
			}
			defer g.Close()

			token, err := g.Tokens().CreateSession(uid, sid, userName)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			if register {
				store := g.Sessions()
				if store == nil {
					return fmt.Errorf("--register needs Redis (set redis.addr or REDIS_ADDR)")
				}
				ttl := g.Tokens().TTL()
				now := time.Now()
				err := store.Save(cmd.Context(), &session.Session{
					SessionID: sid,
					UserID:    uid,
					UserName:  userName,
					Locale:    locale,
					CreatedAt: now.Unix(),
					ExpiresAt: now.Add(ttl).Unix(),
				}, ttl)
				if err != nil {
					return fmt.Errorf("register session: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "User ID")
	cmd.Flags().StringVar(&sid, "sid", "", "Session ID (random when empty)")
	cmd.Flags().StringVar(&userName, "name", "", "User display name")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale recorded with the registered session")
	cmd.Flags().BoolVar(&register, "register", false, "Save the session in the Redis registry")
	return cmd
}
