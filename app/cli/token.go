package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookborrow/util/jwt"
)

var flagTTL time.Duration

// The identity provider is external; this mints a token for local use.
var tokenCmd = &cobra.Command{
	Use:   "token <borrower-id>",
	Short: "Issue a bearer token for a borrower id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateJWT(); err != nil {
			return err
		}
		tok, err := jwt.Issue(cfg.JWTSecret, args[0], flagTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 24*time.Hour, "Token lifetime")
}
