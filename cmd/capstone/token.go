package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capstone/internal/pkg/jwt"
)

type tokenOptions struct {
	UserID int64
	Role   string
}

// tokenCmd 本地签发访问Token, 用于联调与运维
func tokenCmd() *cobra.Command {
	var opts tokenOptions
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发访问Token(联调使用)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.UserID <= 0 {
				return fmt.Errorf("--user-id 必须大于0")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := jwt.NewManager(&cfg.Auth.JWT).GenerateAccessToken(opts.UserID, opts.Role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.Int64VarP(&opts.UserID, "user-id", "u", 0, "用户ID")
	fs.StringVarP(&opts.Role, "role", "r", "", "角色声明(仅供参考, 以 users 表为准)")
	return cmd
}
