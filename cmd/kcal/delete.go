package kcal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete one of today's entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.controller.Load(ctx); err != nil {
				return err
			}
			if err := s.controller.Refresh(ctx); err != nil {
				return err
			}
			e, err := s.diary.Delete(ctx, id)
			if err != nil {
				return err
			}
			sum := s.controller.Summary()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d (%s)\n", id, e.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %d / %d kcal\n", sum.CaloriesEaten, sum.CaloriesGoal)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
