package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var awayCmd = &cobra.Command{
	Use:   "away",
	Short: "Manage away sessions",
}

var awayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an away session now",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := call("StartAway")
		if err != nil {
			fmt.Fprintln(os.Stderr, "away start failed:", err)
			os.Exit(1)
		}
		fmt.Println("Away started, record", id)
	},
}

var awayStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the current away session",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := call("EndAway")
		if err != nil {
			fmt.Fprintln(os.Stderr, "away stop failed:", err)
			os.Exit(1)
		}
		fmt.Println("Away ended, record", id)
	},
}

func init() {
	awayCmd.AddCommand(awayStartCmd)
	awayCmd.AddCommand(awayStopCmd)
	rootCmd.AddCommand(awayCmd)
}
