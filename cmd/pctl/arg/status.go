package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's attendance status",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := call("GetStatus")
		if err != nil {
			fmt.Fprintln(os.Stderr, "status failed:", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

var memoCmd = &cobra.Command{
	Use:   "memo <text>",
	Short: "Set the memo on today's record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := call("SetMemo", args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "memo update failed:", err)
			os.Exit(1)
		}
		fmt.Println("Memo updated")
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile unprocessed past-day records now",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := call("Sweep")
		if err != nil {
			fmt.Fprintln(os.Stderr, "sweep failed:", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(memoCmd)
	rootCmd.AddCommand(sweepCmd)
}
