package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkInMemo string

var checkInCmd = &cobra.Command{
	Use:   "in",
	Short: "Check in for today",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := call("CheckIn", checkInMemo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "check-in failed:", err)
			os.Exit(1)
		}
		fmt.Println("Checked in, record", id)
	},
}

var checkOutCmd = &cobra.Command{
	Use:   "out",
	Short: "Check out for today",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := call("CheckOut")
		if err != nil {
			fmt.Fprintln(os.Stderr, "check-out failed:", err)
			os.Exit(1)
		}
		fmt.Println("Checked out, record", id)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel today's checkout and reopen the record",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := call("CancelCheckOut")
		if err != nil {
			fmt.Fprintln(os.Stderr, "cancel failed:", err)
			os.Exit(1)
		}
		fmt.Println("Reopened record", id)
	},
}

func init() {
	checkInCmd.Flags().StringVarP(&checkInMemo, "memo", "m", "", "memo for today's record")
	rootCmd.AddCommand(checkInCmd)
	rootCmd.AddCommand(checkOutCmd)
	rootCmd.AddCommand(cancelCmd)
}
