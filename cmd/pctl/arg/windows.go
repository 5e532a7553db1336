package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	lunchStartFlag string
	lunchEndFlag   string
	workEndFlag    string
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Push new exclusion windows to the agent",
	Run: func(cmd *cobra.Command, args []string) {
		err := callVoid("UpdateWindows", lunchStartFlag, lunchEndFlag, workEndFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "window update failed:", err)
			os.Exit(1)
		}
		fmt.Println("Exclusion windows updated")
	},
}

func init() {
	windowsCmd.Flags().StringVar(&lunchStartFlag, "lunch-start", "11:30", "lunch window start (HH:MM)")
	windowsCmd.Flags().StringVar(&lunchEndFlag, "lunch-end", "13:00", "lunch window end (HH:MM)")
	windowsCmd.Flags().StringVar(&workEndFlag, "work-end", "18:00", "end of working day (HH:MM)")
	rootCmd.AddCommand(windowsCmd)
}
