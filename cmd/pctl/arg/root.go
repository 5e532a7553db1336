package arg

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/presenced/presenced/internal/ipc"
)

var rootCmd = &cobra.Command{
	Use:   "pctl",
	Short: "pctl is the command line tool for presenced",
	Long: `pctl talks to the presenced agent over D-Bus. Use it to check in
and out, manage away sessions, and inspect today's status.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// call invokes a manager method returning a single string.
func call(method string, args ...interface{}) (string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))
	var out string
	if err := obj.Call(ipc.InterfaceName+"."+method, 0, args...).Store(&out); err != nil {
		return "", err
	}
	return out, nil
}

// callVoid invokes a manager method with no return value.
func callVoid(method string, args ...interface{}) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))
	return obj.Call(ipc.InterfaceName+"."+method, 0, args...).Err
}
