package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/joho/godotenv"

	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/idle"
	"github.com/presenced/presenced/internal/ipc"
	"github.com/presenced/presenced/internal/monitor"
	"github.com/presenced/presenced/internal/notify"
	"github.com/presenced/presenced/internal/power"
	"github.com/presenced/presenced/internal/service"
	"github.com/presenced/presenced/internal/store"
)

// checkoutTimeout bounds the shutdown handshake; termination proceeds
// whether or not the checkout confirmed.
const checkoutTimeout = 3 * time.Second

func main() {
	_ = godotenv.Load()

	argPath := "/etc/presenced/config.toml"
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	log.Println("Using config file at:", argPath)
	cfg, err := config.LoadFromFile(argPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.UserID == "" {
		log.Fatal("user_id must be set in the config file")
	}

	st, err := store.Open(cfg.DSNFromEnv())
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	idleSrc, err := idle.NewMonitor()
	if err != nil {
		log.Fatal("Failed to connect idle source:", err)
	}
	defer idleSrc.Close()

	svc := service.New(st, cfg.UserID, cfg.Windows)
	eng := monitor.NewEngine(idleSrc, cfg.Windows)

	var notifier service.Notifier
	if n, err := ipc.NewDesktopNotifier(); err != nil {
		log.Println("Desktop notifications unavailable:", err)
	} else {
		notifier = n
		defer n.Close()
	}
	pump := service.NewPump(svc, eng, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown: ask for a full checkout first, then stop. The
	// pump keeps running during the handshake so the checkout can land.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		eng.RequestCheckout(checkoutTimeout)
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Monitoring logind for power events...")
		if err := power.Watch(ctx, eng); err != nil {
			log.Println("power watcher error:", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Opening session D-Bus service...")
		if err := serve(ctx, svc, eng); err != nil {
			log.Println("ipc service error:", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		pump.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RunSweeper(ctx, mailer(cfg))
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil {
			log.Println("monitor engine error:", err)
		}
	}()

	wg.Wait()
	fmt.Println("Shutdown complete")
}

// mailer returns nil when mailing is disabled; RunSweeper treats nil as
// no-op.
func mailer(cfg *config.Config) service.Mailer {
	m := notify.NewMailSender(cfg.Mail)
	if m == nil {
		return nil
	}
	return m
}

func serve(ctx context.Context, svc *service.Service, eng *monitor.Engine) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	reply, err := conn.RequestName(ipc.ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("failed to request name: %w", err)
	}

	m := &ipc.Manager{Svc: svc, Engine: eng}
	if err := conn.Export(m, dbus.ObjectPath(ipc.ObjectPath), ipc.InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}

	<-ctx.Done()
	return nil
}
