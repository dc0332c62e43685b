// guaritactl manages kiosk mode on the workstation from the command line:
// it creates, removes and inspects the lock file the daemon watches.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"guarita/internal/infra/kiosklock"

	"github.com/spf13/cobra"
)

func defaultLockPath() string {
	stateDir, err := os.UserConfigDir()
	if err != nil {
		stateDir = "."
	}

	return filepath.Join(stateDir, "guarita", kiosklock.LockFileName)
}

func main() {
	var lockPath string

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	root := &cobra.Command{
		Use:           "guaritactl",
		Short:         "Controla o modo quiosque da estação",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&lockPath, "lock-file", defaultLockPath(), "caminho do arquivo de trava do quiosque")

	manager := func() *kiosklock.Manager {
		return kiosklock.NewManager(lockPath, logger)
	}

	root.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Ativa o modo quiosque",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := manager().Enable(); err != nil {
				return err
			}
			cmd.Printf("Modo quiosque ativado (%s)\n", lockPath)

			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Desativa o modo quiosque",
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := manager().Disable()
			if err != nil {
				return err
			}
			if removed {
				cmd.Println("Modo quiosque desativado")
			} else {
				cmd.Println("Modo quiosque já estava desativado")
			}

			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Mostra o estado do modo quiosque",
		Run: func(cmd *cobra.Command, _ []string) {
			m := manager()
			if !m.Enabled() {
				cmd.Println("Modo quiosque: desativado")

				return
			}

			cmd.Println("Modo quiosque: ativado")
			if info := m.Info(); info != nil {
				cmd.Printf("  criado em: %s\n", info.Created.Local().Format("02/01/2006 15:04:05"))
				cmd.Printf("  aplicação: %s (pid %d)\n", info.App, info.PID)
			}
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}
