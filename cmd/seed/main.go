// Command seed prepara el document store de mensajes: asegura la colección
// y su índice, y siembra los mensajes de ejemplo si la colección está vacía.
// Opcionalmente crea el usuario admin en la tabla users.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialseed/internal/config"
)

func main() {
	// .env (opcional) - el primero que define una key gana: .env.dev > .env
	_ = godotenv.Load(".env.dev", ".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Inicializa messages_db: colección, índice y mensajes de ejemplo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		// Sin subcomando: messages (+ admin si admin.enabled).
		RunE: a.wrap(a.runAll),
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", envOr("SEED_CONFIG", config.DefaultPath), "Archivo YAML de configuración (env SEED_CONFIG)")
	pf.StringVar(&a.logLevel, "log-level", "", "Nivel de log: debug|info|warn|error (env LOG_LEVEL)")
	pf.StringVar(&a.driver, "driver", "", "Driver del document store: mongo|postgres|memory (env STORAGE_DRIVER)")
	pf.StringVar(&a.dsn, "dsn", "", "DSN del document store (env STORAGE_DSN)")

	root.AddCommand(
		&cobra.Command{
			Use:   "messages",
			Short: "Asegura colección + índice y siembra los mensajes si está vacía",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.runMessages),
		},
		&cobra.Command{
			Use:   "admin",
			Short: "Crea el usuario admin en la tabla users si no existe",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.runAdmin),
		},
		&cobra.Command{
			Use:   "all",
			Short: "Corre messages y admin en paralelo (admin siempre, ignora admin.enabled)",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.runBoth),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Muestra existencia, cantidad de documentos e índices de la colección",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.runStatus),
		},
	)
	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
