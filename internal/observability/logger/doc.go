// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init().
//   - Context Scoping: cada corrida de seed lleva un logger "scoped" con
//     run_id/target en el contexto, sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Output: stderr, para que stdout quede libre para el resumen del CLI.
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,   // "dev" o "prod"
//	    Level: cfg.Log.Level, // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En el seed (con contexto):
//
//	log := logger.From(ctx).With(logger.Step("ensure_index"))
//	log.Info("index created", logger.Collection("messages"))
package logger
