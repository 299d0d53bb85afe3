package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - CORRIDA
// =================================================================================

// RunID crea un campo para el ID de la corrida.
func RunID(v string) zap.Field {
	return zap.String("run_id", v)
}

// Target crea un campo para el target del seed ("messages", "admin").
func Target(v string) zap.Field {
	return zap.String("target", v)
}

// Step crea un campo para el paso actual del seed.
func Step(v string) zap.Field {
	return zap.String("step", v)
}

// Duration crea un campo para la duración de un paso.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - ALMACENAMIENTO
// =================================================================================

// Driver crea un campo para el adapter de almacenamiento.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// DSN crea un campo para un connection string. Pasar siempre ya enmascarado.
func DSN(v string) zap.Field {
	return zap.String("dsn", v)
}

// Database crea un campo para el nombre de la base.
func Database(v string) zap.Field {
	return zap.String("database", v)
}

// Collection crea un campo para el nombre de la colección.
func Collection(v string) zap.Field {
	return zap.String("collection", v)
}

// Index crea un campo para el nombre de un índice.
func Index(v string) zap.Field {
	return zap.String("index", v)
}

// Username crea un campo para un username.
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - GENÉRICOS
// =================================================================================

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Strings crea un campo []string genérico.
func Strings(key string, v []string) zap.Field {
	return zap.Strings(key, v)
}
