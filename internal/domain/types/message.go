// Package types define tipos de dominio compartidos entre paquetes.
package types

import (
	"fmt"
	"time"
)

// Document es un documento schema-flexible tal como lo guarda un document store.
type Document map[string]any

// Filter es un filtro de igualdad sobre campos de primer nivel.
// Un Filter vacío (o nil) matchea cualquier documento.
type Filter map[string]any

// Matches retorna true si todos los campos del filtro coinciden con el documento.
func (f Filter) Matches(doc Document) bool {
	for k, want := range f {
		got, ok := doc[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Campos del documento Message.
const (
	FieldSender    = "sender"
	FieldRecipient = "recipient"
	FieldMessage   = "message"
	FieldTimestamp = "timestamp"
)

// Message es el único tipo de entidad que siembra el initializer.
// No hay unicidad ni validación: sólo la forma del documento.
type Message struct {
	Sender    string    `yaml:"sender" json:"sender"`
	Recipient string    `yaml:"recipient" json:"recipient"`
	Message   string    `yaml:"message" json:"message"`
	Timestamp time.Time `yaml:"-" json:"timestamp"`
}

// Document convierte el mensaje al documento persistido.
func (m Message) Document() Document {
	return Document{
		FieldSender:    m.Sender,
		FieldRecipient: m.Recipient,
		FieldMessage:   m.Message,
		FieldTimestamp: m.Timestamp,
	}
}

// MessageFromDocument reconstruye un Message desde un documento.
// Campos ausentes o de otro tipo quedan en zero value.
func MessageFromDocument(doc Document) Message {
	var m Message
	m.Sender, _ = doc[FieldSender].(string)
	m.Recipient, _ = doc[FieldRecipient].(string)
	m.Message, _ = doc[FieldMessage].(string)
	switch ts := doc[FieldTimestamp].(type) {
	case time.Time:
		m.Timestamp = ts
	case string:
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.Timestamp = t
		}
	}
	return m
}

// IndexOrder es la dirección de un índice de un solo campo.
type IndexOrder int

const (
	Ascending  IndexOrder = 1
	Descending IndexOrder = -1
)

// IsValid retorna true si el orden es 1 o -1.
func (o IndexOrder) IsValid() bool {
	return o == Ascending || o == Descending
}

// IndexSpec describe un índice secundario sobre un campo.
type IndexSpec struct {
	Field string     `yaml:"field" json:"field"`
	Order IndexOrder `yaml:"order" json:"order"`
	// Name es opcional; si está vacío se usa la convención de Mongo (<field>_<order>).
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// IndexName retorna el nombre efectivo del índice.
func (s IndexSpec) IndexName() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s_%d", s.Field, s.Order)
}

// SameKeys compara los keys del índice, ignorando el nombre.
// Dos índices equivalentes con distinto nombre se consideran el mismo.
func (s IndexSpec) SameKeys(o IndexSpec) bool {
	return s.Field == o.Field && s.Order == o.Order
}

// TimestampMode define cómo se asigna el timestamp a los registros sembrados.
type TimestampMode string

const (
	// TimestampPerRecord llama al reloj una vez por registro (default).
	TimestampPerRecord TimestampMode = "per_record"
	// TimestampSnapshot usa un único instante para todo el lote.
	TimestampSnapshot TimestampMode = "snapshot"
)

// IsValid retorna true si el modo es válido.
func (m TimestampMode) IsValid() bool {
	switch m {
	case "", TimestampPerRecord, TimestampSnapshot:
		return true
	}
	return false
}
