package entity

// ActorID identifica a quien registra un movimiento. Puede estar vacío;
// la decisión de exigirlo corresponde a la capa que llama al núcleo.
type ActorID string

func (a ActorID) String() string { return string(a) }

// IsZero indica si no hay identidad asociada.
func (a ActorID) IsZero() bool { return a == "" }
