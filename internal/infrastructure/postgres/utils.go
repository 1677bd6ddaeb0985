package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// isRetryable indica si Postgres abortó la transacción por concurrencia (serialización o deadlock).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// wrapErr agrega contexto al error y lo traduce a domain.ErrConcurrencyConflict cuando corresponde,
// de modo que el procesador pueda reintentar.
func wrapErr(op string, err error) error {
	if isUniqueViolation(err) || isRetryable(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConcurrencyConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validUUID evita enviar a Postgres identificadores que la columna UUID rechazaría.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
