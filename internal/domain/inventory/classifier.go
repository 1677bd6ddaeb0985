package inventory

import "strings"

// Status clasificación del stock frente al umbral de seguridad del producto.
type Status string

const (
	StatusLow    Status = "LOW"
	StatusNormal Status = "NORMAL"
	StatusGood   Status = "GOOD"
)

// Classify clasifica una cantidad según el umbral de seguridad (servicio de dominio puro).
//
//	cantidad < umbral           -> LOW
//	umbral <= cantidad < 2*umbral -> NORMAL
//	cantidad >= 2*umbral        -> GOOD
//
// Con umbral 0 las bandas LOW y NORMAL quedan vacías y todo es GOOD.
func Classify(quantity, safetyThreshold int64) Status {
	if quantity < safetyThreshold {
		return StatusLow
	}
	if quantity < 2*safetyThreshold {
		return StatusNormal
	}
	return StatusGood
}

// IsSafetyAlert indica si una salida que deja la cantidad en quantity debe alertar.
// Es el mismo predicado que la banda LOW de Classify.
func IsSafetyAlert(quantity, safetyThreshold int64) bool {
	return Classify(quantity, safetyThreshold) == StatusLow
}

// ParseStatus interpreta un filtro de estado (sin distinguir mayúsculas).
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusLow:
		return StatusLow, true
	case StatusNormal:
		return StatusNormal, true
	case StatusGood:
		return StatusGood, true
	}
	return "", false
}
