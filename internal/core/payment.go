package core

import "strings"

// PaymentMethod values are the strings persisted in the ledger data.
type PaymentMethod string

const (
	Unset    PaymentMethod = ""
	Cash     PaymentMethod = "efectivo"
	Debit    PaymentMethod = "tarjeta Debito"
	Credit   PaymentMethod = "tarjeta Credito"
	Transfer PaymentMethod = "transferencia"
)

// UnspecifiedLabel is shown wherever an entry has no payment method.
const UnspecifiedLabel = "No especificado"

var paymentAliases = map[string]PaymentMethod{
	"":                Unset,
	"unset":           Unset,
	"efectivo":        Cash,
	"cash":            Cash,
	"tarjeta debito":  Debit,
	"debito":          Debit,
	"debit":           Debit,
	"tarjeta credito": Credit,
	"credito":         Credit,
	"credit":          Credit,
	"transferencia":   Transfer,
	"transfer":        Transfer,
}

// PaymentMethods lists the selectable methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Cash, Debit, Credit, Transfer}
}

// ParsePaymentMethod maps user or stored text to a known method. Text that
// matches nothing is kept as is so that stored data round-trips.
func ParsePaymentMethod(s string) PaymentMethod {
	if pm, ok := paymentAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return pm
	}
	return PaymentMethod(s)
}

// Known reports whether pm is one of the closed set of methods (or unset).
func (pm PaymentMethod) Known() bool {
	switch pm {
	case Unset, Cash, Debit, Credit, Transfer:
		return true
	default:
		return false
	}
}

// Label returns the display text for pm.
func (pm PaymentMethod) Label() string {
	switch pm {
	case Unset:
		return UnspecifiedLabel
	case Cash:
		return "Efectivo"
	case Debit:
		return "Tarjeta Debito"
	case Credit:
		return "Tarjeta Credito"
	case Transfer:
		return "Transferencia"
	default:
		if strings.TrimSpace(string(pm)) == "" {
			return UnspecifiedLabel
		}
		return string(pm)
	}
}
