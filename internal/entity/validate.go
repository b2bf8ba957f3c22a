package domain

import (
	"regexp"
	"strings"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// normalizePhone strips the separators people type into phone fields.
func normalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
}

// Validate checks the delivery payload shape. Phone is always mandatory;
// city, address and recipient are waived for pickup.
func (d DeliveryInfo) Validate(dt DeliveryType) error {
	if !phoneRe.MatchString(normalizePhone(d.Phone)) {
		return &ValidationError{Field: "phone", Reason: "must be a valid phone number"}
	}
	if dt == DeliveryPickup {
		return nil
	}
	if strings.TrimSpace(d.City) == "" {
		return &ValidationError{Field: "city", Reason: "required"}
	}
	if strings.TrimSpace(d.Address) == "" {
		return &ValidationError{Field: "address", Reason: "required"}
	}
	if strings.TrimSpace(d.Recipient) == "" {
		return &ValidationError{Field: "recipient", Reason: "required"}
	}
	return nil
}
