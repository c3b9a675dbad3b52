package org

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}
