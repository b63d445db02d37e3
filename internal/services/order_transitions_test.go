package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"digiread/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{"", models.OrderPending, true},
		{"", models.OrderPaid, false},
		{models.OrderPending, models.OrderPaid, true},
		{models.OrderPending, models.OrderFailed, true},
		{models.OrderFailed, models.OrderPaid, true},
		{models.OrderFailed, models.OrderFailed, false},
		{models.OrderPaid, models.OrderFailed, false},
		{models.OrderPaid, models.OrderPaid, false},
		{"refunded", models.OrderPaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTargetStatus(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          models.OrderStatus
		ok            bool
	}{
		{"settlement", "", models.OrderPaid, true},
		{"capture", "accept", models.OrderPaid, true},
		{"capture", "challenge", "", false},
		{"pending", "", "", false},
		{"expire", "", models.OrderFailed, true},
		{"cancel", "", models.OrderFailed, true},
		{"deny", "", models.OrderFailed, true},
	}
	for _, tt := range tests {
		to, ok := targetStatus(Notification{TransactionStatus: tt.status, FraudStatus: tt.fraud})
		assert.Equal(t, tt.ok, ok, tt.status)
		assert.Equal(t, tt.want, to, tt.status)
	}
}
