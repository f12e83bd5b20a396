package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"consentd/internal/consent/models"
)

func TestCanAccess(t *testing.T) {
	owned := &models.Record{Identity: "owner"}
	guest := &models.Record{Email: "guest@example.com"}

	tests := []struct {
		name   string
		caller models.Caller
		record *models.Record
		want   bool
	}{
		{"owner reads own record", models.Caller{Subject: "owner"}, owned, true},
		{"other user denied", models.Caller{Subject: "intruder"}, owned, false},
		{"anonymous denied", models.Anonymous, owned, false},
		{"admin reads any record", models.Caller{Subject: "ops", Admin: true}, owned, true},
		{"admin reads guest record", models.Caller{Subject: "ops", Admin: true}, guest, true},
		{"authenticated user denied on guest record", models.Caller{Subject: "owner"}, guest, false},
		{"anonymous denied on guest record", models.Anonymous, guest, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.caller, tc.record))
		})
	}
}
