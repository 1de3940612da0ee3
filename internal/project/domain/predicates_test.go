package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestIsWiringTask(t *testing.T) {
	assert.True(t, IsWiringTask("Wiring"))
	assert.True(t, IsWiringTask("Panel INSTALLATION check"))
	assert.False(t, IsWiringTask("Net Meter Application"))
	assert.False(t, IsWiringTask(""))
}

func TestValidateDocumentNumber(t *testing.T) {
	cases := []struct {
		name   string
		doc    string
		number string
		ok     bool
	}{
		{"empty always ok", "Aadhaar Card", "", true},
		{"aadhaar 12 digits", "Aadhaar Card", "123412341234", true},
		{"aadhaar spaced", "Aadhaar Card", "1234 1234 1234", true},
		{"aadhaar short", "Aadhaar Card", "12341234123", false},
		{"aadhaar letters", "aadhaar", "12341234123a", false},
		{"light bill ok", "Light Bill", "MH-12/3456", true},
		{"light bill bad", "Light Bill", "MH 12", false},
		{"free text", "Notary", "anything goes #1", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDocumentNumber(tc.doc, tc.number)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDocumentNumber)
			}
		})
	}
}

func TestDeriveDocumentStatus(t *testing.T) {
	assert.Equal(t, StatusPending, DeriveDocumentStatus(Document{}))
	assert.Equal(t, StatusInProgress, DeriveDocumentStatus(Document{Uploaded: true}))
	assert.Equal(t, StatusInProgress, DeriveDocumentStatus(Document{FileID: "f1"}))
	assert.Equal(t, StatusCompleted, DeriveDocumentStatus(Document{Verified: true}))
}

func TestEmployeeHasCustomer(t *testing.T) {
	e := Employee{AssignedCustomers: []snowflake.ID{1, 2}}
	assert.True(t, e.HasCustomer(2))
	assert.False(t, e.HasCustomer(3))
}
