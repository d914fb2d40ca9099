package desk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCase(t *testing.T) {
	c := NewCase("Printer on fire")
	c.Message = NewMessage("jane@example.com", "support@example.com", "Printer on fire", "Smoke everywhere")

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"subject": "Printer on fire",
		"priority": 4,
		"message": {
			"direction": "in",
			"status": "sent",
			"subject": "Printer on fire",
			"body": "Smoke everywhere",
			"from": "jane@example.com",
			"to": "support@example.com",
			"suppress_rules": true
		}
	}`, string(raw))
}

func TestCase_HasLabel(t *testing.T) {
	c := &Case{Labels: []string{"VIP", "billing"}}
	assert.True(t, c.HasLabel("vip"))
	assert.True(t, c.HasLabel("billing"))
	assert.False(t, c.HasLabel("urgent"))
	assert.False(t, (&Case{}).HasLabel("vip"))
}

func TestCustomer_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		want     string
	}{
		{name: "full name", customer: Customer{FirstName: "Jane", LastName: "Doe", UID: "jd"}, want: "Jane Doe"},
		{name: "first only", customer: Customer{FirstName: "Jane"}, want: "Jane"},
		{name: "last only", customer: Customer{LastName: "Doe"}, want: "Doe"},
		{name: "uid fallback", customer: Customer{UID: "jd-42"}, want: "jd-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.customer.DisplayName())
		})
	}
}

func TestNewNote(t *testing.T) {
	raw, err := json.Marshal(NewNote("Called the customer"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":"Called the customer","suppress_rules":true}`, string(raw))
}
