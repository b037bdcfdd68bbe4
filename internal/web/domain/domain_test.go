package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserString(t *testing.T) {
	require.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}.String())
	require.Equal(t, "Ada", User{FirstName: "Ada", Email: "ada@example.com"}.String())
	require.Equal(t, "ada@example.com", User{Email: "ada@example.com"}.String())
}

func TestRole(t *testing.T) {
	require.True(t, RoleOwner.Valid())
	require.False(t, Role("root").Valid())

	require.True(t, RoleOwner.ManagesSettings())
	require.True(t, RoleAdmin.ManagesSettings())
	require.False(t, RoleMember.ManagesSettings())
}

func TestInvoiceAmount(t *testing.T) {
	require.Equal(t, "12.05 AUD", Invoice{AmountCents: 1205, Currency: "AUD"}.Amount())
	require.Equal(t, "0.99 USD", Invoice{AmountCents: 99, Currency: "USD"}.Amount())
	require.Equal(t, "-3.00 AUD", Invoice{AmountCents: -300, Currency: "AUD"}.Amount())
}
