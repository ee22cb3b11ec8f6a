package userauth_test

import (
	"testing"

	"github.com/logistero/go-userauth"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted international ru", "+7 (999) 123-45-67", "89991234567"},
		{"bare international ru", "+79991234567", "89991234567"},
		{"local ru", "89991234567", "89991234567"},
		{"formatted local ru", "8 (999) 123-45-67", "89991234567"},
		{"international by", "+375291234567", "376291234567"},
		{"other international prefix", "+14155551234", "14155551234"},
		{"short plus seven is not collapsed", "+7999", "7999"},
		{"surrounding whitespace", "  +79991234567  ", "89991234567"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userauth.NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhone_EquivalentFormsCollapse(t *testing.T) {
	forms := []string{
		"+79991234567",
		"+7 999 123 45 67",
		"+7 (999) 123-45-67",
		"89991234567",
	}

	for _, form := range forms {
		assert.Equal(t, "89991234567", userauth.NormalizePhone(form), form)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "fedor@example.com", userauth.NormalizeEmail("  Fedor@Example.COM "))
	assert.Equal(t, "", userauth.NormalizeEmail("   "))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, userauth.ValidPhone("+79991234567"))
	assert.True(t, userauth.ValidPhone("89991234567"))
	assert.True(t, userauth.ValidPhone("+7 (999) 123-45-67"))
	assert.False(t, userauth.ValidPhone(""))
	assert.False(t, userauth.ValidPhone("12"))
	assert.False(t, userauth.ValidPhone("not a phone"))
}
