package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Name:            "Alice",
		Username:        "alice01",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *Error, got %v", err)
	return verr.Fields
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
		msg    string
	}{
		{"ok", func(*RegisterInput) {}, "", ""},
		{"blank name", func(in *RegisterInput) { in.Name = "   " }, "name", "is required"},
		{"short username", func(in *RegisterInput) { in.Username = "al" }, "username", "must be at least 3 characters long"},
		{"username symbols", func(in *RegisterInput) { in.Username = "al ice" }, "username", "must contain letters and digits only"},
		{"bad email", func(in *RegisterInput) { in.Email = "alice@" }, "email", "must be a valid email"},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, "password", "must be at least 6 characters long"},
		{"mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, "confirm_password", "does not match password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)
			err := Register(&in)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.msg, fieldsOf(t, err)[tt.field])
		})
	}
}

func TestRegister_TrimsButKeepsPassword(t *testing.T) {
	in := validRegister()
	in.Username = "  alice01 "
	in.Password, in.ConfirmPassword = " pass word ", " pass word "

	require.NoError(t, Register(&in))
	assert.Equal(t, "alice01", in.Username)
	assert.Equal(t, " pass word ", in.Password)
}

func TestLogin(t *testing.T) {
	require.NoError(t, Login(&LoginInput{Username: "alice", Password: "x"}))

	fields := fieldsOf(t, Login(&LoginInput{Username: " "}))
	assert.Equal(t, "is required", fields["username"])
	assert.Equal(t, "is required", fields["password"])
}

func TestTask(t *testing.T) {
	in := TaskInput{Date: " 01022024 ", Text: "  buy milk "}
	require.NoError(t, Task(&in))
	assert.Equal(t, "01022024", in.Date)
	assert.Equal(t, "buy milk", in.Text)

	fields := fieldsOf(t, Task(&TaskInput{Date: "31/02/2024", Text: ""}))
	assert.Equal(t, "must be a valid date (dd/MM/yyyy)", fields["date"])
	assert.Equal(t, "is required", fields["task"])

	fields = fieldsOf(t, Task(&TaskInput{Date: "", Text: strings.Repeat("x", MaxTaskLength+1)}))
	assert.Equal(t, "is required", fields["date"])
	assert.Equal(t, "must be at most 500 characters long", fields["task"])
}

func TestError_MessageIsSorted(t *testing.T) {
	err := &Error{Fields: map[string]string{"task": "is required", "date": "is required"}}
	assert.Equal(t, "invalid input: date is required; task is required", err.Error())
}
