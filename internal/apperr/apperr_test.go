package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"lovechat/backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"self message", apperr.InvalidOperation("self-message"), apperr.CodeInvalidOperation},
		{"unknown recipient", apperr.NotFound("recipient"), apperr.CodeNotFound},
		{"db failure", apperr.Persistence("create message", errors.New("disk full")), apperr.CodePersistence},
		{"wrapped twice", fmt.Errorf("send: %w", apperr.NotFound("recipient")), apperr.CodeNotFound},
		{"unclassified", errors.New("boom"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Code(tt.err))
		})
	}
}

func TestPersistence_KeepsCause(t *testing.T) {
	err := apperr.Persistence("attach connection", errors.New("constraint failed"))

	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Contains(t, err.Error(), "attach connection")
	assert.Contains(t, err.Error(), "constraint failed")
}

func TestReason(t *testing.T) {
	assert.Equal(t, "self-message", apperr.Reason(apperr.InvalidOperation("self-message")))
	assert.Equal(t, "recipient", apperr.Reason(fmt.Errorf("send: %w", apperr.NotFound("recipient"))))
	assert.Equal(t, "join group", apperr.Reason(apperr.Persistence("join group", apperr.Persistence("attach connection", errors.New("x")))))
	assert.Equal(t, "", apperr.Reason(errors.New("boom")))
	assert.Equal(t, "", apperr.Reason(nil))
}
