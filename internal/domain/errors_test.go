package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/imagepipe/internal/domain"
)

func TestValidationErrorIs(t *testing.T) {
	t.Parallel()

	tooLarge := &domain.ValidationError{Reason: domain.TooLarge}
	unsupported := &domain.ValidationError{Reason: domain.UnsupportedType, Detail: "text/plain"}

	assert.ErrorIs(t, tooLarge, domain.ErrValidation)
	assert.ErrorIs(t, tooLarge, domain.ErrTooLarge)
	assert.NotErrorIs(t, tooLarge, domain.ErrUnsupportedType)

	assert.ErrorIs(t, unsupported, domain.ErrUnsupportedType)
	assert.NotErrorIs(t, unsupported, domain.ErrTooLarge)
	assert.Contains(t, unsupported.Error(), "text/plain")

	wrapped := fmt.Errorf("check: %w", tooLarge)

	var verr *domain.ValidationError
	assert.True(t, errors.As(wrapped, &verr))
	assert.Equal(t, domain.TooLarge, verr.Reason)
}

func TestProcessingErrorKeepsCause(t *testing.T) {
	t.Parallel()

	cause := &domain.DecodeError{Err: errors.New("bad header")}
	err := &domain.ProcessingError{Cause: fmt.Errorf("decode: %w", cause)}

	assert.ErrorIs(t, err, domain.ErrProcessing)
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.NotErrorIs(t, err, domain.ErrPreview)

	var derr *domain.DecodeError
	assert.True(t, errors.As(err, &derr))
	assert.Same(t, cause, derr)
}
