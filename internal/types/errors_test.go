package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/compligen/internal/models"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := NewError(KindBackendUnavailable, "generate", errors.New("connection refused"))
	wrapped := fmt.Errorf("cookie policy: %w", base)

	assert.Equal(t, KindBackendUnavailable, KindOf(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestRetryableKinds(t *testing.T) {
	for kind, want := range map[Kind]bool{
		KindRetrievalUnavailable:   false,
		KindSchemaViolation:        true,
		KindBackendUnavailable:     true,
		KindContentPolicyRejection: false,
		KindInvariantViolation:     false,
		KindInvalidRequest:         false,
	} {
		assert.Equal(t, want, IsRetryable(NewError(kind, "", nil)), kind)
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Errorf(KindSchemaViolation, "decode", "bad field %q", "x"))

	assert.True(t, errors.Is(err, &Error{Kind: KindSchemaViolation}))
	assert.True(t, errors.Is(err, &Error{Kind: KindSchemaViolation, Op: "decode"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindSchemaViolation, Op: "validate"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindInvariantViolation}))
}

func TestWithDocType(t *testing.T) {
	err := WithDocType(NewError(KindInvariantViolation, "repair", errors.New("3 sections")), models.AcceptableUsePolicyType)

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, models.AcceptableUsePolicyType, e.DocType)
	assert.Equal(t, "acceptable_use_policy: repair: invariant_violation: 3 sections", err.Error())

	plain := errors.New("plain")
	assert.Same(t, plain, WithDocType(plain, models.CookiePolicyType))
}

func TestSchemaMarshalJSON(t *testing.T) {
	b, err := Schema{}.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	b, err = Schema{Definition: []byte(`{"type":"object"}`)}.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(b))
}
