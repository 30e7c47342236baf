package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageOf(t *testing.T) {
	r := require.New(t)

	r.Equal("", MessageOf(nil, "fallback"))
	r.Equal("Failed to fetch tickets: Bad Gateway",
		MessageOf(NewNetworkFailure("Failed to fetch tickets: Bad Gateway", 502, nil), "fallback"))
	r.Equal("fallback", MessageOf(&DomainError{Code: CodeInternal}, "fallback"))
	r.Equal("boom", MessageOf(errors.New("boom"), "fallback"))

	wrapped := fmt.Errorf("outer: %w", NewNotFound(`Ticket with ID "x" not found`, nil))
	r.Equal(`Ticket with ID "x" not found`, MessageOf(wrapped, "fallback"))
}

func TestNetworkFailureKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNetworkFailure("Failed to fetch ticket: connection refused", 0, cause)

	require.ErrorIs(t, err, cause)
	de := ToDomainError(err)
	require.Equal(t, CodeNetworkFailure, de.Code)
	require.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	require.Empty(t, de.Details)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("unexpected"))
	require.Equal(t, CodeInternal, de.Code)
	require.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	require.Nil(t, ToDomainError(nil))
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(NewNotFound("missing", nil)))
	require.False(t, IsNotFound(NewNetworkFailure("down", 500, nil)))
	require.False(t, IsNotFound(errors.New("plain")))
}
